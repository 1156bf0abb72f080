// Package timetable exposes the stored week records and the last pass
// outcome as read-only JSON.
package timetable

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/kilianp07/svitlosync/core/store"
	"github.com/kilianp07/svitlosync/core/syncer"
	tt "github.com/kilianp07/svitlosync/core/timetable"
	"github.com/kilianp07/svitlosync/pkg/export"
)

// WeekReader reads stored records. store.Backend satisfies it.
type WeekReader interface {
	Get(ctx context.Context, week int) (tt.WeekRecord, error)
}

// PassReporter exposes the most recent pass.
type PassReporter interface {
	LastPass() (syncer.PassResult, bool)
}

// WeekResponse is the body of the week endpoints.
type WeekResponse = export.WeekView

// PassResponse is the body of /api/last-pass.
type PassResponse struct {
	syncer.PassResult
	Error string `json:"error,omitempty"`
}

type handler struct {
	weeks  WeekReader
	passes PassReporter
	now    func() time.Time
}

// NewRouter builds the API routes. now decides the current week.
func NewRouter(weeks WeekReader, passes PassReporter, now func() time.Time) *mux.Router {
	if now == nil {
		now = time.Now
	}
	h := &handler{weeks: weeks, passes: passes, now: now}
	r := mux.NewRouter()
	r.HandleFunc("/health", h.health).Methods("GET")
	r.HandleFunc("/api/week", h.currentWeek).Methods("GET")
	r.HandleFunc("/api/week/{week:[0-9]+}", h.week).Methods("GET")
	r.HandleFunc("/api/last-pass", h.lastPass).Methods("GET")
	return r
}

func (h *handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) currentWeek(w http.ResponseWriter, r *http.Request) {
	h.serveWeek(w, r, tt.ISOWeek(h.now()))
}

func (h *handler) week(w http.ResponseWriter, r *http.Request) {
	n, err := strconv.Atoi(mux.Vars(r)["week"])
	if err != nil || n < 1 || n > 53 {
		http.Error(w, "week must be between 1 and 53", http.StatusBadRequest)
		return
	}
	h.serveWeek(w, r, n)
}

func (h *handler) serveWeek(w http.ResponseWriter, r *http.Request, week int) {
	rec, err := h.weeks.Get(r.Context(), week)
	switch {
	case errors.Is(err, store.ErrNotFound):
		http.Error(w, "week not found", http.StatusNotFound)
		return
	case err != nil:
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, export.NewWeekView(rec))
}

func (h *handler) lastPass(w http.ResponseWriter, _ *http.Request) {
	if h.passes == nil {
		http.Error(w, "no pass yet", http.StatusNotFound)
		return
	}
	res, ok := h.passes.LastPass()
	if !ok {
		http.Error(w, "no pass yet", http.StatusNotFound)
		return
	}
	out := PassResponse{PassResult: res}
	if res.Err != nil {
		out.Error = res.Err.Error()
	}
	writeJSON(w, http.StatusOK, out)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
