package timetable

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func code(pairs map[int]byte) DayCode {
	b := []byte(EmptyDay)
	for h, c := range pairs {
		b[h] = c
	}
	return DayCode(b)
}

func TestEncodeDay_Examples(t *testing.T) {
	cases := []struct {
		name    string
		windows []RawWindow
		want    DayCode
	}{
		{"empty", nil, EmptyDay},
		{"full hours then half", []RawWindow{{From: "15:00", To: "17:30"}},
			code(map[int]byte{15: '1', 16: '1', 17: '2'})},
		{"half start", []RawWindow{{From: "15:30", To: "17:00"}},
			code(map[int]byte{15: '3', 16: '1'})},
		{"whole day", []RawWindow{{From: "00:00", To: "23:59"}},
			DayCode("111111111111111111111111")},
		{"odd start rounds up", []RawWindow{{From: "10:15", To: "12:00"}},
			code(map[int]byte{11: '1'})},
		{"odd end adds hour", []RawWindow{{From: "10:00", To: "11:45"}},
			code(map[int]byte{10: '1', 11: '1'})},
		{"half window inside one hour", []RawWindow{{From: "10:30", To: "11:30"}},
			code(map[int]byte{10: '3'})},
		{"from equals to", []RawWindow{{From: "08:00", To: "08:00"}}, EmptyDay},
		{"crosses midnight", []RawWindow{{From: "22:00", To: "02:00"}}, EmptyDay},
		{"late half start", []RawWindow{{From: "23:30", To: "23:59"}},
			code(map[int]byte{23: '3'})},
		{"two windows", []RawWindow{{From: "01:00", To: "03:00"}, {From: "20:30", To: "22:30"}},
			code(map[int]byte{1: '1', 2: '1', 20: '3', 21: '1', 22: '2'})},
		{"invalid skipped", []RawWindow{{From: "bad", To: "03:00"}, {From: "05:00", To: "06:00"}},
			code(map[int]byte{5: '1'})},
		{"empty bound skipped", []RawWindow{{From: "", To: "03:00"}}, EmptyDay},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, EncodeDay(c.windows))
		})
	}
}

func TestEncodeDay_HalfMarkerKeptUnderLaterWindow(t *testing.T) {
	got := EncodeDay([]RawWindow{{From: "15:30", To: "16:00"}, {From: "15:00", To: "17:00"}})
	assert.Equal(t, byte('3'), got[15])
	assert.Equal(t, byte('1'), got[16])
}

func TestEncodeDayReport_Skipped(t *testing.T) {
	_, skipped := EncodeDayReport([]RawWindow{{From: "1:00", To: "x"}, {From: "2:00", To: "3:00"}, {}})
	require.Len(t, skipped, 2)
	assert.ErrorIs(t, skipped[0].Err, ErrInvalidClock)
	assert.ErrorIs(t, skipped[1].Err, ErrInvalidClock)
}

func randomClock(r *rand.Rand) string {
	switch r.Intn(10) {
	case 0:
		return "garbage"
	case 1:
		return ""
	}
	minutes := []int{0, 30, 15, 45, 59}
	return fmt.Sprintf("%02d:%02d", r.Intn(24), minutes[r.Intn(len(minutes))])
}

func randomWindows(r *rand.Rand) []RawWindow {
	ws := make([]RawWindow, r.Intn(5))
	for i := range ws {
		ws[i] = RawWindow{From: randomClock(r), To: randomClock(r)}
	}
	return ws
}

func TestEncodeDay_AlwaysWellFormed(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	for i := 0; i < 2000; i++ {
		ws := randomWindows(r)
		got := EncodeDay(ws)
		if !got.Valid() {
			t.Fatalf("malformed code %q for %+v", got, ws)
		}
	}
}

func TestEncodeDay_MonotonicAdditive(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	for i := 0; i < 2000; i++ {
		w1 := randomWindows(r)
		w2 := randomWindows(r)
		alone := EncodeDay(w1)
		both := EncodeDay(append(append([]RawWindow{}, w1...), w2...))
		for h := 0; h < HoursPerDay; h++ {
			if alone[h] != PowerOn && both[h] == PowerOn {
				t.Fatalf("hour %d cleared: %q -> %q (w1=%+v w2=%+v)", h, alone, both, w1, w2)
			}
		}
	}
}

func TestDayCodeValid(t *testing.T) {
	assert.True(t, EmptyDay.Valid())
	assert.False(t, DayCode("0").Valid())
	assert.False(t, DayCode("00000000000000000000000x").Valid())
	assert.True(t, DayCode("012301230123012301230123").Valid())
}

func TestOutageHours(t *testing.T) {
	assert.Equal(t, 0.0, EmptyDay.OutageHours())
	assert.Equal(t, 2.5, code(map[int]byte{15: '1', 16: '1', 17: '2'}).OutageHours())
	assert.Equal(t, 1.0, code(map[int]byte{3: '3', 4: '2'}).OutageHours())
}
