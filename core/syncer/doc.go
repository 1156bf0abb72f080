// Package syncer drives the synchronisation of one outage queue.
//
// A Controller runs a single pass: it fetches today's and tomorrow's outage
// windows, encodes them into DayCodes, compares them with the stored week and,
// only when something changed, persists the week and publishes the seven day
// timetable. A Loop runs passes one after another on a fixed interval.
package syncer
