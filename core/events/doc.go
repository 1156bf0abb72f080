// Package events defines the synchronisation events emitted on the event bus.
//
// Available event types:
//   - PassStarted: a sync pass began
//   - DayProcessed: one of today/tomorrow was fetched and compared
//   - PassFinished: the pass ended, with persist and publish outcomes
package events
