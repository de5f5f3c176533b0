// Package notify queues the daily "memories" browser notification. The
// scheduler checks the catalogue once a day; when today's month/day has
// records, a notification is queued at most once per calendar day. The
// frontend polls for it and marks it shown.
package notify
