// Package presentation formats records for people: Brazilian currency and
// dates, indexer-aware rate percentages, preview tables and the WhatsApp
// messages sent to client groups.
//
// Output is deterministic. The message date comes from MessageBuilder.Date,
// never from the clock, so the same records always render the same text.
package presentation
