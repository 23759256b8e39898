// Package activity appends user-activity events to the persistence layer.
package activity

import "time"

// Event names recorded by the bot.
const (
	EventMessageReceived       = "message_received"
	EventDownloadSuccessLink   = "download_success_link"
	EventDownloadSuccessDirect = "download_success_direct"
	EventDownloadFailed        = "download_failed"
)

// Event is one append-only activity record. Optional fields are omitted
// when empty.
type Event struct {
	UserID    int64     `bson:"user_id"`
	Event     string    `bson:"event"`
	Message   string    `bson:"message,omitempty"`
	URL       string    `bson:"url,omitempty"`
	FileURL   string    `bson:"file_url,omitempty"`
	FileHash  string    `bson:"file_hash,omitempty"`
	Timestamp time.Time `bson:"timestamp"`
}
