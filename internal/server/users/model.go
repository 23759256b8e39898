// Package users tracks the bot's registered users and their download
// history.
package users

// User is one chat user known to the bot.
//
// Started reflects whether the user has issued /start; Deleted marks a
// soft-unregistered user whose record (and download history) survives
// re-registration. DownloadedFiles holds content hashes in download order.
type User struct {
	UserID          int64    `bson:"user_id"`
	FirstName       string   `bson:"first_name"`
	LastName        string   `bson:"last_name"`
	Username        string   `bson:"username"`
	Deleted         bool     `bson:"deleted"`
	Started         bool     `bson:"started"`
	DownloadedFiles []string `bson:"downloaded_files"`
}
