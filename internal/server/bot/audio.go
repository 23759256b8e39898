package bot

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/dmitrijs2005/premrelay/internal/server/hashtag"
)

// isAudioMessage reports whether the message carries audio content: an audio
// attachment, a voice note, or a document with an audio MIME type. Documents
// of other types are ignored.
func isAudioMessage(msg *tgbotapi.Message) bool {
	if msg.Audio != nil || msg.Voice != nil {
		return true
	}
	return msg.Document != nil && strings.HasPrefix(msg.Document.MimeType, "audio/")
}

// handleAudio replies to an audio message with hashtags derived from its
// display filename.
func (b *Bot) handleAudio(ctx context.Context, msg *tgbotapi.Message) {
	name := audioFilename(msg)

	tags := hashtag.Generate(name)
	if len(tags) == 0 {
		return
	}

	reply := tgbotapi.NewMessage(msg.Chat.ID, strings.Join(tags, " "))
	reply.ReplyToMessageID = msg.MessageID
	if _, err := b.api.Send(reply); err != nil {
		b.logger.Warn(ctx, "failed to send hashtags", "chat_id", msg.Chat.ID, "error", err.Error())
	}
}

// audioFilename derives a display filename for an audio message: the media's
// own filename, else the first caption word that looks like a filename, else
// a placeholder built from the file ID.
func audioFilename(msg *tgbotapi.Message) string {
	var name, fileID string
	switch {
	case msg.Audio != nil:
		name, fileID = msg.Audio.FileName, msg.Audio.FileID
	case msg.Voice != nil:
		fileID = msg.Voice.FileID
	case msg.Document != nil:
		name, fileID = msg.Document.FileName, msg.Document.FileID
	}
	if name != "" {
		return name
	}

	for _, word := range strings.Fields(msg.Caption) {
		if strings.Contains(word, ".") {
			return word
		}
	}

	return fmt.Sprintf("forwarded_audio_%s", fileID)
}
