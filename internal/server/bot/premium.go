package bot

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/dmitrijs2005/premrelay/internal/common"
	"github.com/dmitrijs2005/premrelay/internal/server/files"
)

const premiumPageSize = 5

const callbackPrefix = "premium_"

// sendPremiumPage lists one page of the user's downloaded files, one message
// per file, followed by a pager when there is more than one page. Entries
// whose record or stored file has gone missing get an error line instead;
// the rest of the page still renders.
func (b *Bot) sendPremiumPage(ctx context.Context, chatID, userID int64, page int) {
	user, err := b.users.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			b.reply(ctx, chatID, "You have no downloaded files yet.")
			return
		}
		b.logger.Error(ctx, "failed to load user", "user_id", userID, "error", err.Error())
		b.reply(ctx, chatID, "Something went wrong. Please try again.")
		return
	}

	hashes := user.DownloadedFiles
	if len(hashes) == 0 {
		b.reply(ctx, chatID, "You have no downloaded files yet.")
		return
	}

	pages := pageCount(len(hashes))
	start, end := pageBounds(len(hashes), page)

	records, err := b.files.GetByHashes(ctx, hashes[start:end])
	if err != nil {
		b.logger.Error(ctx, "failed to load file records", "user_id", userID, "error", err.Error())
		b.reply(ctx, chatID, "Something went wrong. Please try again.")
		return
	}

	byHash := make(map[string]*files.StoredFile, len(records))
	for _, r := range records {
		byHash[r.Hash] = r
	}

	for i, hash := range hashes[start:end] {
		record, ok := byHash[hash]
		if !ok {
			b.reply(ctx, chatID, fmt.Sprintf("File %d is no longer available.", start+i+1))
			continue
		}

		info, err := os.Stat(record.Path)
		if err != nil {
			b.reply(ctx, chatID, fmt.Sprintf("File %d (%s) is no longer available.", start+i+1, record.OriginalFilename))
			continue
		}

		b.sendPremiumEntry(ctx, chatID, record, info.Size())
	}

	if pages > 1 {
		b.sendPager(ctx, chatID, page, pages)
	}
}

func (b *Bot) sendPremiumEntry(ctx context.Context, chatID int64, record *files.StoredFile, size int64) {
	url := fmt.Sprintf("%s/download/%s", b.baseURL, record.Hash)
	text := formatEntry(record.OriginalFilename, size, guessMIME(record.OriginalFilename), url)
	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonURL("Download", url)),
	)

	if record.ThumbnailPath != "" {
		if _, err := os.Stat(record.ThumbnailPath); err == nil {
			photo := tgbotapi.NewPhoto(chatID, tgbotapi.FilePath(record.ThumbnailPath))
			photo.Caption = text
			photo.ReplyMarkup = keyboard
			if _, err := b.api.Send(photo); err == nil {
				return
			}
			b.logger.Warn(ctx, "failed to send entry photo", "hash", record.Hash)
		}
	}

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = keyboard
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Warn(ctx, "failed to send entry", "hash", record.Hash, "error", err.Error())
	}
}

func (b *Bot) sendPager(ctx context.Context, chatID int64, page, pages int) {
	var row []tgbotapi.InlineKeyboardButton
	if page > 0 {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData("Previous", callbackPrefix+strconv.Itoa(page-1)))
	}
	if page < pages-1 {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData("Next", callbackPrefix+strconv.Itoa(page+1)))
	}

	msg := tgbotapi.NewMessage(chatID, fmt.Sprintf("Page %d of %d", page+1, pages))
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(row...))
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Warn(ctx, "failed to send pager", "chat_id", chatID, "error", err.Error())
	}
}

// handleCallback serves the pager buttons: answer the callback, validate the
// requested page, replace the pager message with the new page.
func (b *Bot) handleCallback(ctx context.Context, cq *tgbotapi.CallbackQuery) {
	if _, err := b.api.Request(tgbotapi.NewCallback(cq.ID, "")); err != nil {
		b.logger.Warn(ctx, "failed to answer callback", "error", err.Error())
	}

	page, ok := parseCallbackPage(cq.Data)
	if !ok || cq.Message == nil {
		return
	}

	userID := cq.From.ID
	chatID := cq.Message.Chat.ID

	user, err := b.users.Get(ctx, userID)
	if err != nil {
		b.logger.Error(ctx, "failed to load user", "user_id", userID, "error", err.Error())
		return
	}

	if page < 0 || page >= pageCount(len(user.DownloadedFiles)) {
		edit := tgbotapi.NewEditMessageText(chatID, cq.Message.MessageID, "That page is no longer available.")
		if _, err := b.api.Send(edit); err != nil {
			b.logger.Warn(ctx, "failed to edit pager", "error", err.Error())
		}
		return
	}

	if _, err := b.api.Request(tgbotapi.NewDeleteMessage(chatID, cq.Message.MessageID)); err != nil {
		b.logger.Warn(ctx, "failed to delete pager", "error", err.Error())
	}

	b.sendPremiumPage(ctx, chatID, userID, page)
}

func pageCount(total int) int {
	return (total + premiumPageSize - 1) / premiumPageSize
}

// pageBounds returns the half-open index range of one page, clamped to the
// list.
func pageBounds(total, page int) (int, int) {
	start := page * premiumPageSize
	if start > total {
		start = total
	}
	end := start + premiumPageSize
	if end > total {
		end = total
	}
	return start, end
}

func parseCallbackPage(data string) (int, bool) {
	rest, ok := strings.CutPrefix(data, callbackPrefix)
	if !ok {
		return 0, false
	}
	page, err := strconv.Atoi(rest)
	if err != nil {
		return 0, false
	}
	return page, true
}

func formatEntry(filename string, size int64, mimeType, url string) string {
	return fmt.Sprintf("%s\nSize: %d bytes\nType: %s\n%s", filename, size, mimeType, url)
}

func guessMIME(filename string) string {
	if t := mime.TypeByExtension(filepath.Ext(filename)); t != "" {
		return t
	}
	return "application/octet-stream"
}
