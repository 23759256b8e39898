// Package telegram adapts the Telegram Bot API to the messaging contract the
// transfer pipeline consumes. Platform error strings are classified into
// sentinel errors here, at the boundary, so no other package matches on
// error text.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/dmitrijs2005/premrelay/internal/common"
	"github.com/dmitrijs2005/premrelay/internal/logging"
)

// Transport implements the pipeline's Messenger contract on top of the Bot
// API. The underlying client has no context support, so the ctx arguments
// only gate the calls that wrap it; transmission deadlines are enforced by
// per-client HTTP timeouts.
type Transport struct {
	api    *tgbotapi.BotAPI
	upload *tgbotapi.BotAPI
	logger logging.Logger
}

// NewTransport wraps an authorized bot client. sendTimeout bounds inline
// file transmissions; a dedicated upload client carries it so ordinary
// messages keep the api client's defaults.
func NewTransport(api *tgbotapi.BotAPI, sendTimeout time.Duration, logger logging.Logger) *Transport {
	upload := *api
	upload.Client = &http.Client{Timeout: sendTimeout}

	return &Transport{
		api:    api,
		upload: &upload,
		logger: logger.With("module", "telegram"),
	}
}

func (t *Transport) SendStatusText(ctx context.Context, chatID int64, text string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	msg, err := t.api.Send(tgbotapi.NewMessage(chatID, text))
	if err != nil {
		return 0, fmt.Errorf("send message: %w", err)
	}

	return msg.MessageID, nil
}

func (t *Transport) EditStatusText(ctx context.Context, chatID int64, messageID int, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	_, err := t.api.Send(tgbotapi.NewEditMessageText(chatID, messageID, text))
	if err != nil {
		return classifyEditError(err)
	}

	return nil
}

func (t *Transport) SendFile(ctx context.Context, chatID int64, path, caption, filename string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var file tgbotapi.RequestFileData
	if filename != "" {
		// The stored file is hash-named; a FileReader restores the
		// original filename on the wire.
		f, err := os.Open(path)
		if err != nil {
			return "", fmt.Errorf("open %s: %w", path, err)
		}
		defer f.Close()
		file = tgbotapi.FileReader{Name: filename, Reader: f}
	} else {
		file = tgbotapi.FilePath(path)
	}

	doc := tgbotapi.NewDocument(chatID, file)
	doc.Caption = caption

	msg, err := t.upload.Send(doc)
	if err != nil {
		return "", classifySendError(err)
	}
	if msg.Document == nil {
		return "", errors.New("send document: no document in response")
	}

	return msg.Document.FileID, nil
}

func (t *Transport) FileLocation(ctx context.Context, fileID string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	file, err := t.api.GetFile(tgbotapi.FileConfig{FileID: fileID})
	if err != nil {
		return "", fmt.Errorf("get file: %w", err)
	}

	return file.Link(t.api.Token), nil
}

func (t *Transport) SendPhoto(ctx context.Context, chatID int64, path, caption string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FilePath(path))
	photo.Caption = caption

	if _, err := t.api.Send(photo); err != nil {
		return fmt.Errorf("send photo: %w", err)
	}

	return nil
}

// classifyEditError maps the platform's edit rejections onto the shared
// sentinels. Anything unrecognized passes through untouched.
func classifyEditError(err error) error {
	var apiErr *tgbotapi.Error
	if !errors.As(err, &apiErr) {
		return err
	}

	msg := strings.ToLower(apiErr.Message)
	switch {
	case strings.Contains(msg, "message is not modified"):
		return common.ErrMessageNotModified
	case strings.Contains(msg, "message to edit not found"),
		strings.Contains(msg, "can't be edited"):
		return common.ErrMessageNotEditable
	default:
		return err
	}
}

// classifySendError surfaces transmission timeouts as the delivery-timeout
// sentinel the pipeline branches on.
func classifySendError(err error) error {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %v", common.ErrDeliveryTimeout, err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", common.ErrDeliveryTimeout, err)
	}
	return err
}
