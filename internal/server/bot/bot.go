// Package bot is the Telegram front end: it runs the long-poll update loop,
// dispatches commands, gates free-text messages on start/registration state,
// and hands file-host links to the transfer pipeline.
package bot

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/dmitrijs2005/premrelay/internal/common"
	"github.com/dmitrijs2005/premrelay/internal/logging"
	"github.com/dmitrijs2005/premrelay/internal/server/activity"
	"github.com/dmitrijs2005/premrelay/internal/server/files"
	"github.com/dmitrijs2005/premrelay/internal/server/transfer"
	"github.com/dmitrijs2005/premrelay/internal/server/users"
)

const pollTimeoutSeconds = 30

// LinkHandler runs the download-and-deliver pipeline for one link.
type LinkHandler interface {
	Handle(ctx context.Context, req transfer.Request) (*transfer.Result, error)
}

// Bot serves one Telegram bot account. Each update is handled in its own
// goroutine; Run returns only after in-flight handlers have finished.
type Bot struct {
	api      *tgbotapi.BotAPI
	logger   logging.Logger
	users    *users.Service
	files    files.Repository
	activity *activity.Service
	handler  LinkHandler
	baseURL  string
}

func NewBot(api *tgbotapi.BotAPI, logger logging.Logger, userService *users.Service,
	fileRepo files.Repository, activityService *activity.Service,
	handler LinkHandler, publicBaseURL string) *Bot {
	return &Bot{
		api:      api,
		logger:   logger.With("module", "bot"),
		users:    userService,
		files:    fileRepo,
		activity: activityService,
		handler:  handler,
		baseURL:  strings.TrimSuffix(publicBaseURL, "/"),
	}
}

// Run polls for updates until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = pollTimeoutSeconds

	updates := b.api.GetUpdatesChan(cfg)

	b.logger.Info(ctx, "Starting bot", "username", b.api.Self.UserName)

	var wg sync.WaitGroup
	defer wg.Wait()

	for {
		select {
		case <-ctx.Done():
			b.logger.Info(ctx, "Stopping bot...")
			b.api.StopReceivingUpdates()
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			wg.Add(1)
			go func() {
				defer wg.Done()
				defer func() {
					if r := recover(); r != nil {
						b.logger.Error(ctx, "update handler panicked", "panic", fmt.Sprint(r))
					}
				}()
				b.handleUpdate(ctx, update)
			}()
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	if update.CallbackQuery != nil {
		b.handleCallback(ctx, update.CallbackQuery)
		return
	}

	msg := update.Message
	if msg == nil || msg.From == nil {
		return
	}

	if msg.IsCommand() {
		b.handleCommand(ctx, msg)
		return
	}

	b.handleMessage(ctx, msg)
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	userID := msg.From.ID
	chatID := msg.Chat.ID

	switch msg.Command() {
	case "start":
		b.handleStart(ctx, msg)
	case "register":
		b.handleRegister(ctx, msg)
	case "me":
		b.handleMe(ctx, chatID, userID)
	case "unregister":
		b.handleUnregister(ctx, chatID, userID)
	case "stop":
		b.handleStop(ctx, chatID, userID)
	case "premium":
		if !b.passesGates(ctx, chatID, userID) {
			return
		}
		b.sendPremiumPage(ctx, chatID, userID, 0)
	default:
		b.reply(ctx, chatID, "Unknown command. Available commands: /start, /register, /me, /premium, /unregister, /stop")
	}
}

func (b *Bot) handleStart(ctx context.Context, msg *tgbotapi.Message) {
	if err := b.users.Start(ctx, msg.From.ID); err != nil {
		b.logger.Error(ctx, "failed to mark user started", "user_id", msg.From.ID, "error", err.Error())
		b.reply(ctx, msg.Chat.ID, "Something went wrong. Please try again.")
		return
	}

	greeting := fmt.Sprintf(`Hi <a href="tg://user?id=%d">%s</a>! Please /register to start using the bot.`,
		msg.From.ID, html.EscapeString(msg.From.FirstName))

	out := tgbotapi.NewMessage(msg.Chat.ID, greeting)
	out.ParseMode = tgbotapi.ModeHTML
	if _, err := b.api.Send(out); err != nil {
		b.logger.Warn(ctx, "failed to send greeting", "error", err.Error())
	}
}

func (b *Bot) handleRegister(ctx context.Context, msg *tgbotapi.Message) {
	candidate := &users.User{
		UserID:    msg.From.ID,
		FirstName: msg.From.FirstName,
		LastName:  msg.From.LastName,
		Username:  msg.From.UserName,
	}

	user, status, err := b.users.Register(ctx, candidate)
	if err != nil {
		b.logger.Error(ctx, "registration failed", "user_id", msg.From.ID, "error", err.Error())
		b.reply(ctx, msg.Chat.ID, "Registration failed. Please try again.")
		return
	}

	switch status {
	case users.AlreadyRegistered:
		b.reply(ctx, msg.Chat.ID, "You are already registered!")
	case users.Reactivated:
		b.reply(ctx, msg.Chat.ID, fmt.Sprintf("Welcome back, %s! Your registration has been restored.", user.FirstName))
	default:
		b.reply(ctx, msg.Chat.ID, "You are now registered!\n"+userDetails(user))
	}
}

func (b *Bot) handleMe(ctx context.Context, chatID, userID int64) {
	user, err := b.users.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			b.reply(ctx, chatID, "You are not registered. Use /register to sign up.")
			return
		}
		b.logger.Error(ctx, "failed to load user", "user_id", userID, "error", err.Error())
		b.reply(ctx, chatID, "Something went wrong. Please try again.")
		return
	}
	if user.Deleted {
		b.reply(ctx, chatID, "You are not registered. Use /register to sign up.")
		return
	}

	b.reply(ctx, chatID, userDetails(user))
}

func (b *Bot) handleUnregister(ctx context.Context, chatID, userID int64) {
	removed, err := b.users.Unregister(ctx, userID)
	if err != nil {
		b.logger.Error(ctx, "failed to unregister user", "user_id", userID, "error", err.Error())
		b.reply(ctx, chatID, "Something went wrong. Please try again.")
		return
	}
	if !removed {
		b.reply(ctx, chatID, "You are not registered yet.")
		return
	}
	b.reply(ctx, chatID, "You have been unregistered. Use /register if you change your mind.")
}

func (b *Bot) handleStop(ctx context.Context, chatID, userID int64) {
	if err := b.users.Stop(ctx, userID); err != nil {
		b.logger.Error(ctx, "failed to mark user stopped", "user_id", userID, "error", err.Error())
		b.reply(ctx, chatID, "Something went wrong. Please try again.")
		return
	}
	b.reply(ctx, chatID, "Bot stopped. Use /start to resume.")
}

// handleMessage processes a non-command message: gate on start and
// registration state, answer audio messages with hashtags, and treat
// remaining text as a download link.
func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	userID := msg.From.ID
	chatID := msg.Chat.ID

	if !b.passesGates(ctx, chatID, userID) {
		return
	}

	if isAudioMessage(msg) {
		b.handleAudio(ctx, msg)
		return
	}

	if msg.Text == "" {
		return
	}

	b.activity.MessageReceived(ctx, userID, msg.Text)

	result, err := b.handler.Handle(ctx, transfer.Request{
		Link:        msg.Text,
		RequesterID: userID,
		ChatID:      chatID,
	})
	if err != nil {
		// The pipeline already told the user; an unsupported link is not a
		// download attempt and gets no failure event.
		if !errors.Is(err, common.ErrUnsupportedLink) {
			b.activity.DownloadFailed(ctx, userID, msg.Text)
			b.logger.Error(ctx, "download failed", "user_id", userID, "error", err.Error())
		}
		return
	}

	b.activity.DownloadSucceeded(ctx, userID, msg.Text, result.Hash, result.FileURL)
}

// passesGates enforces the start and registration requirements for
// non-command traffic, prompting the user on the first gate that fails.
func (b *Bot) passesGates(ctx context.Context, chatID, userID int64) bool {
	started, err := b.users.HasStarted(ctx, userID)
	if err != nil {
		b.logger.Error(ctx, "failed to check started state", "user_id", userID, "error", err.Error())
		b.reply(ctx, chatID, "Something went wrong. Please try again.")
		return false
	}
	if !started {
		b.reply(ctx, chatID, "Please use /start to begin.")
		return false
	}

	registered, err := b.users.IsRegistered(ctx, userID)
	if err != nil {
		b.logger.Error(ctx, "failed to check registration", "user_id", userID, "error", err.Error())
		b.reply(ctx, chatID, "Something went wrong. Please try again.")
		return false
	}
	if !registered {
		b.reply(ctx, chatID, "Use /register to sign up before downloading.")
		return false
	}

	return true
}

func (b *Bot) reply(ctx context.Context, chatID int64, text string) {
	if _, err := b.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		b.logger.Warn(ctx, "failed to send message", "chat_id", chatID, "error", err.Error())
	}
}

func userDetails(user *users.User) string {
	return fmt.Sprintf("ID: %d\nFirst name: %s\nLast name: %s\nUsername: %s",
		user.UserID, user.FirstName, user.LastName, user.Username)
}
