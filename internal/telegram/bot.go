// Package telegram exposes the assistant as a Telegram bot. The bot is a
// text channel: Listen yields messages from allowlisted users and Speak
// replies to the chat that sent the last one.
package telegram

import (
	"context"
	"fmt"
	log "log/slog"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"jarvis/internal/auth"
	"jarvis/internal/pending"
)

const inboxSize = 8

type incoming struct {
	chatID int64
	userID int64
	text   string
}

type Bot struct {
	api      *tgbotapi.BotAPI
	out      messenger
	authSvc  *auth.Service
	requests *pending.Requests
	adminID  int64
	inbox    chan incoming
	log      *log.Logger

	mu     sync.Mutex
	chatID int64
	userID int64
}

// New connects to the Bot API. Access requests from unknown users are queued
// in requests and announced to adminID when it is set.
func New(botToken string, authSvc *auth.Service, requests *pending.Requests, adminID int64, logger *log.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}
	b := newBot(apiMessenger{api: api}, authSvc, requests, adminID, logger)
	b.api = api
	b.log.Info("telegram bot authorized", "account", api.Self.UserName)
	return b, nil
}

func newBot(out messenger, authSvc *auth.Service, requests *pending.Requests, adminID int64, logger *log.Logger) *Bot {
	if logger == nil {
		logger = log.Default()
	}
	if requests == nil {
		requests, _ = pending.New(nil)
	}
	return &Bot{
		out:      out,
		authSvc:  authSvc,
		requests: requests,
		adminID:  adminID,
		inbox:    make(chan incoming, inboxSize),
		log:      logger.With("channel", "telegram"),
	}
}

// Start polls for updates until ctx is done.
func (b *Bot) Start(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	defer b.api.StopReceivingUpdates()

	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.Message != nil {
				b.handleIncomingMessage(ctx, update.Message)
			}
		}
	}
}

func (b *Bot) handleIncomingMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From == nil || msg.Chat == nil {
		return
	}

	if msg.IsCommand() && b.handleCommand(msg) {
		return
	}

	if !b.authSvc.IsAllowed(msg.From.ID) {
		b.log.Warn("unauthorized access attempt", "user_id", msg.From.ID, "username", msg.From.UserName)
		b.requestAccess(msg)
		return
	}

	text := strings.TrimSpace(msg.Text)
	if msg.IsCommand() {
		text = commandUtterance(msg)
	}
	if text == "" {
		b.sendMessage(msg.Chat.ID, "I can only read text messages.")
		return
	}

	b.log.Debug("incoming message", "user_id", msg.From.ID, "username", msg.From.UserName)
	select {
	case b.inbox <- incoming{chatID: msg.Chat.ID, userID: msg.From.ID, text: text}:
	case <-ctx.Done():
	default:
		b.sendMessage(msg.Chat.ID, "I'm still working on earlier messages, please wait a moment.")
	}
}

func (b *Bot) requestAccess(msg *tgbotapi.Message) {
	user := auth.User{
		ID:        msg.From.ID,
		Username:  msg.From.UserName,
		FirstName: msg.From.FirstName,
		LastName:  msg.From.LastName,
	}
	added, err := b.requests.Add(user)
	if err != nil {
		b.log.Error("failed to store access request", "user_id", user.ID, "err", err)
	}
	b.sendMessage(msg.Chat.ID, fmt.Sprintf("Access denied. Your request was sent to the administrator (your ID: %d).", user.ID))
	if added && b.adminID != 0 {
		b.sendMessage(b.adminID, fmt.Sprintf("User %d (@%s) wants to talk to JARVIS. Reply /allow %d to approve.",
			user.ID, user.Username, user.ID))
	}
}

// commandUtterance turns a bot command into plain words, so /help reaches
// the assistant as "help" and /start as a greeting.
func commandUtterance(msg *tgbotapi.Message) string {
	if msg.Command() == "start" {
		return "hello"
	}
	return strings.TrimSpace(msg.Command() + " " + msg.CommandArguments())
}

// Listen returns the next allowed message, lower-cased.
func (b *Bot) Listen(ctx context.Context, timeout time.Duration) (string, error) {
	var expired <-chan time.Time
	if timeout > 0 {
		t := time.NewTimer(timeout)
		defer t.Stop()
		expired = t.C
	}

	select {
	case m := <-b.inbox:
		b.mu.Lock()
		b.chatID, b.userID = m.chatID, m.userID
		b.mu.Unlock()
		return strings.ToLower(m.text), nil
	case <-expired:
		return "", nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Speak replies to the chat of the last message returned by Listen. Before
// any message arrives there is nobody to talk to and text is dropped.
func (b *Bot) Speak(ctx context.Context, text string) error {
	b.mu.Lock()
	chatID := b.chatID
	b.mu.Unlock()
	if chatID == 0 {
		b.log.Debug("no active chat, reply dropped")
		return nil
	}
	return b.send(chatID, text)
}

// CurrentUser is the Telegram ID of the author of the last message.
func (b *Bot) CurrentUser() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.userID
}

func (b *Bot) send(chatID int64, text string) error {
	return b.out.SendText(chatID, text)
}

func (b *Bot) sendMessage(chatID int64, text string) {
	if err := b.send(chatID, text); err != nil {
		b.log.Error("send failed", "chat_id", chatID, "err", err)
	}
}
