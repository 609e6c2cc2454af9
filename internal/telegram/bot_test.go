package telegram

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"jarvis/internal/auth"
	"jarvis/internal/logging"
)

type sent struct {
	chatID int64
	text   string
}

type fakeMessenger struct {
	sent []sent
	err  error
}

func (f *fakeMessenger) SendText(chatID int64, text string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sent{chatID: chatID, text: text})
	return nil
}

const adminID = 999

func newTestBot(t *testing.T, allowed ...int64) (*Bot, *fakeMessenger) {
	t.Helper()
	svc, err := auth.NewWithRepo(nil, allowed)
	if err != nil {
		t.Fatalf("auth: %v", err)
	}
	fs := &fakeMessenger{}
	return newBot(fs, svc, nil, adminID, logging.Discard()), fs
}

func textMessage(userID, chatID int64, text string) *tgbotapi.Message {
	msg := &tgbotapi.Message{
		From: &tgbotapi.User{ID: userID, UserName: "user"},
		Chat: &tgbotapi.Chat{ID: chatID},
		Text: text,
	}
	if strings.HasPrefix(text, "/") {
		cmd := strings.Fields(text)[0]
		msg.Entities = []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(cmd)}}
	}
	return msg
}

func TestAllowedMessageIsHeardAndAnswered(t *testing.T) {
	b, fs := newTestBot(t, 42)
	ctx := context.Background()

	b.handleIncomingMessage(ctx, textMessage(42, 100, "  Tell me a FUN fact "))

	got, err := b.Listen(ctx, time.Second)
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	if got != "tell me a fun fact" {
		t.Fatalf("unexpected utterance %q", got)
	}
	if b.CurrentUser() != 42 {
		t.Fatalf("current user = %d", b.CurrentUser())
	}

	if err := b.Speak(ctx, "Octopuses have three hearts."); err != nil {
		t.Fatalf("speak: %v", err)
	}
	if len(fs.sent) != 1 || fs.sent[0].chatID != 100 {
		t.Fatalf("reply not sent to chat 100: %+v", fs.sent)
	}
}

func TestUnauthorizedUserRequestsAccess(t *testing.T) {
	b, fs := newTestBot(t, 42)
	ctx := context.Background()
	b.handleIncomingMessage(ctx, textMessage(7, 200, "hello"))

	if len(fs.sent) != 2 {
		t.Fatalf("expected reply and admin notice, got %+v", fs.sent)
	}
	if fs.sent[0].chatID != 200 || !strings.Contains(fs.sent[0].text, "Access denied") {
		t.Fatalf("unexpected reply %+v", fs.sent[0])
	}
	if fs.sent[1].chatID != adminID || !strings.Contains(fs.sent[1].text, "/allow 7") {
		t.Fatalf("unexpected admin notice %+v", fs.sent[1])
	}
	got, err := b.Listen(ctx, 10*time.Millisecond)
	if err != nil || got != "" {
		t.Fatalf("unauthorized message leaked: %q %v", got, err)
	}

	b.handleIncomingMessage(ctx, textMessage(7, 200, "hello again"))
	if len(fs.sent) != 3 {
		t.Fatalf("admin must be notified once per request, got %+v", fs.sent)
	}

	b.handleIncomingMessage(ctx, textMessage(adminID, 1, "/pending"))
	if last := fs.sent[len(fs.sent)-1].text; !strings.Contains(last, "7 (@user)") {
		t.Fatalf("unexpected pending list %q", last)
	}

	b.handleIncomingMessage(ctx, textMessage(adminID, 1, "/allow 7"))
	if !b.authSvc.IsAllowed(7) || len(b.requests.List()) != 0 {
		t.Fatal("approval must allow the user and drop the request")
	}
	if last := fs.sent[len(fs.sent)-1]; last.chatID != 7 || !strings.Contains(last.text, "Access granted") {
		t.Fatalf("requester not told about approval: %+v", last)
	}
}

func TestSpeakWithoutChatIsDropped(t *testing.T) {
	b, fs := newTestBot(t)
	if err := b.Speak(context.Background(), "Hello"); err != nil {
		t.Fatalf("speak: %v", err)
	}
	if len(fs.sent) != 0 {
		t.Fatalf("nothing should be sent before a chat is known: %+v", fs.sent)
	}
}

func TestSpeakReturnsSendError(t *testing.T) {
	b, fs := newTestBot(t, 42)
	b.handleIncomingMessage(context.Background(), textMessage(42, 1, "hi"))
	if _, err := b.Listen(context.Background(), time.Second); err != nil {
		t.Fatalf("listen: %v", err)
	}
	fs.err = errors.New("network down")
	if err := b.Speak(context.Background(), "hi"); err == nil {
		t.Fatal("expected send error")
	}
}

func TestListenHonorsContext(t *testing.T) {
	b, _ := newTestBot(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := b.Listen(ctx, time.Second); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestBusyInboxAsksToWait(t *testing.T) {
	b, fs := newTestBot(t, 42)
	for i := 0; i < inboxSize+1; i++ {
		b.handleIncomingMessage(context.Background(), textMessage(42, 1, "hi"))
	}
	if len(fs.sent) != 1 || !strings.Contains(fs.sent[0].text, "please wait") {
		t.Fatalf("expected a single wait notice, got %+v", fs.sent)
	}
}

func TestAdminCommands(t *testing.T) {
	b, fs := newTestBot(t)
	ctx := context.Background()

	b.handleIncomingMessage(ctx, textMessage(5, 1, "/allow 5"))
	if !strings.Contains(fs.sent[len(fs.sent)-1].text, "administrator") {
		t.Fatalf("non-admin must be refused: %+v", fs.sent)
	}

	b.handleIncomingMessage(ctx, textMessage(adminID, 1, "/allow 5 @alex"))
	if !b.authSvc.IsAllowed(5) {
		t.Fatal("user 5 should be allowed")
	}

	b.handleIncomingMessage(ctx, textMessage(adminID, 1, "/users"))
	if last := fs.sent[len(fs.sent)-1].text; !strings.Contains(last, "5 (@alex)") {
		t.Fatalf("unexpected users list %q", last)
	}

	b.handleIncomingMessage(ctx, textMessage(adminID, 1, "/remove 5"))
	if b.authSvc.IsAllowed(5) {
		t.Fatal("user 5 should be removed")
	}

	b.handleIncomingMessage(ctx, textMessage(adminID, 1, "/allow abc"))
	if last := fs.sent[len(fs.sent)-1].text; last != "Invalid user ID." {
		t.Fatalf("unexpected reply %q", last)
	}
}

func TestOtherCommandsReachAssistant(t *testing.T) {
	b, _ := newTestBot(t, 42)
	ctx := context.Background()
	cases := map[string]string{
		"/help":          "help",
		"/start":         "hello",
		"/search golang": "search golang",
	}
	for in, want := range cases {
		b.handleIncomingMessage(ctx, textMessage(42, 1, in))
		got, err := b.Listen(ctx, time.Second)
		if err != nil || got != want {
			t.Fatalf("%s: got %q %v, want %q", in, got, err, want)
		}
	}
}
