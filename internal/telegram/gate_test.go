package telegram

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"sellbot/internal/backend"
	"sellbot/internal/telegram/states"
)

type gateBot struct {
	sent []tgbotapi.Chattable
}

func (f *gateBot) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.sent = append(f.sent, c)
	return tgbotapi.Message{}, nil
}

func (f *gateBot) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	return &tgbotapi.APIResponse{Ok: true}, nil
}

type gateStates struct {
	state states.State
}

func (f *gateStates) GetState(_ context.Context, _ int64) states.State { return f.state }

func (f *gateStates) SetState(_ context.Context, _ int64, state states.State, _ any) error {
	f.state = state
	return nil
}

func (f *gateStates) Clear(_ context.Context, _ int64) { f.state = states.StateNone }

type gateUsers struct {
	user  *backend.User
	err   error
	calls int
}

func (f *gateUsers) GetOrCreateUser(_ context.Context, telegramID int64, language, _ string) (*backend.User, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if f.user != nil {
		return f.user, nil
	}
	return &backend.User{TelegramID: telegramID, Language: language}, nil
}

type gateLoc struct{}

func (gateLoc) Get(lang, key string, _ map[string]interface{}) string { return lang + ":" + key }

func newTestGate(users *gateUsers, st *gateStates) (*AccessGate, *gateBot) {
	bot := &gateBot{}
	gate := NewAccessGate(bot, users, st, gateLoc{},
		NewCache[struct{}](time.Hour, 100),
		NewCache[string](time.Hour, 100),
		slog.New(slog.NewTextHandler(io.Discard, nil)))
	return gate, bot
}

func gateMessage(userID int64, text, locale string) *tgbotapi.Update {
	msg := &tgbotapi.Message{
		From: &tgbotapi.User{ID: userID, LanguageCode: locale},
		Chat: &tgbotapi.Chat{ID: userID},
		Text: text,
	}
	if len(text) > 0 && text[0] == '/' {
		msg.Entities = []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(text)}}
	}
	return &tgbotapi.Update{Message: msg}
}

func TestGateRegisteredUserPassesWithBackendLanguage(t *testing.T) {
	users := &gateUsers{user: &backend.User{TelegramID: 42, Language: "fa"}}
	gate, _ := newTestGate(users, &gateStates{})

	lang, ok := gate.Check(context.Background(), gateMessage(42, "hello", "en"))
	if !ok {
		t.Fatal("registered user blocked")
	}
	if lang != "fa" {
		t.Fatalf("lang = %q, backend preference must win over locale", lang)
	}
}

func TestGateCachesAuthorization(t *testing.T) {
	users := &gateUsers{user: &backend.User{TelegramID: 42, Language: "en"}}
	gate, _ := newTestGate(users, &gateStates{})
	ctx := context.Background()

	gate.Check(ctx, gateMessage(42, "first", "en"))
	gate.Check(ctx, gateMessage(42, "second", "en"))

	if users.calls != 1 {
		t.Fatalf("backend resolved %d times, want 1", users.calls)
	}
}

func TestGateUnregisteredUserRedirectedToInviteFlow(t *testing.T) {
	users := &gateUsers{err: &backend.APIError{Kind: backend.ErrKindInviteCodeRequired, Status: 403}}
	st := &gateStates{}
	gate, bot := newTestGate(users, st)

	lang, ok := gate.Check(context.Background(), gateMessage(42, "buy please", "fa"))
	if ok {
		t.Fatalf("unregistered user passed the gate with lang %q", lang)
	}
	if st.state != states.RegWaitInviteCode {
		t.Fatalf("state = %q, want invite wait", st.state)
	}

	msg := bot.sent[0].(tgbotapi.MessageConfig)
	if !strings.Contains(msg.Text, "en:register.invite_prompt") || !strings.Contains(msg.Text, "fa:register.invite_prompt") {
		t.Fatalf("invite prompt must be bilingual, got %q", msg.Text)
	}
}

func TestGateExemptsInviteEntryAndStart(t *testing.T) {
	users := &gateUsers{err: &backend.APIError{Kind: backend.ErrKindInviteCodeRequired, Status: 403}}

	st := &gateStates{state: states.RegWaitInviteCode}
	gate, _ := newTestGate(users, st)
	if _, ok := gate.Check(context.Background(), gateMessage(42, "SECRET42", "en")); !ok {
		t.Fatal("invite-code entry must bypass resolution")
	}
	if users.calls != 0 {
		t.Fatal("no backend call expected during invite entry")
	}

	gate2, _ := newTestGate(users, &gateStates{})
	if _, ok := gate2.Check(context.Background(), gateMessage(42, "/start", "en")); !ok {
		t.Fatal("/start must bypass the gate")
	}
}

func TestGateBackendOutageSwallowsUpdate(t *testing.T) {
	users := &gateUsers{err: errors.New("dial tcp: i/o timeout")}
	st := &gateStates{}
	gate, bot := newTestGate(users, st)

	if _, ok := gate.Check(context.Background(), gateMessage(42, "hello", "en")); ok {
		t.Fatal("update must be swallowed on backend outage")
	}
	if st.state == states.RegWaitInviteCode {
		t.Fatal("outage must not be treated as missing registration")
	}
	msg := bot.sent[0].(tgbotapi.MessageConfig)
	if msg.Text != "en:common.error" {
		t.Fatalf("user notice = %q", msg.Text)
	}
}

func TestGateAuthorizeShortCircuits(t *testing.T) {
	users := &gateUsers{err: &backend.APIError{Kind: backend.ErrKindInviteCodeRequired, Status: 403}}
	gate, _ := newTestGate(users, &gateStates{})

	gate.Authorize(42, "fa")

	lang, ok := gate.Check(context.Background(), gateMessage(42, "hello", "en"))
	if !ok || lang != "fa" {
		t.Fatalf("Check = (%q, %t), want authorized with cached lang", lang, ok)
	}
	if users.calls != 0 {
		t.Fatal("authorized user must not hit the backend")
	}
}
