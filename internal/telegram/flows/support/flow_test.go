package support

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"sellbot/internal/backend"
	"sellbot/internal/telegram/flows"
	"sellbot/internal/telegram/states"
)

type fakeBot struct {
	sent    []tgbotapi.Chattable
	sendErr map[int64]error
}

func (f *fakeBot) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if msg, ok := c.(tgbotapi.MessageConfig); ok && f.sendErr != nil {
		if err, found := f.sendErr[msg.ChatID]; found {
			return tgbotapi.Message{}, err
		}
	}
	f.sent = append(f.sent, c)
	return tgbotapi.Message{}, nil
}

func (f *fakeBot) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	return &tgbotapi.APIResponse{Ok: true}, nil
}

type fakeStates struct {
	state   states.State
	data    *flows.SupportFlowData
	cleared bool
}

func (f *fakeStates) SetState(_ context.Context, _ int64, state states.State, data any) error {
	f.state = state
	if d, ok := data.(*flows.SupportFlowData); ok {
		f.data = d
	}
	return nil
}

func (f *fakeStates) Clear(_ context.Context, _ int64) {
	f.cleared = true
	f.state = states.StateNone
}

type fakeSubs struct {
	subs []backend.Subscription
	err  error
}

func (f *fakeSubs) ListSubscriptions(_ context.Context, _ int64) ([]backend.Subscription, error) {
	return f.subs, f.err
}

type fakeAdmins struct{ ids []int64 }

func (f fakeAdmins) AdminIDs() []int64 { return f.ids }

type fakeLoc struct{}

func (fakeLoc) Get(_, key string, _ map[string]interface{}) string { return key }

func newTestHandler(subs *fakeSubs, st *fakeStates, admins []int64) (*Handler, *fakeBot) {
	bot := &fakeBot{}
	h := NewHandler(bot, st, subs, fakeAdmins{ids: admins}, fakeLoc{},
		slog.New(slog.NewTextHandler(io.Discard, nil)))
	return h, bot
}

func ticketUpdate(text string) *tgbotapi.Update {
	return &tgbotapi.Update{Message: &tgbotapi.Message{
		From: &tgbotapi.User{ID: 42, UserName: "alice"},
		Chat: &tgbotapi.Chat{ID: 42},
		Text: text,
	}}
}

func sentTexts(bot *fakeBot) []tgbotapi.MessageConfig {
	var msgs []tgbotapi.MessageConfig
	for _, c := range bot.sent {
		if m, ok := c.(tgbotapi.MessageConfig); ok {
			msgs = append(msgs, m)
		}
	}
	return msgs
}

func TestTicketCarriesUserIDMarkerAndReachesAllAdmins(t *testing.T) {
	subs := &fakeSubs{subs: []backend.Subscription{
		{ID: 1, Status: "active"},
		{ID: 2, Status: "expired"},
	}}
	st := &fakeStates{state: states.SupportWaitMessage, data: &flows.SupportFlowData{Language: "en"}}
	h, bot := newTestHandler(subs, st, []int64{100, 200})

	if err := h.Handle(context.Background(), ticketUpdate("my config stopped working"), states.SupportWaitMessage, "en"); err != nil {
		t.Fatalf("Handle: %v", err)
	}

	msgs := sentTexts(bot)
	var tickets []tgbotapi.MessageConfig
	for _, m := range msgs {
		if m.ChatID == 100 || m.ChatID == 200 {
			tickets = append(tickets, m)
		}
	}
	if len(tickets) != 2 {
		t.Fatalf("delivered %d tickets, want 2", len(tickets))
	}
	if !strings.Contains(tickets[0].Text, "User ID: 42") {
		t.Fatalf("ticket missing routing marker: %q", tickets[0].Text)
	}
	if !strings.Contains(tickets[0].Text, "2 total, 1 active") {
		t.Fatalf("ticket missing subscription summary: %q", tickets[0].Text)
	}
	if !st.cleared {
		t.Fatal("session not cleared")
	}

	last := msgs[len(msgs)-1]
	if last.ChatID != 42 || last.Text != "support.sent" {
		t.Fatalf("user confirmation = %+v", last)
	}
}

func TestSubscriptionLookupFailureStillDelivers(t *testing.T) {
	subs := &fakeSubs{err: errors.New("backend down")}
	st := &fakeStates{state: states.SupportWaitMessage, data: &flows.SupportFlowData{Language: "en"}}
	h, bot := newTestHandler(subs, st, []int64{100})

	if err := h.Handle(context.Background(), ticketUpdate("help"), states.SupportWaitMessage, "en"); err != nil {
		t.Fatalf("Handle: %v", err)
	}

	msgs := sentTexts(bot)
	if !strings.Contains(msgs[0].Text, "Subscriptions: unknown") {
		t.Fatalf("ticket = %q, want unknown subscription summary", msgs[0].Text)
	}
}

func TestNoAdminReachedReportsFailure(t *testing.T) {
	st := &fakeStates{state: states.SupportWaitMessage, data: &flows.SupportFlowData{Language: "en"}}
	h, bot := newTestHandler(&fakeSubs{}, st, []int64{100})
	bot.sendErr = map[int64]error{100: errors.New("blocked")}

	if err := h.Handle(context.Background(), ticketUpdate("help"), states.SupportWaitMessage, "en"); err != nil {
		t.Fatalf("Handle: %v", err)
	}

	msgs := sentTexts(bot)
	if len(msgs) != 1 || msgs[0].Text != "support.failed" {
		t.Fatalf("sent = %+v, want only a failure notice to the user", msgs)
	}
	if !st.cleared {
		t.Fatal("session must be cleared even when delivery fails")
	}
}

func TestAdminReplyRoutesByTicketMarker(t *testing.T) {
	h, bot := newTestHandler(&fakeSubs{}, &fakeStates{}, []int64{100})

	update := &tgbotapi.Update{Message: &tgbotapi.Message{
		From: &tgbotapi.User{ID: 100},
		Chat: &tgbotapi.Chat{ID: 100},
		Text: "try reinstalling the app",
		ReplyToMessage: &tgbotapi.Message{
			Text: "🆘 Support Ticket\n\nUser ID: 42\nUsername: @alice\n\nmy config stopped working",
		},
	}}

	handled, err := h.HandleAdminReply(update)
	if err != nil {
		t.Fatalf("HandleAdminReply: %v", err)
	}
	if !handled {
		t.Fatal("reply under a ticket must be handled")
	}

	msgs := sentTexts(bot)
	if msgs[0].ChatID != 42 {
		t.Fatalf("reply went to chat %d, want 42", msgs[0].ChatID)
	}
	if !strings.Contains(msgs[0].Text, "try reinstalling the app") {
		t.Fatalf("reply text = %q", msgs[0].Text)
	}
	if !strings.Contains(msgs[0].Text, "Message from Support") {
		t.Fatalf("reply missing support header: %q", msgs[0].Text)
	}
}

func TestAdminReplyIgnoresUnrelatedReplies(t *testing.T) {
	h, _ := newTestHandler(&fakeSubs{}, &fakeStates{}, []int64{100})

	update := &tgbotapi.Update{Message: &tgbotapi.Message{
		From:           &tgbotapi.User{ID: 100},
		Chat:           &tgbotapi.Chat{ID: 100},
		Text:           "noted",
		ReplyToMessage: &tgbotapi.Message{Text: "weekly report"},
	}}

	handled, err := h.HandleAdminReply(update)
	if err != nil {
		t.Fatalf("HandleAdminReply: %v", err)
	}
	if handled {
		t.Fatal("reply without a ticket marker must pass through")
	}
}

func TestUserIDRegex(t *testing.T) {
	cases := []struct {
		text string
		want string
	}{
		{"User ID: 42", "42"},
		{"User ID:42", "42"},
		{"prefix\nUser ID:  98765\nsuffix", "98765"},
		{"user id: 42", ""},
		{"User ID: abc", ""},
	}
	for _, tc := range cases {
		match := userIDRe.FindStringSubmatch(tc.text)
		got := ""
		if match != nil {
			got = match[1]
		}
		if got != tc.want {
			t.Errorf("FindStringSubmatch(%q) = %q, want %q", tc.text, got, tc.want)
		}
	}
}
