package notifier

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"DayTrader/internal/model"
)

type fakeTelegram struct {
	mu       sync.Mutex
	calls    map[string][]map[string]any
	updates  string
	failSend int
}

func newFakeTelegram(t *testing.T) (*fakeTelegram, *TelegramNotifier) {
	t.Helper()
	f := &fakeTelegram{calls: map[string][]map[string]any{}}
	srv := httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(srv.Close)
	return f, NewTelegramNotifier("TOKEN", srv.URL, "", zap.NewNop())
}

func (f *fakeTelegram) serve(w http.ResponseWriter, r *http.Request) {
	method := r.URL.Path[strings.LastIndex(r.URL.Path, "/")+1:]
	if !strings.HasPrefix(r.URL.Path, "/botTOKEN/") {
		http.Error(w, "bad token", http.StatusUnauthorized)
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if method == "getUpdates" {
		body := f.updates
		f.updates = `{"ok":true,"result":[]}`
		if body == "" {
			body = `{"ok":true,"result":[]}`
		}
		io.WriteString(w, body)
		return
	}

	var payload map[string]any
	_ = json.NewDecoder(r.Body).Decode(&payload)
	f.calls[method] = append(f.calls[method], payload)
	if method == "sendMessage" && f.failSend > 0 {
		f.failSend--
		io.WriteString(w, `{"ok":false,"description":"Too Many Requests"}`)
		return
	}
	io.WriteString(w, `{"ok":true,"result":{}}`)
}

func (f *fakeTelegram) get(method string) []map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]map[string]any(nil), f.calls[method]...)
}

func TestSend_WithButtons(t *testing.T) {
	f, tn := newFakeTelegram(t)
	err := tn.Send(context.Background(), model.Reply{
		ChatID:  "-100",
		Text:    "<b>hi</b>",
		Buttons: []model.Button{{Label: "Buy Stock", Data: "buy|7|TSLA|20"}},
	})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	sent := f.get("sendMessage")
	if len(sent) != 1 {
		t.Fatalf("sendMessage calls = %d", len(sent))
	}
	msg := sent[0]
	if msg["chat_id"] != "-100" || msg["parse_mode"] != "HTML" {
		t.Errorf("payload = %v", msg)
	}
	kb := msg["reply_markup"].(map[string]any)["inline_keyboard"].([]any)
	btn := kb[0].([]any)[0].(map[string]any)
	if btn["text"] != "Buy Stock" || btn["callback_data"] != "buy|7|TSLA|20" {
		t.Errorf("button = %v", btn)
	}
}

func TestSend_APIError(t *testing.T) {
	f, tn := newFakeTelegram(t)
	f.failSend = 1
	if err := tn.Send(context.Background(), model.Reply{ChatID: "1", Text: "x"}); err == nil {
		t.Fatal("expected error")
	}
}

func TestSendWithRetry_RecoversAfterFailure(t *testing.T) {
	f, tn := newFakeTelegram(t)
	f.failSend = 1
	if err := tn.SendWithRetry(context.Background(), model.Reply{ChatID: "1", Text: "x"}, 2); err != nil {
		t.Fatalf("SendWithRetry: %v", err)
	}
	if n := len(f.get("sendMessage")); n != 2 {
		t.Errorf("attempts = %d, want 2", n)
	}
}

func TestSendWithRetry_StopsOnCancel(t *testing.T) {
	f, tn := newFakeTelegram(t)
	f.failSend = 10
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	if err := tn.SendWithRetry(ctx, model.Reply{ChatID: "1", Text: "x"}, 5); err == nil {
		t.Fatal("expected error")
	}
}

func TestToIncoming_Message(t *testing.T) {
	raw := `{
		"update_id": 1,
		"message": {
			"from": {"id": 7, "first_name": "Bob", "username": "bob"},
			"chat": {"id": -100},
			"text": "/user 😀 @Alice",
			"entities": [
				{"type": "bot_command", "offset": 0, "length": 5},
				{"type": "mention", "offset": 9, "length": 6}
			],
			"reply_to_message": {"from": {"id": 9, "first_name": "Carol"}}
		}
	}`
	var u telegramUpdate
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		t.Fatal(err)
	}
	in, ok := toIncoming(u)
	if !ok {
		t.Fatal("message should be accepted")
	}
	if in.ChatID != "-100" || in.From.ID != "7" || in.From.DisplayName != "Bob" {
		t.Errorf("incoming = %+v", in)
	}
	if len(in.MentionNames) != 1 || in.MentionNames[0] != "Alice" {
		t.Errorf("mention names = %v", in.MentionNames)
	}
	if len(in.Mentions) != 1 || in.Mentions[0].ID != "9" {
		t.Errorf("mentions = %+v", in.Mentions)
	}
}

func TestToIncoming_SkipsBotsAndEmpty(t *testing.T) {
	tests := []string{
		`{"update_id": 1}`,
		`{"update_id": 1, "message": {"from": {"id": 1, "is_bot": true}, "chat": {"id": 1}, "text": "/help"}}`,
		`{"update_id": 1, "message": {"from": {"id": 1}, "chat": {"id": 1}, "text": "  "}}`,
	}
	for _, raw := range tests {
		var u telegramUpdate
		if err := json.Unmarshal([]byte(raw), &u); err != nil {
			t.Fatal(err)
		}
		if _, ok := toIncoming(u); ok {
			t.Errorf("update should be skipped: %s", raw)
		}
	}
}

func TestStartPolling_DispatchesCallback(t *testing.T) {
	f, tn := newFakeTelegram(t)
	f.updates = `{"ok":true,"result":[{
		"update_id": 5,
		"callback_query": {
			"id": "cb1",
			"from": {"id": 8, "first_name": "Eve"},
			"message": {"chat": {"id": 42}},
			"data": "buy|7|TSLA|20"
		}
	}]}`

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	got := make(chan model.Incoming, 1)
	go func() {
		tn.StartPolling(ctx, func(_ context.Context, in model.Incoming) *model.Reply {
			got <- in
			return &model.Reply{Toast: "You can't use this button!"}
		})
		close(done)
	}()

	var in model.Incoming
	select {
	case in = <-got:
	case <-time.After(2 * time.Second):
		t.Fatal("handler not called")
	}
	if !in.IsCallback() || in.ChatID != "42" || in.CallbackData != "buy|7|TSLA|20" {
		t.Errorf("incoming = %+v", in)
	}

	deadline := time.Now().Add(2 * time.Second)
	for len(f.get("answerCallbackQuery")) == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	answers := f.get("answerCallbackQuery")
	if len(answers) != 1 || answers[0]["text"] != "You can't use this button!" {
		t.Errorf("answers = %v", answers)
	}
	if n := len(f.get("sendMessage")); n != 0 {
		t.Errorf("toast-only reply should not send a message, got %d", n)
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("polling did not stop")
	}
}

func TestSendWithRetry_NoWaitAfterLastAttempt(t *testing.T) {
	f, tn := newFakeTelegram(t)
	f.failSend = 10
	start := time.Now()
	if err := tn.SendWithRetry(context.Background(), model.Reply{ChatID: "1", Text: "x"}, 0); err == nil {
		t.Fatal("expected error")
	}
	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Errorf("gave up after %v; the final failure should return at once", elapsed)
	}
	if n := len(f.get("sendMessage")); n != 1 {
		t.Errorf("attempts = %d, want 1", n)
	}
}
