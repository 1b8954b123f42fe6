package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode/utf16"

	"go.uber.org/zap"

	"DayTrader/internal/model"
)

// UpdateHandler is called for every message or button press. A nil reply sends nothing.
type UpdateHandler func(ctx context.Context, in model.Incoming) *model.Reply

type tgUser struct {
	ID        int64  `json:"id"`
	IsBot     bool   `json:"is_bot"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Username  string `json:"username"`
}

func (u tgUser) toUser() model.User {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	return model.User{
		ID:          strconv.FormatInt(u.ID, 10),
		Username:    u.Username,
		DisplayName: name,
	}
}

type tgEntity struct {
	Type   string  `json:"type"`
	Offset int     `json:"offset"`
	Length int     `json:"length"`
	User   *tgUser `json:"user"`
}

type tgMessage struct {
	From *tgUser `json:"from"`
	Chat struct {
		ID int64 `json:"id"`
	} `json:"chat"`
	Text           string     `json:"text"`
	Entities       []tgEntity `json:"entities"`
	ReplyToMessage *struct {
		From *tgUser `json:"from"`
	} `json:"reply_to_message"`
}

// telegramUpdate represents a Telegram update from long polling.
type telegramUpdate struct {
	UpdateID      int        `json:"update_id"`
	Message       *tgMessage `json:"message"`
	CallbackQuery *struct {
		ID      string     `json:"id"`
		From    tgUser     `json:"from"`
		Message *tgMessage `json:"message"`
		Data    string     `json:"data"`
	} `json:"callback_query"`
}

// toIncoming converts an update into the transport-neutral form. Updates
// the bot does not act on report false.
func toIncoming(u telegramUpdate) (model.Incoming, bool) {
	if cb := u.CallbackQuery; cb != nil {
		in := model.Incoming{
			From:         cb.From.toUser(),
			CallbackID:   cb.ID,
			CallbackData: cb.Data,
		}
		if cb.Message != nil {
			in.ChatID = strconv.FormatInt(cb.Message.Chat.ID, 10)
		}
		return in, true
	}

	m := u.Message
	if m == nil || m.From == nil || m.From.IsBot || strings.TrimSpace(m.Text) == "" {
		return model.Incoming{}, false
	}
	in := model.Incoming{
		ChatID: strconv.FormatInt(m.Chat.ID, 10),
		From:   m.From.toUser(),
		Text:   strings.TrimSpace(m.Text),
	}

	// Entity offsets count UTF-16 code units.
	units := utf16.Encode([]rune(m.Text))
	for _, e := range m.Entities {
		switch e.Type {
		case "text_mention":
			if e.User != nil {
				in.Mentions = append(in.Mentions, e.User.toUser())
			}
		case "mention":
			if e.Offset < 0 || e.Offset+e.Length > len(units) {
				continue
			}
			name := string(utf16.Decode(units[e.Offset : e.Offset+e.Length]))
			in.MentionNames = append(in.MentionNames, strings.TrimPrefix(name, "@"))
		}
	}
	if r := m.ReplyToMessage; r != nil && r.From != nil && !r.From.IsBot {
		in.Mentions = append(in.Mentions, r.From.toUser())
	}
	return in, true
}

// StartPolling begins long-polling for updates. Blocks until ctx is cancelled.
func (t *TelegramNotifier) StartPolling(ctx context.Context, handler UpdateHandler) {
	offset := 0
	client := &http.Client{Timeout: 35 * time.Second, Transport: t.Client.Transport}

	for {
		select {
		case <-ctx.Done():
			t.log.Info("telegram polling stopped")
			return
		default:
		}

		updates, err := t.getUpdates(ctx, client, offset)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			t.log.Warn("polling request failed", zap.Error(err))
			select {
			case <-ctx.Done():
				return
			case <-time.After(5 * time.Second):
			}
			continue
		}

		for _, update := range updates {
			offset = update.UpdateID + 1
			in, ok := toIncoming(update)
			if !ok {
				continue
			}
			t.dispatch(ctx, handler, in)
		}
	}
}

func (t *TelegramNotifier) getUpdates(ctx context.Context, client *http.Client, offset int) ([]telegramUpdate, error) {
	apiURL := fmt.Sprintf("%s?offset=%d&timeout=30", t.endpoint("getUpdates"), offset)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create polling request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read polling response: %w", err)
	}
	var result struct {
		OK          bool             `json:"ok"`
		Description string           `json:"description"`
		Result      []telegramUpdate `json:"result"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("decode polling response: %w", err)
	}
	if !result.OK {
		return nil, fmt.Errorf("getUpdates: %s", result.Description)
	}
	return result.Result, nil
}

// dispatch runs the handler and delivers its reply. Button presses are
// always answered so the client stops its spinner.
func (t *TelegramNotifier) dispatch(ctx context.Context, handler UpdateHandler, in model.Incoming) {
	if in.IsCallback() {
		t.log.Debug("received callback", zap.String("user", in.From.ID), zap.String("data", in.CallbackData))
	} else {
		t.log.Info("received message", zap.String("chat", in.ChatID), zap.String("user", in.From.ID), zap.String("text", in.Text))
	}

	reply := handler(ctx, in)

	if in.IsCallback() {
		toast := ""
		if reply != nil {
			toast = reply.Toast
		}
		if err := t.AnswerCallback(ctx, in.CallbackID, toast); err != nil {
			t.log.Warn("answer callback", zap.Error(err))
		}
	}
	if reply == nil || reply.Text == "" {
		return
	}
	if reply.ChatID == "" {
		reply.ChatID = in.ChatID
	}
	if err := t.SendWithRetry(ctx, *reply, 2); err != nil {
		t.log.Error("send reply", zap.String("chat", reply.ChatID), zap.Error(err))
	}
}
