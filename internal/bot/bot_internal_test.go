package bot

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type stubSender struct {
	mu    sync.Mutex
	sent  []tgbotapi.MessageConfig
	err   error
	panic bool
}

func (s *stubSender) Send(_ context.Context, c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if s.panic {
		panic("nil client")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if m, ok := c.(tgbotapi.MessageConfig); ok {
		s.sent = append(s.sent, m)
	}

	if s.err != nil {
		return tgbotapi.Message{}, s.err
	}

	return tgbotapi.Message{MessageID: 42}, nil
}

func TestDeliverSuccess(t *testing.T) {
	stub := &stubSender{}
	b := newWithSender(stub, chatTarget{username: "@kodkanal"}, slog.Default())

	if !b.Deliver(context.Background(), "  *Salam* kod  ") {
		t.Fatalf("expected delivery to succeed")
	}

	if len(stub.sent) != 1 {
		t.Fatalf("expected exactly one message, got %d", len(stub.sent))
	}

	message := stub.sent[0]
	if message.ChannelUsername != "@kodkanal" {
		t.Fatalf("unexpected channel: %q", message.ChannelUsername)
	}

	if message.ParseMode != tgbotapi.ModeMarkdown {
		t.Fatalf("unexpected parse mode: %q", message.ParseMode)
	}

	if message.Text != "*Salam* kod" {
		t.Fatalf("unexpected text: %q", message.Text)
	}
}

func TestDeliverFailures(t *testing.T) {
	tests := []struct {
		name string
		stub *stubSender
	}{
		{
			"Telegram API error",
			&stubSender{err: &tgbotapi.Error{Code: 400, Message: "Bad Request: can't parse entities"}},
		},
		{
			"Rate limited",
			&stubSender{err: &tgbotapi.Error{
				Code:               429,
				Message:            "Too Many Requests",
				ResponseParameters: tgbotapi.ResponseParameters{RetryAfter: 30},
			}},
		},
		{
			"Network error",
			&stubSender{err: errors.New("dial tcp: i/o timeout")},
		},
		{
			"Panic",
			&stubSender{panic: true},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			b := newWithSender(test.stub, chatTarget{id: -1001234567890}, slog.Default())

			if b.Deliver(context.Background(), "post") {
				t.Fatalf("expected delivery to fail")
			}
		})
	}
}

func TestDeliverEmptyText(t *testing.T) {
	stub := &stubSender{}
	b := newWithSender(stub, chatTarget{id: 1}, slog.Default())

	if b.Deliver(context.Background(), "  \n ") {
		t.Fatalf("expected empty text to be refused")
	}

	if len(stub.sent) != 0 {
		t.Fatalf("expected nothing to be sent")
	}
}

func TestDeliverTruncatesLongText(t *testing.T) {
	stub := &stubSender{}
	b := newWithSender(stub, chatTarget{id: 1}, slog.Default())

	if !b.Deliver(context.Background(), strings.Repeat("ö", telegramMessageMaxLength+10)) {
		t.Fatalf("expected delivery to succeed")
	}

	if got := utf8.RuneCountInString(stub.sent[0].Text); got != telegramMessageMaxLength {
		t.Fatalf("expected %d runes, got %d", telegramMessageMaxLength, got)
	}
}

func TestParseChatTarget(t *testing.T) {
	tests := []struct {
		input   string
		want    chatTarget
		wantErr bool
	}{
		{"@kodkanal", chatTarget{username: "@kodkanal"}, false},
		{"kodkanal", chatTarget{username: "@kodkanal"}, false},
		{" -1001234567890 ", chatTarget{id: -1001234567890}, false},
		{"", chatTarget{}, true},
		{"@", chatTarget{}, true},
		{"not a channel", chatTarget{}, true},
	}

	for _, test := range tests {
		t.Run(test.input, func(t *testing.T) {
			got, err := parseChatTarget(test.input)

			if test.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", test.input)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if got != test.want {
				t.Fatalf("expected %+v, got %+v", test.want, got)
			}
		})
	}
}

func TestChatTargetNewMessage(t *testing.T) {
	byID := chatTarget{id: -100}.newMessage("x")
	if byID.ChatID != -100 || byID.ChannelUsername != "" {
		t.Fatalf("unexpected message for id target: %+v", byID.BaseChat)
	}

	byName := chatTarget{username: "@kodkanal"}.newMessage("x")
	if byName.ChannelUsername != "@kodkanal" {
		t.Fatalf("unexpected message for username target: %+v", byName.BaseChat)
	}
}
