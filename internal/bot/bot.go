package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"kodbot/internal/markdown"
	"kodbot/internal/ratelimiter"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type sender interface {
	Send(ctx context.Context, c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Bot delivers posts to a single Telegram channel.
type Bot struct {
	sender      sender
	rateLimiter *ratelimiter.RateLimiter
	target      chatTarget
	username    string
	log         *slog.Logger
}

func New(
	token string,
	channelID string,
	timeout time.Duration,
	log *slog.Logger,
) (*Bot, error) {
	target, err := parseChatTarget(channelID)
	if err != nil {
		return nil, err
	}

	token = strings.TrimSpace(token)

	api, err := tgbotapi.NewBotAPIWithClient(token, tgbotapi.APIEndpoint, &http.Client{Timeout: timeout})
	if err != nil {
		return nil, fmt.Errorf("create bot API: %w", err)
	}

	rateLimiter := ratelimiter.New(api, log)

	return &Bot{
		sender:      rateLimiter,
		rateLimiter: rateLimiter,
		target:      target,
		username:    api.Self.UserName,
		log:         log,
	}, nil
}

func newWithSender(s sender, target chatTarget, log *slog.Logger) *Bot {
	return &Bot{
		sender: s,
		target: target,
		log:    log,
	}
}

func (b *Bot) Username() string {
	return b.username
}

func (b *Bot) Target() string {
	return b.target.String()
}

func (b *Bot) Stop() {
	if b.rateLimiter != nil {
		b.rateLimiter.Stop()
	}
}

// Deliver sends text to the channel with the legacy Markdown parse mode and
// reports whether Telegram accepted it. It never retries and never panics.
func (b *Bot) Deliver(ctx context.Context, text string) (ok bool) {
	defer func() {
		if p := recover(); p != nil {
			b.log.ErrorContext(ctx, "Unexpected panic while delivering message",
				"panic", fmt.Sprint(p),
				"target", b.target.String())

			ok = false
		}
	}()

	text = b.prepareText(ctx, text)
	if text == "" {
		b.log.ErrorContext(ctx, "Refusing to deliver empty message",
			"target", b.target.String())

		return false
	}

	message := b.target.newMessage(text)
	message.ParseMode = tgbotapi.ModeMarkdown

	sent, err := b.sender.Send(ctx, message)
	if err != nil {
		b.logDeliveryError(ctx, err, text)

		return false
	}

	b.log.InfoContext(ctx, "Message is delivered",
		"target", b.target.String(),
		"messageID", sent.MessageID,
		"length", len(text))

	return true
}

func (b *Bot) logDeliveryError(ctx context.Context, err error, text string) {
	var apiErr *tgbotapi.Error
	if errors.As(err, &apiErr) {
		b.log.ErrorContext(ctx, "Telegram rejected message",
			"error", err,
			"code", apiErr.Code,
			"retryAfterSeconds", apiErr.RetryAfter,
			"hasMarkdown", markdown.HasLegacyEntities(text),
			"target", b.target.String(),
			"length", len(text))

		return
	}

	b.log.ErrorContext(ctx, "Failed to deliver message",
		"error", err,
		"target", b.target.String(),
		"length", len(text))
}

type chatTarget struct {
	id       int64
	username string
}

// parseChatTarget accepts a numeric chat ID (-100...) or a public channel
// username with or without the leading @.
func parseChatTarget(channelID string) (chatTarget, error) {
	channelID = strings.TrimSpace(channelID)
	if channelID == "" {
		return chatTarget{}, errors.New("channel ID is empty")
	}

	if id, err := strconv.ParseInt(channelID, 10, 64); err == nil {
		return chatTarget{id: id}, nil
	}

	username := strings.TrimPrefix(channelID, "@")
	if username == "" || strings.ContainsAny(username, " /") {
		return chatTarget{}, fmt.Errorf("channel ID %q is neither numeric nor a username", channelID)
	}

	return chatTarget{username: "@" + username}, nil
}

func (t chatTarget) newMessage(text string) tgbotapi.MessageConfig {
	if t.username != "" {
		return tgbotapi.NewMessageToChannel(t.username, text)
	}
	return tgbotapi.NewMessage(t.id, text)
}

func (t chatTarget) String() string {
	if t.username != "" {
		return t.username
	}
	return strconv.FormatInt(t.id, 10)
}
