package ratelimiter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	privateChatRate = time.Second
	groupChatRate   = 3 * time.Second
	queueSize       = 100
)

var ErrStopped = errors.New("rate limiter is stopped")

// Sender is the part of the Telegram client the limiter drives.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// chatKey identifies a destination either by numeric ID or by the public
// @username of a channel.
type chatKey struct {
	id       int64
	username string
}

type request struct {
	ctx      context.Context
	message  tgbotapi.Chattable
	response chan response
}

type response struct {
	message tgbotapi.Message
	err     error
}

// RateLimiter serialises outgoing messages and spaces them per chat so
// overlapping senders stay under Telegram's flood limits.
type RateLimiter struct {
	sender   Sender
	queue    chan request
	lastSent map[chatKey]time.Time
	mu       sync.Mutex
	ctx      context.Context
	cancel   context.CancelFunc
	done     chan struct{}
	log      *slog.Logger
}

func New(sender Sender, log *slog.Logger) *RateLimiter {
	ctx, cancel := context.WithCancel(context.Background())

	rl := &RateLimiter{
		sender:   sender,
		queue:    make(chan request, queueSize),
		lastSent: make(map[chatKey]time.Time),
		ctx:      ctx,
		cancel:   cancel,
		done:     make(chan struct{}),
		log:      log,
	}

	go rl.processQueue()

	return rl
}

// Send queues the message and waits for it to be sent, for ctx to end or for
// the limiter to stop.
func (rl *RateLimiter) Send(
	ctx context.Context,
	message tgbotapi.Chattable,
) (tgbotapi.Message, error) {
	req := request{
		ctx:      ctx,
		message:  message,
		response: make(chan response, 1),
	}

	select {
	case rl.queue <- req:
	case <-ctx.Done():
		return tgbotapi.Message{}, ctx.Err()
	case <-rl.ctx.Done():
		return tgbotapi.Message{}, ErrStopped
	}

	select {
	case resp := <-req.response:
		return resp.message, resp.err
	case <-ctx.Done():
		return tgbotapi.Message{}, ctx.Err()
	case <-rl.done:
		return tgbotapi.Message{}, ErrStopped
	}
}

func (rl *RateLimiter) Stop() {
	rl.cancel()
	<-rl.done
}

func (rl *RateLimiter) processQueue() {
	defer close(rl.done)

	for {
		select {
		case req := <-rl.queue:
			rl.handleRequest(req)
		case <-rl.ctx.Done():
			return
		}
	}
}

func (rl *RateLimiter) handleRequest(req request) {
	if req.ctx.Err() != nil {
		req.response <- response{err: req.ctx.Err()}
		return
	}

	key := getChatKey(req.message)

	rl.mu.Lock()
	lastSent, exists := rl.lastSent[key]
	rl.mu.Unlock()

	if exists {
		if delay := getDelay(key, lastSent); delay > 0 {
			rl.log.DebugContext(req.ctx, "Rate limiting message",
				"chatID", key.id,
				"channelUsername", key.username,
				"delay", delay,
				"chattableType", fmt.Sprintf("%T", req.message),
				"queueLen", len(rl.queue))

			select {
			case <-time.After(delay):
			case <-req.ctx.Done():
				req.response <- response{err: req.ctx.Err()}
				return
			case <-rl.ctx.Done():
				req.response <- response{err: ErrStopped}
				return
			}
		}
	}

	message, err := rl.send(req.message)

	rl.mu.Lock()
	rl.lastSent[key] = time.Now()
	rl.mu.Unlock()

	req.response <- response{
		message: message,
		err:     err,
	}
}

func (rl *RateLimiter) send(c tgbotapi.Chattable) (message tgbotapi.Message, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("send panicked: %v", p)
		}
	}()

	return rl.sender.Send(c)
}

func getChatKey(message tgbotapi.Chattable) chatKey {
	switch m := message.(type) {
	case tgbotapi.MessageConfig:
		return chatKey{id: m.ChatID, username: m.ChannelUsername}
	case tgbotapi.ChatActionConfig:
		return chatKey{id: m.ChatID, username: m.ChannelUsername}
	default:
		return chatKey{}
	}
}

func getDelay(key chatKey, lastSent time.Time) time.Duration {
	return max(getRate(key)-time.Since(lastSent), 0)
}

// Channels addressed by username and negative IDs (groups, channels) share
// the slower rate.
func getRate(key chatKey) time.Duration {
	if key.username != "" || key.id < 0 {
		return groupChatRate
	}
	return privateChatRate
}
