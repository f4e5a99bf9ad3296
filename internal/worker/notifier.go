package worker

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"armar/internal/config"
	"armar/internal/events"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

// ErrQueueFull is returned by Handle when the notification backlog is at capacity.
var ErrQueueFull = errors.New("notification queue full")

// MessageSender is the part of the Telegram bot API used by the notifier.
type MessageSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Notifier forwards new submissions to a Telegram chat from a background goroutine.
type Notifier struct {
	sender MessageSender
	chatID int64
	retry  RetryPolicy
	queue  chan events.Event
	logger *zerolog.Logger
}

// NewTelegramNotifier authenticates the bot token against the Telegram API.
func NewTelegramNotifier(cfg config.TelegramConfig, logger *zerolog.Logger) (*Notifier, error) {
	return newTelegramNotifier(cfg, tgbotapi.APIEndpoint, logger)
}

func newTelegramNotifier(cfg config.TelegramConfig, endpoint string, logger *zerolog.Logger) (*Notifier, error) {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	bot, err := tgbotapi.NewBotAPIWithClient(cfg.BotToken, endpoint, &http.Client{Timeout: 10 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("init telegram bot: %w", err)
	}
	logger.Info().Str("bot", bot.Self.UserName).Int64("chat_id", cfg.ChatID).Msg("telegram notifier ready")
	return NewNotifier(bot, cfg.ChatID, cfg.QueueSize, RetryPolicy{}, logger), nil
}

func NewNotifier(sender MessageSender, chatID int64, queueSize int, retry RetryPolicy, logger *zerolog.Logger) *Notifier {
	if queueSize <= 0 {
		queueSize = 100
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Notifier{
		sender: sender,
		chatID: chatID,
		retry:  retry.withDefaults(),
		queue:  make(chan events.Event, queueSize),
		logger: logger,
	}
}

// Subscribe attaches the notifier to submission events on bus.
func (n *Notifier) Subscribe(bus *events.Bus) {
	bus.Subscribe(n.Handle, events.EventAppointmentCreated, events.EventQuoteCreated)
}

// Handle enqueues an event without blocking.
func (n *Notifier) Handle(event *events.Event) error {
	select {
	case n.queue <- *event:
		return nil
	default:
		n.logger.Warn().Str("event", event.Type).Msg("notification queue full, event dropped")
		return ErrQueueFull
	}
}

// Run delivers queued events until ctx is done.
func (n *Notifier) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event := <-n.queue:
			if err := n.deliver(ctx, &event); err != nil && !errors.Is(err, context.Canceled) {
				n.logger.Error().Err(err).Str("event", event.Type).Msg("notification not delivered")
			}
		}
	}
}

func (n *Notifier) deliver(ctx context.Context, event *events.Event) error {
	text, err := formatSubmission(event)
	if err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(n.chatID, text)

	attempts := 0
	return n.retry.Do(ctx, func() error {
		attempts++
		_, err := n.sender.Send(msg)
		if err != nil {
			n.logger.Warn().Err(err).Int("attempt", attempts).Str("event", event.Type).Msg("telegram send failed")
		}
		return err
	})
}

func formatSubmission(event *events.Event) (string, error) {
	var p events.SubmissionPayload
	if err := event.Decode(&p); err != nil {
		return "", fmt.Errorf("decode %s payload: %w", event.Type, err)
	}

	var b strings.Builder
	line := func(label, value string) {
		if value != "" {
			fmt.Fprintf(&b, "%s: %s\n", label, value)
		}
	}

	switch event.Type {
	case events.EventAppointmentCreated:
		b.WriteString("New appointment request\n")
		line("Name", p.Name)
		line("Phone", p.Phone)
		line("Email", p.Email)
		line("Service", p.Subject)
		line("Date", p.PreferredDate)
		line("Time", p.PreferredTime)
		line("Message", p.Message)
	case events.EventQuoteCreated:
		b.WriteString("New quote request\n")
		line("Name", p.Name)
		line("Phone", p.Phone)
		line("Email", p.Email)
		line("Requirement", p.Subject)
		line("Budget", p.Budget)
	default:
		return "", fmt.Errorf("unexpected event %q", event.Type)
	}
	line("ID", p.ID)

	return strings.TrimRight(b.String(), "\n"), nil
}
