package transport

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"

	"kapebot/internal/domain"
)

// telegramPrefix distinguishes Telegram chat ids from WhatsApp numbers
// in session keys and recipient ids.
const telegramPrefix = "tg:"

// InboundHandler consumes inbound messages. The engine satisfies it.
type InboundHandler interface {
	Handle(ctx context.Context, msg domain.InboundMessage)
}

// TelegramChannel runs the bot over Telegram as a second channel next
// to WhatsApp. Inbound texts feed the same engine; replies go back
// through Send with "tg:"-prefixed recipient ids.
type TelegramChannel struct {
	bot    *tele.Bot
	logger *zap.Logger
}

// NewTelegramChannel creates the channel and registers its handlers
func NewTelegramChannel(token string, handler InboundHandler, logger *zap.Logger) (*TelegramChannel, error) {
	bot, err := tele.NewBot(tele.Settings{
		Token:  token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	})
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}

	ch := &TelegramChannel{bot: bot, logger: logger}

	bot.Handle(tele.OnText, func(c tele.Context) error {
		msg := domain.InboundMessage{
			Text:        c.Text(),
			SenderID:    telegramPrefix + strconv.FormatInt(c.Sender().ID, 10),
			DisplayName: strings.TrimSpace(c.Sender().FirstName + " " + c.Sender().LastName),
		}
		handler.Handle(context.Background(), msg)
		return nil
	})

	return ch, nil
}

// Start begins long-polling; it blocks until Stop is called
func (ch *TelegramChannel) Start() {
	ch.bot.Start()
}

// Stop stops the poller
func (ch *TelegramChannel) Stop() {
	ch.bot.Stop()
}

// Send delivers body to a "tg:"-prefixed recipient
func (ch *TelegramChannel) Send(_ context.Context, recipientID, body string) error {
	raw := strings.TrimPrefix(recipientID, telegramPrefix)
	chatID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return fmt.Errorf("bad telegram recipient %q: %w", recipientID, err)
	}
	if _, err := ch.bot.Send(tele.ChatID(chatID), body); err != nil {
		return fmt.Errorf("send telegram message: %w", err)
	}
	return nil
}

// IsTelegramRecipient reports whether a recipient id belongs to the
// Telegram channel.
func IsTelegramRecipient(recipientID string) bool {
	return strings.HasPrefix(recipientID, telegramPrefix)
}

// Router sends each message through the channel owning its recipient id
type Router struct {
	whatsapp Sender
	telegram Sender
}

// NewRouter creates a sender that dispatches on recipient id prefix.
// telegram may be nil when the channel is disabled.
func NewRouter(whatsapp, telegram Sender) *Router {
	return &Router{whatsapp: whatsapp, telegram: telegram}
}

// Send routes to Telegram for "tg:" recipients, WhatsApp otherwise
func (r *Router) Send(ctx context.Context, recipientID, body string) error {
	if IsTelegramRecipient(recipientID) {
		if r.telegram == nil {
			return fmt.Errorf("telegram channel disabled, cannot reach %s", recipientID)
		}
		return r.telegram.Send(ctx, recipientID, body)
	}
	return r.whatsapp.Send(ctx, recipientID, body)
}
