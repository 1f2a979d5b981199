package relay

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"salon-server/events"
	"salon-server/models"
)

// Notifier delivers a human-readable alert to the salon staff
type Notifier interface {
	Notify(subject, message string) error
}

// LogNotifier writes alerts to the process log
type LogNotifier struct{}

func (LogNotifier) Notify(subject, message string) error {
	log.Printf("📣 %s :: %s", subject, message)
	return nil
}

// TelegramNotifier sends alerts to one admin chat
type TelegramNotifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

func NewTelegramNotifier(token string, chatID int64) (*TelegramNotifier, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("connect telegram bot: %w", err)
	}
	log.Printf("✅ Telegram bot authorized as @%s", bot.Self.UserName)
	return &TelegramNotifier{bot: bot, chatID: chatID}, nil
}

func (t *TelegramNotifier) Notify(subject, message string) error {
	msg := tgbotapi.NewMessage(t.chatID, subject+"\n"+message)
	if _, err := t.bot.Send(msg); err != nil {
		return fmt.Errorf("send telegram message: %w", err)
	}
	return nil
}

// Describe turns an event into an alert. ok is false for events staff do
// not need to hear about.
func Describe(ev events.Event) (subject, message string, ok bool) {
	switch ev.Type {
	case events.Created:
		return describeCreated(ev)
	case events.StatusChanged:
		return fmt.Sprintf("🔄 %s status changed", capitalize(string(ev.Kind))),
			fmt.Sprintf("%s %s: %s → %s", ev.Kind, ev.EntityID, ev.PreviousStatus, ev.NewStatus), true
	}
	return "", "", false
}

func describeCreated(ev events.Event) (string, string, bool) {
	switch ev.Kind {
	case models.KindBooking:
		var b models.Booking
		if err := json.Unmarshal(ev.Data, &b); err != nil {
			return "📅 New booking", ev.EntityID, true
		}
		return "📅 New booking", fmt.Sprintf("%s (%s) booked %s on %s at %s",
			b.CustomerName, b.Phone, b.ServiceName, b.Date, b.Time), true

	case models.KindOrder:
		var o models.Order
		if err := json.Unmarshal(ev.Data, &o); err != nil {
			return "🛍️ New order", ev.EntityID, true
		}
		units := 0
		for _, item := range o.Items {
			units += item.Quantity
		}
		return "🛍️ New order", fmt.Sprintf("%s (%s) ordered %d item(s), total %s",
			o.CustomerName, o.Phone, units, o.TotalAmount.StringFixed(2)), true

	case models.KindEnquiry:
		var e models.Enquiry
		if err := json.Unmarshal(ev.Data, &e); err != nil {
			return "✉️ New enquiry", ev.EntityID, true
		}
		return "✉️ New enquiry", fmt.Sprintf("%s <%s> about %s: %s", e.Name, e.Email, e.Type, e.Message), true
	}
	return "", "", false
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// NotifyHandler adapts a Notifier into a consumer Handler.
func NotifyHandler(n Notifier) Handler {
	return func(_ context.Context, ev events.Event) error {
		subject, message, ok := Describe(ev)
		if !ok {
			return nil
		}
		return n.Notify(subject, message)
	}
}
