// Command notify forwards salon change events from RabbitMQ to the admin
// Telegram chat. Without Telegram credentials the alerts are logged.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"salon-server/config"
	"salon-server/relay"
)

func bindings() []string {
	raw := os.Getenv("NOTIFY_BINDINGS")
	if raw == "" {
		return []string{"booking.*", "order.*", "enquiry.*"}
	}
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}
	if err := config.Load(); err != nil {
		log.Fatal("Failed to load configuration:", err)
	}
	cfg := config.AppConfig
	if cfg.Rabbit.URL == "" {
		log.Fatal("RABBIT_URL is required")
	}

	var notifier relay.Notifier = relay.LogNotifier{}
	if cfg.Telegram.Token != "" && cfg.Telegram.ChatID != 0 {
		tg, err := relay.NewTelegramNotifier(cfg.Telegram.Token, cfg.Telegram.ChatID)
		if err != nil {
			log.Fatal("Failed to start Telegram notifier:", err)
		}
		notifier = tg
	} else {
		log.Println("⚠️ TELEGRAM_TOKEN or TELEGRAM_CHAT_ID not set, alerts go to the log")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	consumerCfg := relay.ConsumerConfig{
		URL:      cfg.Rabbit.URL,
		Exchange: cfg.Rabbit.Exchange,
		Queue:    cfg.Rabbit.NotifyQueue,
		Bindings: bindings(),
		Prefetch: 16,
		Name:     "salon-notify",
	}
	log.Printf("🚀 Notifier started. queue=%s exchange=%s bindings=%v",
		consumerCfg.Queue, consumerCfg.Exchange, consumerCfg.Bindings)

	if err := relay.Consume(ctx, consumerCfg, 2*time.Second, relay.NotifyHandler(notifier)); err != nil {
		log.Printf("❌ Notifier stopped: %v", err)
	}
	log.Println("🛑 Notifier stopped")
}
