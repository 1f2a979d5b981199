package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	require.NoError(t, Load())
	assert.Equal(t, "8080", AppConfig.Server.Port)
	assert.Equal(t, "postgres", AppConfig.Database.Driver)
	assert.Equal(t, 24*time.Hour, AppConfig.Server.CartTTL)
	assert.Equal(t, 10*time.Second, AppConfig.Realtime.SummaryInterval)
	assert.Equal(t, "salon.events", AppConfig.Rabbit.Exchange)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_SQLITE_PATH", "/tmp/test.db")
	t.Setenv("CORS_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("TELEGRAM_CHAT_ID", "12345")

	require.NoError(t, Load())
	assert.Equal(t, "sqlite", AppConfig.Database.Driver)
	assert.Equal(t, "/tmp/test.db", AppConfig.Database.SQLitePath)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, AppConfig.Server.CORSOrigins)
	assert.Equal(t, int64(12345), AppConfig.Telegram.ChatID)
}

func TestLoadRejectsMalformedValues(t *testing.T) {
	t.Setenv("JWT_EXPIRY_HOURS", "soon")
	assert.Error(t, Load())
}

func TestPostgresDSN(t *testing.T) {
	d := DatabaseConfig{Host: "db", Port: "5432", User: "u", Password: "p", Name: "salon", SSLMode: "disable"}
	assert.Contains(t, d.PostgresDSN(), "host=db")
	assert.Contains(t, d.PostgresDSN(), "dbname=salon")

	d.URL = "postgresql://u:p@db/salon"
	assert.Equal(t, "postgresql://u:p@db/salon", d.PostgresDSN())
}
