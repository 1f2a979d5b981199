package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	JWT        JWTConfig
	Admin      AdminConfig
	Rabbit     RabbitConfig
	Telegram   TelegramConfig
	Cloudinary CloudinaryConfig
	Upload     UploadConfig
	Realtime   RealtimeConfig
}

type ServerConfig struct {
	Port        string        `envconfig:"PORT" default:"8080"`
	GinMode     string        `envconfig:"GIN_MODE" default:"debug"`
	CORSOrigins []string      `envconfig:"CORS_ORIGINS" default:"http://localhost:3000,http://localhost:5173"`
	CartTTL     time.Duration `envconfig:"CART_TTL" default:"24h"`
}

// DatabaseConfig selects the gorm dialect. DB_URL wins over the discrete
// Postgres fields when both are set.
type DatabaseConfig struct {
	Driver     string `envconfig:"DB_DRIVER" default:"postgres"`
	URL        string `envconfig:"DB_URL"`
	Host       string `envconfig:"DB_HOST" default:"localhost"`
	Port       string `envconfig:"DB_PORT" default:"5432"`
	User       string `envconfig:"DB_USER" default:"postgres"`
	Password   string `envconfig:"DB_PASSWORD" default:"password"`
	Name       string `envconfig:"DB_NAME" default:"salon_db"`
	SSLMode    string `envconfig:"DB_SSL_MODE" default:"disable"`
	SQLitePath string `envconfig:"DB_SQLITE_PATH" default:"salon.db"`
}

type JWTConfig struct {
	Secret      string `envconfig:"JWT_SECRET" default:"your-super-secret-jwt-key-change-this-in-production"`
	ExpiryHours int    `envconfig:"JWT_EXPIRY_HOURS" default:"24"`
	RefreshDays int    `envconfig:"JWT_REFRESH_DAYS" default:"30"`
}

type AdminConfig struct {
	Email    string `envconfig:"ADMIN_EMAIL"`
	Password string `envconfig:"ADMIN_PASSWORD"`
	Name     string `envconfig:"ADMIN_NAME" default:"Salon Admin"`
}

type RabbitConfig struct {
	URL         string `envconfig:"RABBIT_URL"`
	Exchange    string `envconfig:"RABBIT_EXCHANGE" default:"salon.events"`
	NotifyQueue string `envconfig:"RABBIT_NOTIFY_QUEUE" default:"salon.notify"`
	Buffer      int    `envconfig:"RABBIT_BUFFER" default:"100"`
}

type TelegramConfig struct {
	Token  string `envconfig:"TELEGRAM_TOKEN"`
	ChatID int64  `envconfig:"TELEGRAM_CHAT_ID"`
}

type CloudinaryConfig struct {
	URL    string `envconfig:"CLOUDINARY_URL"`
	Folder string `envconfig:"CLOUDINARY_FOLDER" default:"salon"`
}

type UploadConfig struct {
	Dir     string `envconfig:"UPLOAD_DIR" default:"uploads"`
	BaseURL string `envconfig:"UPLOAD_BASE_URL" default:"/uploads"`
}

type RealtimeConfig struct {
	ObserverBuffer  int           `envconfig:"REALTIME_OBSERVER_BUFFER" default:"256"`
	HistorySize     int           `envconfig:"REALTIME_HISTORY_SIZE" default:"500"`
	SummaryInterval time.Duration `envconfig:"REALTIME_SUMMARY_INTERVAL" default:"10s"`
}

var AppConfig *Config

// Load reads every section from the environment. Sections are processed
// without a prefix so the tags are the literal variable names.
func Load() error {
	var cfg Config
	sections := []any{
		&cfg.Server, &cfg.Database, &cfg.JWT, &cfg.Admin, &cfg.Rabbit,
		&cfg.Telegram, &cfg.Cloudinary, &cfg.Upload, &cfg.Realtime,
	}
	for _, section := range sections {
		if err := envconfig.Process("", section); err != nil {
			return fmt.Errorf("load config: %w", err)
		}
	}
	AppConfig = &cfg
	return nil
}

// PostgresDSN builds a keyword/value connection string from the discrete fields.
func (d DatabaseConfig) PostgresDSN() string {
	if d.URL != "" {
		return d.URL
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}
