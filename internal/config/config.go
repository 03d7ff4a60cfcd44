package config

import (
	"fmt"
	"time"
)

type Config struct {
	Env              string                  `env:"ENV,default=local"`
	Logger           LoggerConfig            `env:",prefix=LOGGER_"`
	Observability    ObservabilityHTTPConfig `env:",prefix=OBSERVABILITY_"`
	ShutdownDuration time.Duration           `env:"SHUTDOWN_DURATION,default=30s"`
	DB               SQLiteConfig            `env:",prefix=DB_"`
	Telegram         TelegramConfig          `env:",prefix=TELEGRAM_"`
	Backend          BackendConfig           `env:",prefix=BACKEND_"`
	Payment          PaymentConfig           `env:",prefix=PAYMENT_"`
	Sessions         SessionConfig           `env:",prefix=SESSIONS_"`
	Gate             GateConfig              `env:",prefix=GATE_"`
}

type TelegramConfig struct {
	BotToken string        `env:"BOT_TOKEN,required"`
	Timeout  time.Duration `env:"TIMEOUT,default=30s"`
	AdminIDs []int64       `env:"ADMIN_IDS"`
}

// BackendConfig points at the store backend HTTP API. ApproveTimeout is
// longer than Timeout because order approval may block on synchronous
// VPN provisioning.
type BackendConfig struct {
	BaseURL        string        `env:"BASE_URL,default=http://localhost:3000/api/v1"`
	Timeout        time.Duration `env:"TIMEOUT,default=15s"`
	ApproveTimeout time.Duration `env:"APPROVE_TIMEOUT,default=90s"`
	// Public host that relative subscription links resolve against.
	PanelBaseURL string `env:"PANEL_BASE_URL,default=http://localhost:3000"`
}

type PaymentConfig struct {
	// Used when GET /admin/settings fails or returns no card number.
	FallbackCardNumber string `env:"FALLBACK_CARD_NUMBER,default=1234-5678-9012-3456"`
}

type SessionConfig struct {
	TTL             time.Duration `env:"TTL,default=24h"`
	CleanupSchedule string        `env:"CLEANUP_SCHEDULE,default=*/10 * * * *"`
}

type GateConfig struct {
	AuthCacheTTL      time.Duration `env:"AUTH_CACHE_TTL,default=30m"`
	AuthCacheCapacity int           `env:"AUTH_CACHE_CAPACITY,default=10000"`
	LangCacheTTL      time.Duration `env:"LANG_CACHE_TTL,default=30m"`
}

type LoggerConfig struct {
	Level string `env:"LEVEL,default=debug"`
}

type ObservabilityHTTPConfig struct {
	Host         string        `env:"HOST,default=127.0.0.1"`
	Port         uint16        `env:"PORT,default=8383"`
	ReadTimeout  time.Duration `env:"READ_TIMEOUT,default=30s"`
	WriteTimeout time.Duration `env:"WRITE_TIMEOUT,default=30s"`
	IdleTimeout  time.Duration `env:"IDLE_TIMEOUT,default=1m"`
}

func (a ObservabilityHTTPConfig) ADDR() string {
	return fmt.Sprintf("%s:%d", a.Host, a.Port)
}

type SQLiteConfig struct {
	Path         string        `env:"PATH,default=./data/sellbot.db"`
	MaxOpenConns int           `env:"MAX_OPEN_CONNS,default=25"`
	MaxIdleConns int           `env:"MAX_IDLE_CONNS,default=5"`
	MaxLifetime  time.Duration `env:"MAX_LIFETIME,default=5m"`
}
