package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"erp/internal/usecase/oplog"
)

// Configはアプリ全体の設定
type Config struct {
	Port string // サーバーポート（8080）

	DatabaseURL      string // あれば POSTGRES_* より優先
	PostgresUser     string // DBユーザー
	PostgresPassword string // DBパスワード
	PostgresDB       string // DB名
	PostgresHost     string // DBホスト（localhost）
	PostgresPort     int    // DBポート（5432）
	PostgresSSLMode  string

	JWTSecret string // JWT署名シークレット

	GoEnv         string // dev/prod
	MigrationsDir string

	// 注文ログのまとめ方
	Coalescer  oplog.CoalescerConfig
	SweepEvery time.Duration
}

// Loadは環境変数から読む。未設定は開発用の既定値。
func Load() (Config, error) {
	pgPort, err := atoiOr("POSTGRES_PORT", 5432)
	if err != nil {
		return Config{}, err
	}

	def := oplog.DefaultCoalescerConfig()
	var co oplog.CoalescerConfig
	if co.WindowMin, err = durationOr("OPLOG_WINDOW_MIN", def.WindowMin); err != nil {
		return Config{}, err
	}
	if co.WindowMax, err = durationOr("OPLOG_WINDOW_MAX", def.WindowMax); err != nil {
		return Config{}, err
	}
	if co.StaleAfter, err = durationOr("OPLOG_STALE_AFTER", def.StaleAfter); err != nil {
		return Config{}, err
	}
	if co.Cooldown, err = durationOr("OPLOG_COOLDOWN", def.Cooldown); err != nil {
		return Config{}, err
	}
	sweep, err := durationOr("OPLOG_SWEEP_EVERY", time.Second)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Port: getenv("PORT", "8080"),

		DatabaseURL:      os.Getenv("DATABASE_URL"),
		PostgresUser:     getenv("POSTGRES_USER", "postgres"),
		PostgresPassword: getenv("POSTGRES_PASSWORD", "postgres"),
		PostgresDB:       getenv("POSTGRES_DB", "erp"),
		PostgresHost:     getenv("POSTGRES_HOST", "localhost"),
		PostgresPort:     pgPort,
		PostgresSSLMode:  getenv("POSTGRES_SSLMODE", "disable"),

		JWTSecret: os.Getenv("JWT_SECRET"),

		GoEnv:         getenv("GO_ENV", "dev"),
		MigrationsDir: getenv("MIGRATIONS_DIR", "migrations"),

		Coalescer:  co,
		SweepEvery: sweep,
	}

	//必須チェック
	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET is required")
	}
	if err := cfg.Coalescer.Validate(); err != nil {
		return Config{}, fmt.Errorf("OPLOG_*: %w", err)
	}
	if cfg.SweepEvery <= 0 {
		return Config{}, fmt.Errorf("OPLOG_SWEEP_EVERY must be positive")
	}

	return cfg, nil
}

// postgres://... 形式の接続先（migrate 用）
func (c Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.PostgresUser, c.PostgresPassword, c.PostgresHost, c.PostgresPort, c.PostgresDB, c.PostgresSSLMode)
}

func (c Config) Addr() string {
	if c.Port != "" && c.Port[0] == ':' {
		return c.Port
	}
	return ":" + c.Port
}

func (c Config) IsProd() bool {
	return c.GoEnv == "prod"
}

func getenv(key string, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func atoiOr(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be number: %w", key, err)
	}
	return i, nil
}

func durationOr(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be duration: %w", key, err)
	}
	return d, nil
}
