package config

import (
	"fmt"
	"strconv"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

const (
	StorageMemory = "memory"
	StorageRedis  = "redis"
)

type Config struct {
	Debug bool `env:"DEBUG" envDefault:"false"`

	Server struct {
		Port   int    `env:"PORT" envDefault:"8080"`
		Origin string `env:"ORIGIN" envDefault:"http://localhost:3000"`
	}

	// memory keeps all state in process, redis makes the ledger survive restarts
	StorageDriver string `env:"STORAGE_DRIVER" envDefault:"memory"`

	Redis struct {
		Host     string `env:"REDIS_HOST" envDefault:"localhost"`
		Port     int    `env:"REDIS_PORT" envDefault:"6379"`
		Password string `env:"REDIS_PASSWORD" envDefault:""`
		DB       int    `env:"REDIS_DB" envDefault:"0"`
	}

	Telegram struct {
		BotToken    string        `env:"BOT_TOKEN"`
		InitDataTTL time.Duration `env:"INIT_DATA_TTL" envDefault:"24h"`
		AdminIDs    []int64       `env:"ADMIN_IDS" envSeparator:","`
	}

	Catalog struct {
		SeedFile string `env:"SEED_FILE"`
	}

	Engine struct {
		CooldownWindowHours  int           `env:"COOLDOWN_WINDOW_HOURS" envDefault:"24"`
		UrgentThresholdHours int           `env:"URGENT_THRESHOLD_HOURS" envDefault:"24"`
		RankImprovementMax   int           `env:"RANK_IMPROVEMENT_MAX" envDefault:"10"`
		TickInterval         time.Duration `env:"TICK_INTERVAL" envDefault:"1s"`
		SessionIdleTTL       time.Duration `env:"SESSION_IDLE_TTL" envDefault:"1h"`
		RankSeed             uint64        `env:"RANK_SEED" envDefault:"0"`
	}

	RateLimit struct {
		SharesPerMinute float64 `env:"SHARE_RATE_PER_MINUTE" envDefault:"30"`
		Burst           int     `env:"SHARE_RATE_BURST" envDefault:"10"`
	}
}

// Load reads the optional .env file and then the process environment.
func Load() (*Config, error) {
	// a missing .env is normal outside local development
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.StorageDriver != StorageMemory && c.StorageDriver != StorageRedis {
		return fmt.Errorf("invalid STORAGE_DRIVER %q: want %s or %s", c.StorageDriver, StorageMemory, StorageRedis)
	}
	if c.Engine.CooldownWindowHours <= 0 {
		return fmt.Errorf("COOLDOWN_WINDOW_HOURS must be positive, got %d", c.Engine.CooldownWindowHours)
	}
	if c.Engine.UrgentThresholdHours <= 0 {
		return fmt.Errorf("URGENT_THRESHOLD_HOURS must be positive, got %d", c.Engine.UrgentThresholdHours)
	}
	if c.Engine.RankImprovementMax < 0 {
		return fmt.Errorf("RANK_IMPROVEMENT_MAX must not be negative, got %d", c.Engine.RankImprovementMax)
	}
	if c.Engine.TickInterval <= 0 {
		return fmt.Errorf("TICK_INTERVAL must be positive, got %s", c.Engine.TickInterval)
	}
	if c.RateLimit.SharesPerMinute <= 0 || c.RateLimit.Burst <= 0 {
		return fmt.Errorf("share rate limit must be positive")
	}
	return nil
}

func (c *Config) RedisAddr() string {
	return c.Redis.Host + ":" + strconv.Itoa(c.Redis.Port)
}

func (c *Config) CooldownWindow() time.Duration {
	return time.Duration(c.Engine.CooldownWindowHours) * time.Hour
}

func (c *Config) UrgentThreshold() time.Duration {
	return time.Duration(c.Engine.UrgentThresholdHours) * time.Hour
}

func (c *Config) IsAdmin(userID int64) bool {
	for _, id := range c.Telegram.AdminIDs {
		if id == userID {
			return true
		}
	}
	return false
}
