package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	applog "bazaar/internal/log"
)

type Config struct {
	Port           string        `mapstructure:"port"`
	DBDSN          string        `mapstructure:"db_dsn"`
	LogFile        string        `mapstructure:"log_file"`
	LogLevel       string        `mapstructure:"log_level"`
	BackendURL     string        `mapstructure:"backend_url"`
	BackendTimeout time.Duration `mapstructure:"backend_timeout"`
	PollInterval   time.Duration `mapstructure:"poll_interval"`
	CookieSecure   bool          `mapstructure:"cookie_secure"`
}

func defaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("db_dsn", "bazaar.db") // sqlite file in project root
	v.SetDefault("log_file", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("backend_url", "http://localhost:3000/api")
	v.SetDefault("backend_timeout", 10*time.Second)
	v.SetDefault("poll_interval", 3*time.Second)
	v.SetDefault("cookie_secure", false)
}

// Load resolves configuration from, lowest to highest precedence: defaults,
// an optional bazaar.yaml, .env, and the environment. Each key is read from
// BAZAAR_<KEY> or the bare upper-case name (PORT, DB_DSN, ...).
func Load() (Config, error) {
	_ = godotenv.Load() // .env is optional

	v := viper.New()
	defaults(v)
	v.SetConfigName("bazaar")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, err
		}
	}
	for _, k := range v.AllKeys() {
		_ = v.BindEnv(k, "BAZAAR_"+strings.ToUpper(k), strings.ToUpper(k))
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	cfg.BackendURL = strings.TrimRight(cfg.BackendURL, "/")
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 3 * time.Second
	}

	l := applog.Logger()
	l.Info().Str("action", "config.load").
		Str("port", cfg.Port).Str("db_dsn", cfg.DBDSN).Str("log_file", cfg.LogFile).
		Str("backend_url", cfg.BackendURL).Dur("poll_interval", cfg.PollInterval).
		Msg("configuration resolved")
	return cfg, nil
}
