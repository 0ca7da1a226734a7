package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Channel  string `mapstructure:"channel"`
}

type Config struct {
	Mode         string        `mapstructure:"mode"`
	Port         int           `mapstructure:"port"`
	StaticPath   string        `mapstructure:"static_path"`
	ReadLimit    int64         `mapstructure:"read_limit"`
	PingPeriod   time.Duration `mapstructure:"ping_period"`
	SendBuffer   int           `mapstructure:"send_buffer"`
	Secret       string        `mapstructure:"secret"`
	ChatScope    string        `mapstructure:"chat_scope"`
	Backpressure string        `mapstructure:"backpressure"`
	ChatLimit    int           `mapstructure:"chat_limit"`
	ChatWindow   time.Duration `mapstructure:"chat_window"`
	LogLevel     string        `mapstructure:"log_level"`
	Redis        RedisConfig   `mapstructure:"redis"`
}

// ClientConfig drives the headless participant.
type ClientConfig struct {
	Server      string        `mapstructure:"server"`
	Room        string        `mapstructure:"room"`
	User        string        `mapstructure:"user"`
	SettleDelay time.Duration `mapstructure:"settle_delay"`
	ICEServers  []string      `mapstructure:"ice_servers"`
	Camera      string        `mapstructure:"camera"`
	Microphone  string        `mapstructure:"microphone"`
	Screen      string        `mapstructure:"screen"`
	LogLevel    string        `mapstructure:"log_level"`
}

func newViper(name string) *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix("COLLAB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	v.SetConfigFile(fmt.Sprintf("config/%s.%s.yaml", name, env))
	return v
}

func read(v *viper.Viper) {
	if err := v.ReadInConfig(); err != nil {
		log.Warn().Str("module", "config").Str("file", v.ConfigFileUsed()).Msg("config file not found, using defaults")
		return
	}
	log.Info().Str("module", "config").Str("file", v.ConfigFileUsed()).Msg("loaded config")
}

func Load() (*Config, error) {
	v := newViper("config")

	v.SetDefault("mode", "release")
	v.SetDefault("port", 8080)
	v.SetDefault("static_path", "./web")
	v.SetDefault("read_limit", 1<<20)
	v.SetDefault("ping_period", "54s")
	v.SetDefault("send_buffer", 64)
	v.SetDefault("secret", "collab-dev-secret")
	v.SetDefault("chat_scope", "global")
	v.SetDefault("backpressure", "drop")
	v.SetDefault("chat_limit", 0)
	v.SetDefault("chat_window", "10s")
	v.SetDefault("log_level", "info")
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.channel", "collab:global")

	read(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if cfg.ChatScope != "global" && cfg.ChatScope != "room" {
		return nil, fmt.Errorf("chat_scope %q: want global or room", cfg.ChatScope)
	}
	log.Info().Str("module", "config").Str("mode", cfg.Mode).Int("port", cfg.Port).Str("chat_scope", cfg.ChatScope).Msg("server config")
	return &cfg, nil
}

// LoadClient merges defaults, the client config file, COLLAB_* env and the given flags, in rising priority.
func LoadClient(flags *pflag.FlagSet) (*ClientConfig, error) {
	v := newViper("client")

	v.SetDefault("server", "ws://localhost:8080/api/ws/signal")
	v.SetDefault("settle_delay", "1s")
	v.SetDefault("ice_servers", []string{"stun:stun.l.google.com:19302"})
	v.SetDefault("log_level", "info")

	if flags != nil {
		var bindErr error
		flags.VisitAll(func(f *pflag.Flag) {
			if err := v.BindPFlag(strings.ReplaceAll(f.Name, "-", "_"), f); err != nil && bindErr == nil {
				bindErr = err
			}
		})
		if bindErr != nil {
			return nil, fmt.Errorf("bind flags: %w", bindErr)
		}
	}
	read(v)

	var cfg ClientConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if cfg.Room == "" {
		return nil, fmt.Errorf("room is required")
	}
	if cfg.User == "" {
		cfg.User = "guest"
	}
	return &cfg, nil
}

// SetupLogger installs the console logger at the configured level.
func SetupLogger(level string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
}
