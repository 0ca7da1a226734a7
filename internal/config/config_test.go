package config

import (
	"testing"
	"time"

	"github.com/spf13/pflag"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CONFIG_ENV", "missing")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Port != 8080 || cfg.ChatScope != "global" || cfg.SendBuffer != 64 {
		t.Errorf("unexpected defaults %+v", cfg)
	}
	if cfg.PingPeriod != 54*time.Second {
		t.Errorf("ping_period = %v", cfg.PingPeriod)
	}
	if cfg.Redis.Addr != "" {
		t.Errorf("redis must be off by default, got %q", cfg.Redis.Addr)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("CONFIG_ENV", "missing")
	t.Setenv("COLLAB_CHAT_SCOPE", "room")
	t.Setenv("COLLAB_REDIS_ADDR", "localhost:6379")
	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.ChatScope != "room" || cfg.Redis.Addr != "localhost:6379" {
		t.Errorf("env not applied: %+v", cfg)
	}
}

func TestLoadRejectsUnknownScope(t *testing.T) {
	t.Setenv("CONFIG_ENV", "missing")
	t.Setenv("COLLAB_CHAT_SCOPE", "planet")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for unknown chat scope")
	}
}

func TestLoadClientFlags(t *testing.T) {
	t.Setenv("CONFIG_ENV", "missing")
	fs := pflag.NewFlagSet("join", pflag.ContinueOnError)
	fs.String("room", "", "")
	fs.String("user", "", "")
	fs.Duration("settle-delay", time.Second, "")
	if err := fs.Parse([]string{"--room", "R1", "--settle-delay", "250ms"}); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadClient(fs)
	if err != nil {
		t.Fatalf("LoadClient() failed: %v", err)
	}
	if cfg.Room != "R1" || cfg.SettleDelay != 250*time.Millisecond {
		t.Errorf("flags not applied: %+v", cfg)
	}
	if cfg.User != "guest" {
		t.Errorf("expected guest label, got %q", cfg.User)
	}
	if len(cfg.ICEServers) != 1 {
		t.Errorf("expected default ICE server, got %v", cfg.ICEServers)
	}
}

func TestLoadClientNeedsRoom(t *testing.T) {
	t.Setenv("CONFIG_ENV", "missing")
	if _, err := LoadClient(nil); err == nil {
		t.Fatal("expected error without room")
	}
}
