package config

import "testing"

func TestLoadDefaultsForLocalDevelopment(t *testing.T) {
	t.Setenv("DISPATCHD_ENV", "dev")
	t.Setenv("DISPATCHD_PROPERTIES_KEY", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if len(cfg.Crypto.PropertiesKey) != 32 {
		t.Fatalf("expected 32-byte local fallback key, got %d bytes", len(cfg.Crypto.PropertiesKey))
	}
	if cfg.Server.Port != 8080 {
		t.Fatalf("expected default port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Notify.ChannelLimit != 10 {
		t.Fatalf("expected default channel limit 10, got %d", cfg.Notify.ChannelLimit)
	}
}

func TestLoadRequiresPropertiesKeyOutsideLocal(t *testing.T) {
	t.Setenv("DISPATCHD_ENV", "production")
	t.Setenv("DISPATCHD_PROPERTIES_KEY", "")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error for missing properties key in production")
	}
}

func TestLoadRejectsShortPropertiesKey(t *testing.T) {
	t.Setenv("DISPATCHD_ENV", "production")
	t.Setenv("DISPATCHD_PROPERTIES_KEY", "deadbeef")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error for short properties key")
	}
}

func TestLoadParsesValidPropertiesKey(t *testing.T) {
	t.Setenv("DISPATCHD_ENV", "production")
	t.Setenv("DISPATCHD_PROPERTIES_KEY",
		"000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if len(cfg.Crypto.PropertiesKey) != 32 {
		t.Fatalf("expected 32-byte key, got %d bytes", len(cfg.Crypto.PropertiesKey))
	}
	if cfg.Crypto.PropertiesKey[31] != 0x1f {
		t.Fatalf("unexpected key bytes: %x", cfg.Crypto.PropertiesKey)
	}
}

func TestLoadClampsQueueSettings(t *testing.T) {
	t.Setenv("DISPATCHD_ENV", "dev")
	t.Setenv("DISPATCHD_QUEUE_BUFFER", "-5")
	t.Setenv("DISPATCHD_QUEUE_WORKERS", "0")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Queue.Buffer != 256 {
		t.Fatalf("expected buffer fallback 256, got %d", cfg.Queue.Buffer)
	}
	if cfg.Queue.Workers != 4 {
		t.Fatalf("expected workers fallback 4, got %d", cfg.Queue.Workers)
	}
}
