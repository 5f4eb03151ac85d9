package cliconfig

import (
	"testing"
	"time"
)

func TestApplyEnvConfig(t *testing.T) {
	t.Setenv("RECEIPTD_LISTEN_ADDR", ":9443")
	t.Setenv("RECEIPTD_KEYSTORE", "/env/server.p12")
	t.Setenv("RECEIPTD_KEYSTORE_PASSPHRASE", "sekret")
	t.Setenv("RECEIPTD_READ_TIMEOUT", "12s")
	t.Setenv("RECEIPTD_WATCH_CREDENTIALS", "false")

	cfg := Config{WatchCredentials: true}
	if err := ApplyEnvConfig(&cfg, map[string]bool{}); err != nil {
		t.Fatalf("ApplyEnvConfig returned error: %v", err)
	}

	if cfg.ListenAddr != ":9443" {
		t.Errorf("ListenAddr = %v, want :9443", cfg.ListenAddr)
	}
	if cfg.KeystorePath != "/env/server.p12" {
		t.Errorf("KeystorePath = %v, want /env/server.p12", cfg.KeystorePath)
	}
	if cfg.KeystorePassphrase != "sekret" {
		t.Errorf("KeystorePassphrase = %v, want sekret", cfg.KeystorePassphrase)
	}
	if cfg.ReadTimeout != 12*time.Second {
		t.Errorf("ReadTimeout = %v, want 12s", cfg.ReadTimeout)
	}
	if cfg.WatchCredentials {
		t.Error("WatchCredentials = true, want false from env")
	}
}

func TestApplyEnvConfig_FlagPrecedence(t *testing.T) {
	t.Setenv("RECEIPTD_LISTEN_ADDR", ":9443")

	cfg := Config{ListenAddr: ":7443"}
	if err := ApplyEnvConfig(&cfg, map[string]bool{"listen": true}); err != nil {
		t.Fatalf("ApplyEnvConfig returned error: %v", err)
	}
	if cfg.ListenAddr != ":7443" {
		t.Errorf("ListenAddr = %v, flag value should win over env", cfg.ListenAddr)
	}
}

func TestApplyEnvConfig_BadDuration(t *testing.T) {
	t.Setenv("RECEIPTD_READ_TIMEOUT", "soon")

	cfg := Config{}
	if err := ApplyEnvConfig(&cfg, map[string]bool{}); err == nil {
		t.Fatal("ApplyEnvConfig accepted malformed duration")
	}
}
