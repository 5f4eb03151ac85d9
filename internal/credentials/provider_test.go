package credentials

import (
	"context"
	"crypto/tls"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func copyFixture(t *testing.T, src, dst string) {
	t.Helper()
	data, err := os.ReadFile(src)
	if err != nil {
		t.Fatalf("read fixture %s: %v", src, err)
	}
	if err := os.WriteFile(dst, data, 0o600); err != nil {
		t.Fatalf("write %s: %v", dst, err)
	}
}

func newTestProvider(t *testing.T) (*Provider, string, string) {
	t.Helper()
	dir := t.TempDir()
	keystore := filepath.Join(dir, "server.p12")
	truststore := filepath.Join(dir, "truststore.p12")
	copyFixture(t, keystoreFixture, keystore)
	copyFixture(t, truststoreFixture, truststore)

	p, err := NewProvider(keystore, fixturePassphrase, truststore, fixturePassphrase, tls.VersionTLS12, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewProvider returned error: %v", err)
	}
	return p, keystore, truststore
}

func TestNewProvider_BadMaterialFatal(t *testing.T) {
	_, err := NewProvider("/does/not/exist.p12", "x", "/does/not/exist.p12", "x", tls.VersionTLS12, zerolog.Nop())
	if err == nil {
		t.Fatal("NewProvider accepted missing containers")
	}
}

func TestProvider_ServerConfig(t *testing.T) {
	p, _, _ := newTestProvider(t)

	cfg := p.ServerConfig()
	if cfg.GetConfigForClient == nil {
		t.Fatal("ServerConfig has no per-client hook")
	}
	active, err := cfg.GetConfigForClient(nil)
	if err != nil {
		t.Fatalf("GetConfigForClient returned error: %v", err)
	}
	if active.ClientAuth != tls.RequireAndVerifyClientCert {
		t.Errorf("ClientAuth = %v, want RequireAndVerifyClientCert", active.ClientAuth)
	}
}

func TestProvider_ReloadKeepsOldOnFailure(t *testing.T) {
	p, keystore, _ := newTestProvider(t)

	before := p.active.Load()
	if before == nil {
		t.Fatal("no active config after NewProvider")
	}

	if err := os.WriteFile(keystore, []byte("garbage"), 0o600); err != nil {
		t.Fatalf("corrupt keystore: %v", err)
	}
	if err := p.Reload(); err == nil {
		t.Fatal("Reload accepted corrupted keystore")
	}
	if p.active.Load() != before {
		t.Error("failed reload replaced the active configuration")
	}
}

func TestProvider_WatchReloadsOnChange(t *testing.T) {
	p, keystore, _ := newTestProvider(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go p.Watch(ctx)

	// give the watcher a moment to register the directories
	time.Sleep(200 * time.Millisecond)

	before := p.active.Load()
	copyFixture(t, keystoreFixture, keystore)

	deadline := time.After(3 * time.Second)
	for p.active.Load() == before {
		select {
		case <-deadline:
			t.Fatal("watcher never reloaded after keystore change")
		case <-time.After(50 * time.Millisecond):
		}
	}
}
