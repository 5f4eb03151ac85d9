package credentials

import (
	"context"
	"crypto/tls"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// Provider holds the active TLS configuration and supports live rotation of
// the underlying credential containers.
type Provider struct {
	keystorePath   string
	keystorePass   string
	truststorePath string
	truststorePass string
	minVersion     uint16
	log            zerolog.Logger

	active atomic.Pointer[tls.Config]

	mu       sync.Mutex
	debounce *time.Timer
}

// NewProvider loads the credential containers once and returns a provider
// serving the resulting configuration. A load failure here is fatal to
// startup and surfaces as a *domain.CredentialError.
func NewProvider(keystorePath, keystorePass, truststorePath, truststorePass string, minVersion uint16, log zerolog.Logger) (*Provider, error) {
	p := &Provider{
		keystorePath:   keystorePath,
		keystorePass:   keystorePass,
		truststorePath: truststorePath,
		truststorePass: truststorePass,
		minVersion:     minVersion,
		log:            log,
	}
	if err := p.Reload(); err != nil {
		return nil, err
	}
	return p, nil
}

// ServerConfig returns the configuration handed to the TLS listener.
// It indirects through the active pointer per handshake, so a completed
// Reload takes effect for the next connection without touching the listener.
func (p *Provider) ServerConfig() *tls.Config {
	return &tls.Config{
		MinVersion: p.minVersion,
		GetConfigForClient: func(*tls.ClientHelloInfo) (*tls.Config, error) {
			return p.active.Load(), nil
		},
	}
}

// Reload re-reads both containers and atomically swaps the active
// configuration. On failure the previous configuration stays in effect.
func (p *Provider) Reload() error {
	m, err := LoadMaterial(p.keystorePath, p.keystorePass, p.truststorePath, p.truststorePass)
	if err != nil {
		return err
	}
	p.active.Store(TLSConfig(m, p.minVersion))
	return nil
}

// Watch monitors the container files via fsnotify and reloads on change.
// It blocks until ctx is canceled; watch setup failures are logged, not
// fatal, since the initially loaded configuration keeps serving.
func (p *Provider) Watch(ctx context.Context) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		p.log.Error().Err(err).Msg("credential watcher: failed to create watcher")
		return
	}
	defer watcher.Close()

	// Watch the parent directories; editors and provisioning tools usually
	// replace the file rather than write it in place.
	dirs := map[string]struct{}{
		filepath.Dir(p.keystorePath):   {},
		filepath.Dir(p.truststorePath): {},
	}
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			p.log.Error().Err(err).Str("dir", dir).Msg("credential watcher: failed to watch")
			return
		}
	}

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			name := filepath.Clean(event.Name)
			if name != filepath.Clean(p.keystorePath) && name != filepath.Clean(p.truststorePath) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			p.debounceReload(100 * time.Millisecond)

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			p.log.Error().Err(err).Msg("credential watcher: error")
		}
	}
}

// debounceReload coalesces bursts of file events into a single reload.
func (p *Provider) debounceReload(d time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.debounce != nil {
		p.debounce.Stop()
	}
	p.debounce = time.AfterFunc(d, func() {
		if err := p.Reload(); err != nil {
			p.log.Error().Err(err).Msg("credential reload failed, keeping previous configuration")
			return
		}
		p.log.Info().Msg("credentials reloaded")
	})
}
