package cliconfig

import (
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// FileConfig mirrors Config but uses strings for durations to make TOML friendly.
type FileConfig struct {
	ListenAddr           string `toml:"listen_addr"`
	KeystorePath         string `toml:"keystore_path"`
	KeystorePassphrase   string `toml:"keystore_passphrase"`
	TruststorePath       string `toml:"truststore_path"`
	TruststorePassphrase string `toml:"truststore_passphrase"`
	MinTLSVersion        string `toml:"min_tls_version"`
	ReadTimeout          string `toml:"read_timeout"`
	AcceptTimeout        string `toml:"accept_timeout"`
	ShutdownGrace        string `toml:"shutdown_grace"`
	StateDir             string `toml:"state_dir"`
	DatabasePath         string `toml:"database_path"`
	WatchCredentials     *bool  `toml:"watch_credentials"`
}

// LoadFileConfig reads and parses a TOML config file from the given path.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// DefaultConfigPath returns the default configuration file path.
// Returns ~/.receiptd/config.toml if user home directory is accessible.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".receiptd", "config.toml")
	}
	return ""
}

// ApplyFileConfig applies configuration from a file to the Config struct.
// It respects flags that have been explicitly set (changed map).
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("listen", fc.ListenAddr, &cfg.ListenAddr)
	s.setString("keystore", fc.KeystorePath, &cfg.KeystorePath)
	s.setString("keystore-passphrase", fc.KeystorePassphrase, &cfg.KeystorePassphrase)
	s.setString("truststore", fc.TruststorePath, &cfg.TruststorePath)
	s.setString("truststore-passphrase", fc.TruststorePassphrase, &cfg.TruststorePassphrase)
	s.setString("min-tls-version", fc.MinTLSVersion, &cfg.MinTLSVersion)
	s.setString("state-dir", fc.StateDir, &cfg.StateDir)
	s.setString("database", fc.DatabasePath, &cfg.DatabasePath)

	if err := s.setDuration("read-timeout", fc.ReadTimeout, &cfg.ReadTimeout); err != nil {
		return err
	}
	if err := s.setDuration("accept-timeout", fc.AcceptTimeout, &cfg.AcceptTimeout); err != nil {
		return err
	}
	if err := s.setDuration("shutdown-grace", fc.ShutdownGrace, &cfg.ShutdownGrace); err != nil {
		return err
	}

	s.setBool("watch-credentials", fc.WatchCredentials, &cfg.WatchCredentials)

	return nil
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
