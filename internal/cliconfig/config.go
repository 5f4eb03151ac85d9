// Package cliconfig loads receiptd configuration from defaults, a TOML file,
// RECEIPTD_* environment variables and command-line flags, in increasing
// order of precedence.
package cliconfig

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// DefaultListenAddr is the default ingest listen address.
const DefaultListenAddr = ":8443"

// Config holds CLI configuration for receiptd.
type Config struct {
	ListenAddr string

	KeystorePath         string
	KeystorePassphrase   string
	TruststorePath       string
	TruststorePassphrase string
	MinTLSVersion        string

	ReadTimeout   time.Duration
	AcceptTimeout time.Duration
	ShutdownGrace time.Duration

	StateDir     string
	DatabasePath string

	WatchCredentials bool
}

// DefaultConfig returns a Config with default values.
// Passphrases default from the environment so they never have to appear on a
// command line.
func DefaultConfig() Config {
	return Config{
		ListenAddr:           DefaultListenAddr,
		MinTLSVersion:        "1.2",
		ReadTimeout:          5 * time.Second,
		AcceptTimeout:        1 * time.Second,
		ShutdownGrace:        5 * time.Second,
		StateDir:             "", // Derived from home during Validate
		WatchCredentials:     true,
		KeystorePassphrase:   os.Getenv("RECEIPTD_KEYSTORE_PASSPHRASE"),
		TruststorePassphrase: os.Getenv("RECEIPTD_TRUSTSTORE_PASSPHRASE"),
	}
}

// DefaultStateDir returns the default state directory.
func DefaultStateDir() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".receiptd")
	}
	return ".receiptd"
}

// Validate checks the configuration for errors and sets derived defaults.
func (c *Config) Validate() error {
	if c.KeystorePath == "" {
		return fmt.Errorf("keystore is required")
	}
	if c.TruststorePath == "" {
		return fmt.Errorf("truststore is required")
	}
	if c.ListenAddr == "" {
		c.ListenAddr = DefaultListenAddr
	}
	if c.StateDir == "" {
		c.StateDir = DefaultStateDir()
	}
	if c.DatabasePath == "" {
		c.DatabasePath = filepath.Join(c.StateDir, "receipts.db")
	}

	if c.ReadTimeout <= 0 {
		return fmt.Errorf("read timeout must be positive")
	}
	if c.AcceptTimeout <= 0 {
		return fmt.Errorf("accept timeout must be positive")
	}
	if c.ShutdownGrace <= 0 {
		return fmt.Errorf("shutdown grace must be positive")
	}

	switch c.MinTLSVersion {
	case "", "1.2", "1.3":
	default:
		return fmt.Errorf("min TLS version must be 1.2 or 1.3")
	}

	return nil
}

// Masked returns a copy of the config safe for logging.
func (c Config) Masked() Config {
	if c.KeystorePassphrase != "" {
		c.KeystorePassphrase = "*****"
	}
	if c.TruststorePassphrase != "" {
		c.TruststorePassphrase = "*****"
	}
	return c
}

// configSetter helps apply configuration values while respecting flag precedence.
// It only applies values if the corresponding flag hasn't been explicitly set.
type configSetter struct {
	changed map[string]bool
}

// newConfigSetter creates a new setter with the given changed flags map.
func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

// setString sets a string value if not empty and flag not changed.
func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

// setDuration parses and sets a duration from string if valid and flag not changed.
func (s *configSetter) setDuration(flag, value string, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = d
	return nil
}

// setBool sets a bool value from a pointer if not nil and flag not changed.
func (s *configSetter) setBool(flag string, value *bool, dst *bool) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setBoolFromString parses a string to bool and sets the destination.
// Accepts "true", "1" as true, anything else as false.
// Used for environment variables that come as strings.
func (s *configSetter) setBoolFromString(flag, value string, dst *bool) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value == "true" || value == "1"
}
