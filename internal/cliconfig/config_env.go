package cliconfig

import "os"

// ApplyEnvConfig applies configuration from environment variables (RECEIPTD_*).
// It respects flags that have been explicitly set (changed map).
// Returns error if any environment variable has an invalid format.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("listen", os.Getenv("RECEIPTD_LISTEN_ADDR"), &cfg.ListenAddr)
	s.setString("keystore", os.Getenv("RECEIPTD_KEYSTORE"), &cfg.KeystorePath)
	s.setString("keystore-passphrase", os.Getenv("RECEIPTD_KEYSTORE_PASSPHRASE"), &cfg.KeystorePassphrase)
	s.setString("truststore", os.Getenv("RECEIPTD_TRUSTSTORE"), &cfg.TruststorePath)
	s.setString("truststore-passphrase", os.Getenv("RECEIPTD_TRUSTSTORE_PASSPHRASE"), &cfg.TruststorePassphrase)
	s.setString("min-tls-version", os.Getenv("RECEIPTD_MIN_TLS_VERSION"), &cfg.MinTLSVersion)
	s.setString("state-dir", os.Getenv("RECEIPTD_STATE_DIR"), &cfg.StateDir)
	s.setString("database", os.Getenv("RECEIPTD_DATABASE"), &cfg.DatabasePath)

	if err := s.setDuration("read-timeout", os.Getenv("RECEIPTD_READ_TIMEOUT"), &cfg.ReadTimeout); err != nil {
		return err
	}
	if err := s.setDuration("accept-timeout", os.Getenv("RECEIPTD_ACCEPT_TIMEOUT"), &cfg.AcceptTimeout); err != nil {
		return err
	}
	if err := s.setDuration("shutdown-grace", os.Getenv("RECEIPTD_SHUTDOWN_GRACE"), &cfg.ShutdownGrace); err != nil {
		return err
	}

	s.setBoolFromString("watch-credentials", os.Getenv("RECEIPTD_WATCH_CREDENTIALS"), &cfg.WatchCredentials)

	return nil
}
