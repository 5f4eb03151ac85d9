package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/ekasa-labs/receiptd/internal/adapters/sqlite"
	"github.com/ekasa-labs/receiptd/internal/cliconfig"
	"github.com/ekasa-labs/receiptd/internal/credentials"
	"github.com/ekasa-labs/receiptd/internal/server"
	"github.com/ekasa-labs/receiptd/internal/state"
)

const helpDescription = `
Ingest retail receipts pushed by point-of-sale clients over mutual TLS.

Highlights:
  - One connection per receipt over a minimal hand-rolled wire protocol.
  - Client certificates are the only credential; no certificate, no ingest.
  - Receipt numbers stay strictly monotonic across restarts.
  - Accepted batches land in an embedded SQLite database.
  - Keystore and truststore rotate live; no restart for certificate rollover.

Credential containers are password-protected PKCS#12 archives; pass the
passphrases via RECEIPTD_KEYSTORE_PASSPHRASE and
RECEIPTD_TRUSTSTORE_PASSPHRASE rather than flags.
`

var exampleUsage = strings.TrimSpace(`
  receiptd --keystore /etc/receiptd/server.p12 --truststore /etc/receiptd/clients.p12
  receiptd --config /etc/receiptd/config.toml --listen :8443
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func main() {
	cfg := cliconfig.DefaultConfig()
	var cfgPath string

	log := cliconfig.Logger()

	root := &cobra.Command{
		Use:     "receiptd",
		Short:   "Mutual-TLS ingestion server for retail receipt batches",
		Long:    strings.TrimSpace(helpDescription),
		Example: exampleUsage,
		Version: fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Load config file first (default $HOME/.receiptd/config.toml),
			// then env, then flag overrides
			cfgFile := cfgPath
			if cfgFile == "" {
				cfgFile = cliconfig.DefaultConfigPath()
			}

			// Build set of changed flags
			changed := map[string]bool{}
			cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

			if cfgFile != "" && cliconfig.FileExists(cfgFile) {
				fc, err := cliconfig.LoadFileConfig(cfgFile)
				if err != nil {
					return fmt.Errorf("load config: %w", err)
				}
				if err := cliconfig.ApplyFileConfig(&cfg, fc, changed); err != nil {
					return err
				}
			}

			if err := cliconfig.ApplyEnvConfig(&cfg, changed); err != nil {
				return err
			}

			if err := cfg.Validate(); err != nil {
				return err
			}

			log.Info().Interface("config", cfg.Masked()).Msg("configuration")

			minVersion, err := credentials.ParseTLSVersion(cfg.MinTLSVersion)
			if err != nil {
				return err
			}

			// Credential failures are the one error class that halts startup
			provider, err := credentials.NewProvider(
				cfg.KeystorePath, cfg.KeystorePassphrase,
				cfg.TruststorePath, cfg.TruststorePassphrase,
				minVersion, log,
			)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			store, err := state.NewStore(ctx, state.NewFileRepository(cfg.StateDir))
			if err != nil {
				return err
			}
			log.Info().Uint64("receipt_counter", store.Counter()).Msg("state loaded")

			sink, err := sqlite.NewSink(cfg.DatabasePath)
			if err != nil {
				return fmt.Errorf("open sink: %w", err)
			}
			defer sink.Close()

			if cfg.WatchCredentials {
				go provider.Watch(ctx)
			}

			srv := server.New(server.Config{
				ListenAddr:    cfg.ListenAddr,
				ReadTimeout:   cfg.ReadTimeout,
				AcceptTimeout: cfg.AcceptTimeout,
				ShutdownGrace: cfg.ShutdownGrace,
			}, provider.ServerConfig(), store, sink, log)

			if err := srv.Start(ctx); err != nil {
				return fmt.Errorf("start server: %w", err)
			}

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			<-sigCh
			log.Info().Msg("received signal, stopping...")

			if err := srv.Stop(); err != nil {
				return fmt.Errorf("stop server: %w", err)
			}
			return nil
		},
	}

	// Flags
	root.Flags().StringVar(&cfgPath, "config", "", "path to config file (default: $HOME/.receiptd/config.toml)")
	root.Flags().StringVar(&cfg.ListenAddr, "listen", cfg.ListenAddr, "listen address for the ingest socket")
	root.Flags().StringVar(&cfg.KeystorePath, "keystore", cfg.KeystorePath, "PKCS#12 container with the server key and certificate chain")
	root.Flags().StringVar(&cfg.TruststorePath, "truststore", cfg.TruststorePath, "PKCS#12 container with trusted client CA certificates")
	root.Flags().StringVar(&cfg.MinTLSVersion, "min-tls-version", cfg.MinTLSVersion, "minimum negotiated TLS version (1.2 or 1.3)")

	root.Flags().DurationVar(&cfg.ReadTimeout, "read-timeout", cfg.ReadTimeout, "per-connection handshake and read deadline")
	root.Flags().DurationVar(&cfg.AcceptTimeout, "accept-timeout", cfg.AcceptTimeout, "accept loop wakeup interval")
	root.Flags().DurationVar(&cfg.ShutdownGrace, "shutdown-grace", cfg.ShutdownGrace, "how long to wait for in-flight connections on shutdown")

	root.Flags().StringVar(&cfg.StateDir, "state-dir", cfg.StateDir, "directory for the persisted receipt counter (defaults to $HOME/.receiptd)")
	root.Flags().StringVar(&cfg.DatabasePath, "database", cfg.DatabasePath, "path to the receipts SQLite database (defaults to <state-dir>/receipts.db)")
	root.Flags().BoolVar(&cfg.WatchCredentials, "watch-credentials", cfg.WatchCredentials, "reload TLS material when the containers change on disk")

	if err := root.Execute(); err != nil {
		log.Error().Err(err).Msg("receiptd")
		os.Exit(1)
	}
}
