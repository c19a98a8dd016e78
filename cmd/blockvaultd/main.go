// Command blockvaultd runs the BlockVault server: wallet auth, the
// encrypted vault API, sharing, and the legal document workflow.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"blockvault/internal/auth"
	"blockvault/internal/blob"
	"blockvault/internal/config"
	"blockvault/internal/ipfs"
	"blockvault/internal/server"
	"blockvault/internal/services/legal"
	"blockvault/internal/services/vault"
	"blockvault/internal/services/zkml"
	"blockvault/internal/store"
	"blockvault/internal/summarize"
	"blockvault/internal/zkproof"
)

func main() {
	var cfgFile, listen string

	cmd := &cobra.Command{
		Use:           "blockvaultd",
		Short:         "BlockVault server",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			if listen != "" {
				cfg.ListenAddr = listen
			}
			return run(cmd.Context(), cfg)
		},
	}
	cmd.Flags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	cmd.Flags().StringVarP(&listen, "listen", "l", "", "override the listen address")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config) error {
	log, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer log.Sync()

	if err := os.MkdirAll(cfg.DataDir, 0o700); err != nil {
		return err
	}

	db, err := store.Open(ctx, cfg.DatabasePath())
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	blobs, err := blob.NewDiskStore(cfg.StorageDir())
	if err != nil {
		return fmt.Errorf("open blob storage: %w", err)
	}

	pinner := ipfs.New(cfg.IPFS.APIURL, cfg.IPFS.Gateway, cfg.IPFS.Token)
	if pinner.Enabled() {
		log.Info("ipfs pinning enabled", zap.String("api", cfg.IPFS.APIURL))
	}

	notary, err := zkproof.NewNotary(cfg.ProverKeyDir())
	if err != nil {
		return fmt.Errorf("notary setup: %w", err)
	}

	signer := auth.NewTokenSigner([]byte(cfg.Auth.JWTSecret), cfg.Auth.TokenTTL)
	authSvc := auth.NewService(db, db, signer, cfg.Auth.Admins)
	vaultSvc := vault.NewService(db, db, db, blobs, pinner, log)
	legalSvc := legal.NewService(db, db, db, db, notary, log)
	zkmlSvc := zkml.NewService(vaultSvc, summarize.New())

	srv := server.New(server.Deps{
		Log:        log,
		Auth:       authSvc,
		Vault:      vaultSvc,
		Legal:      legalSvc,
		ZKML:       zkmlSvc,
		DB:         db,
		Prover:     notary,
		StorageDir: cfg.StorageDir(),
		CORSOrigin: cfg.CORSOrigin,
	})

	log.Info("starting server", zap.String("addr", cfg.ListenAddr))
	return srv.Run(ctx, cfg.ListenAddr)
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("bad log level %q: %w", level, err)
	}
	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(lvl)
	return zc.Build()
}
