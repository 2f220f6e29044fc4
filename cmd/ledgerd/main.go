package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"cryptocomm/internal/domain"
	"cryptocomm/internal/ledger"
	"cryptocomm/internal/logging"
	"cryptocomm/internal/node"
)

var (
	listen   string
	dataDir  string
	network  uint64
	logLevel string
	logEnc   string
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "ledgerd",
		Short:        "Serve the identity registry and message ledger over HTTP",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&listen, "listen", ":8545", "listen address")
	cmd.Flags().StringVar(&dataDir, "data", "./ledgerdata", "data directory")
	cmd.Flags().Uint64Var(&network, "network", 31337, "network id")
	cmd.Flags().StringVar(&logLevel, "log-level", "info", "log level")
	cmd.Flags().StringVar(&logEnc, "log-encoding", logging.EncodingJSONHex, "log encoding: console, json or json-hex")
	return cmd
}

func run(ctx context.Context) error {
	log, err := logging.New(logLevel, logEnc)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	l, err := ledger.Open(dataDir, ledger.Options{
		Network: domain.NetworkID(network),
		Logger:  log.Named("ledger"),
	})
	if err != nil {
		log.Error("open ledger", zap.Error(err))
		return err
	}
	defer l.Close()

	srv := &http.Server{
		Addr:              listen,
		Handler:           node.New(l, log.Named("node")).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		log.Info("ledgerd listening",
			zap.String("addr", listen),
			zap.String("data", dataDir),
			zap.Uint64("network", network))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			log.Error("serve", zap.Error(err))
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
