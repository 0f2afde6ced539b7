// Package main is the entry point for the dictionary daemon, the single
// process that opens dictionary files.
package main

import (
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.trai.ch/zerr"

	"github.com/leonardcser/dict-mcp/internal/cache"
	"github.com/leonardcser/dict-mcp/internal/config"
	"github.com/leonardcser/dict-mcp/internal/daemon"
	"github.com/leonardcser/dict-mcp/internal/dictionary"
	"github.com/leonardcser/dict-mcp/internal/logger"
)

func main() {
	if err := logger.InitFromEnv(); err != nil {
		panic(err)
	}
	defer logger.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := newRootCmd(serve, os.Stdout)
	cmd.SetArgs(os.Args[1:])
	if err := cmd.ExecuteContext(ctx); err != nil {
		logger.Error(ctx, err)
		_, _ = fmt.Fprintln(os.Stderr, "Error: "+err.Error())
		stop()
		os.Exit(1)
	}
}

// newRootCmd builds the CLI. The root command runs serveFn with the
// resolved configuration; flags override the environment.
func newRootCmd(serveFn func(context.Context, config.Config) error, out io.Writer) *cobra.Command {
	var (
		socket  string
		home    string
		timeout time.Duration
	)

	resolve := func(cmd *cobra.Command) (config.Config, error) {
		cfg, err := config.Load()
		if err != nil {
			return config.Config{}, err
		}
		if cmd.Flags().Changed("socket") {
			cfg.SocketPath = socket
		}
		if cmd.Flags().Changed("home") {
			cfg.Root = home
		}
		if cmd.Flags().Changed("open-timeout") {
			if timeout <= 0 {
				return config.Config{}, zerr.With(zerr.New("invalid open timeout"), "flag", timeout.String())
			}
			cfg.OpenTimeout = timeout
		}
		return cfg, nil
	}

	root := &cobra.Command{
		Use:           "dict-daemon",
		Short:         "Serve translation dictionaries over a Unix socket",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := resolve(cmd)
			if err != nil {
				return err
			}
			return serveFn(cmd.Context(), cfg)
		},
	}
	root.PersistentFlags().StringVar(&socket, "socket", "", "Unix socket path (default $"+config.EnvSocket+")")
	root.PersistentFlags().StringVar(&home, "home", "", "Dictionaries directory (default $"+config.EnvHome+")")
	root.PersistentFlags().DurationVar(&timeout, "open-timeout", cache.DefaultOpenTimeout, "Wait for a dictionary file lock")
	root.SetOut(out)

	root.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Check whether a daemon answers on the socket",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := resolve(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Second)
			defer cancel()
			if err := daemon.NewClient(cfg.SocketPath).Ping(ctx); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "dict-daemon is running on %s\n", cfg.SocketPath)
			return nil
		},
	})

	return root
}

func serve(ctx context.Context, cfg config.Config) error {
	// Ensure socket dir exists and remove stale socket
	_ = os.MkdirAll(filepath.Dir(cfg.SocketPath), 0o755)
	_ = os.Remove(cfg.SocketPath)

	l, err := net.Listen("unix", cfg.SocketPath)
	if err != nil {
		return zerr.With(zerr.Wrap(err, "listening"), "socket", cfg.SocketPath)
	}
	defer l.Close()
	_ = os.Chmod(cfg.SocketPath, 0o600)

	reg := cache.NewRegistry(cache.RegistryOptions{Timeout: cfg.OpenTimeout})
	defer func() {
		if err := reg.Shutdown(); err != nil {
			logger.Error(context.Background(), err)
		}
	}()
	svc := dictionary.NewService(dictionary.Options{
		Layout:   dictionary.Layout{Root: cfg.Root},
		Registry: reg,
	})
	defer svc.Close()

	logger.Infof("Dictionary daemon serving %s on %s", cfg.Root, cfg.SocketPath)
	err = daemon.Serve(ctx, l, svc)
	logger.Infof("Dictionary daemon stopped")
	return err
}
