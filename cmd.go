package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/pyama86/device-query/client"
	"github.com/pyama86/device-query/config"
	"github.com/pyama86/device-query/domain/infra"
	"github.com/pyama86/device-query/domain/model"
	"github.com/pyama86/device-query/handler"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	readHeaderTimeout = 10 * time.Second
	readTimeout       = 30 * time.Second
	writeTimeout      = 30 * time.Second
	shutdownTimeout   = 10 * time.Second
	schemaTimeout     = 90 * time.Second
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "device-query",
		Short:         "Device query API server and submission client",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
				slog.Warn("failed to load .env", slog.Any("err", err))
			}
		},
	}
	root.AddCommand(newServeCmd(), newSendCmd())
	return root
}

func newServeCmd() *cobra.Command {
	v := viper.New()
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the query API",
		RunE: func(cmd *cobra.Command, args []string) error {
			slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))
			cfg, err := config.Load(v)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServer(ctx, cfg)
		},
	}
	cmd.Flags().Int("port", config.DefaultPort, "listen port (env PORT)")
	cmd.Flags().String("static-dir", "", "directory served for unmatched GET requests (env STATIC_DIR)")
	_ = v.BindPFlag("port", cmd.Flags().Lookup("port"))
	_ = v.BindPFlag("static_dir", cmd.Flags().Lookup("static-dir"))
	return cmd
}

func runServer(ctx context.Context, cfg *config.Config) error {
	ds, err := infra.NewDatastore()
	if err != nil {
		return fmt.Errorf("NewDatastore failed: %w", err)
	}
	defer ds.Close()

	// テーブルができるまではリクエストを受けない
	schemaCtx, cancel := context.WithTimeout(ctx, schemaTimeout)
	err = ds.EnsureSchema(schemaCtx)
	cancel()
	if err != nil {
		return fmt.Errorf("EnsureSchema failed: %w", err)
	}

	h := handler.NewHandler(cfg, ds, infra.NewSlackNotifier())
	defer h.Close()

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           h.Router(),
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Server listening", slog.String("bind", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("ListenAndServe failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("Shutdown failed: %w", err)
	}
	return nil
}

// consoleControl は CLI 版の送信ボタン
type consoleControl struct {
	w        io.Writer
	disabled bool
}

func (c *consoleControl) Disable(label string) {
	c.disabled = true
	fmt.Fprintln(c.w, label)
}

func (c *consoleControl) Enable(string) {
	c.disabled = false
}

func defaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	p := filepath.Join(dir, "device-query", "config.yaml")
	if _, err := os.Stat(p); err != nil {
		return ""
	}
	return p
}

func newSendCmd() *cobra.Command {
	var (
		sub        model.Submission
		apiBase    string
		configPath string
		statePath  string
		timeout    time.Duration
	)
	cmd := &cobra.Command{
		Use:   "send",
		Short: "Submit a device query",
		RunE: func(cmd *cobra.Command, args []string) error {
			if configPath == "" {
				configPath = defaultConfigPath()
			}
			defaults, err := client.LoadPageDefaults(configPath)
			if err != nil {
				return err
			}
			if statePath == "" {
				if statePath, err = client.DefaultStatePath(); err != nil {
					return err
				}
			}
			settings := client.LoadSettings(apiBase, client.NewFileState(statePath), defaults)
			if timeout <= 0 {
				timeout = client.DefaultTimeout
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()
			res := client.Submit(ctx, client.NewResolver(timeout), settings, sub, &consoleControl{w: cmd.ErrOrStderr()})
			fmt.Fprintln(cmd.OutOrStdout(), res.Message())
			return res.Err
		},
	}
	cmd.Flags().StringVar(&sub.Name, "name", "", "your name")
	cmd.Flags().StringVar(&sub.Email, "email", "", "email address to reach you")
	cmd.Flags().StringVar(&sub.Device, "device", "", "device model")
	cmd.Flags().StringVar(&sub.Message, "message", "", "what is going on")
	cmd.Flags().StringVar(&apiBase, "api", "", "API base URL, remembered for later runs")
	cmd.Flags().StringVar(&configPath, "config", "", "page defaults file (default $XDG_CONFIG_HOME/device-query/config.yaml)")
	cmd.Flags().StringVar(&statePath, "state", "", "state file (default $XDG_CONFIG_HOME/device-query/state.yaml)")
	cmd.Flags().DurationVar(&timeout, "timeout", client.DefaultTimeout, "request timeout")
	return cmd
}
