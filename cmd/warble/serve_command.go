package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"warble/internal/daemon"
	"warble/internal/delivery"
	"warble/internal/fetch"
	"warble/internal/jobs"
	"warble/internal/logging"
	"warble/internal/notifications"
	"warble/internal/services/ytdlp"
	"warble/internal/session"
	"warble/internal/workspace"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the warble daemon",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDaemonProcess(ctx, cmd)
		},
	}
}

func runDaemonProcess(ctx *commandContext, cmd *cobra.Command) error {
	signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := ctx.ensureConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	pidPath := filepath.Join(cfg.Paths.LogDir, "warble.pid")
	if err := writePIDFile(pidPath); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}
	defer os.Remove(pidPath)

	ledger, err := jobs.Open(cfg)
	if err != nil {
		logger.Error("open jobs ledger", logging.Error(err))
		return err
	}
	defer ledger.Close()

	workspaces, err := workspace.NewManager(cfg.Paths.BaseDir, logger)
	if err != nil {
		return fmt.Errorf("init workspace manager: %w", err)
	}

	backend, err := ytdlp.New(cfg.ResolverBinary(), cfg.Resolver.SearchTimeout, cfg.Resolver.FetchTimeout)
	if err != nil {
		return fmt.Errorf("init resolver: %w", err)
	}

	sessions := session.NewStore(time.Duration(cfg.Sessions.IdleTimeoutSeconds)*time.Second, logger)
	notifier := notifications.NewService(cfg)
	orch := fetch.NewOrchestrator(cfg, backend, workspaces, sessions, ledger, notifier, logger)
	adapter := delivery.NewAdapter(cfg.Delivery.MaxAttachmentMiB, logger)

	d, err := daemon.New(cfg, ledger, sessions, workspaces, orch, adapter, logger)
	if err != nil {
		return fmt.Errorf("create daemon: %w", err)
	}

	if err := d.Start(signalCtx); err != nil {
		return err
	}
	defer d.Stop()

	<-signalCtx.Done()
	logger.Info("warble daemon shutting down")
	return nil
}

func writePIDFile(path string) error {
	if path == "" {
		return nil
	}
	value := strconv.Itoa(os.Getpid()) + "\n"
	return os.WriteFile(path, []byte(value), 0o644)
}
