package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/WordPress-Satkhira-Community/easy-svg-upload/internal/config"
	"github.com/WordPress-Satkhira-Community/easy-svg-upload/internal/host"
	"github.com/WordPress-Satkhira-Community/easy-svg-upload/internal/server"
	"github.com/WordPress-Satkhira-Community/easy-svg-upload/internal/storage"
)

// NewServeCmd creates the serve command.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the SVG upload API",
		Long: `Serve starts an HTTP API that accepts SVG uploads.

Uploads go through the same pipeline a media library would use: the
feature switch, the role check, the size limit, staging, sanitization,
and finally commit or discard. Callers authenticate with bearer tokens
listed under 'principals' in the config file.

SVG support is off until 'enabled: true' is set in the config file or
--enable is given.

Examples:
  # Listen on the configured address
  easysvg serve

  # Listen on all interfaces, port 9000
  easysvg serve --addr :9000 --enable`,
		Args: cobra.NoArgs,
		RunE: runServeCmd,
	}

	cmd.Flags().StringP("addr", "a", config.DefaultListenAddr, "Listen address")
	cmd.Flags().Bool("enable", false, "Turn SVG support on regardless of the config file")
	cmd.Flags().String("storage-dir", "", "Directory for stored uploads (default: XDG data directory)")
	cmd.Flags().Bool("no-audit", false, "Do not record outcomes in the audit database")

	return cmd
}

// runServeCmd executes the serve command.
func runServeCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildServeConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cmd, cfg.Verbose)

	engine, err := newEngine(cfg, logger)
	if err != nil {
		return err
	}
	authz, err := host.NewRoleAuthorizer(cfg.UploadRole)
	if err != nil {
		return err
	}
	dir, err := cfg.File.Directory()
	if err != nil {
		return fmt.Errorf("config file principals: %w", err)
	}
	if dir.Len() == 0 {
		logger.Warn("no principals configured, every upload will be refused")
	}

	deps := server.Deps{
		Gate:       host.NewGate(cfg.Enabled),
		Authorizer: authz,
		Directory:  dir,
		Size:       cfg.SizePolicy(),
		Sink:       storage.NewLocalSink(cfg.StorageDir),
		Engine:     engine,
		Timeout:    cfg.SanitizeTimeout,
	}
	db, err := openAuditDB(cfg, logger)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
		deps.Auditor = db
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(cmd.OutOrStdout(), "Upload API listening on %s (svg enabled: %t)\n", cfg.ListenAddr, deps.Gate.Enabled())
	return server.New(deps, server.WithLogger(logger)).Run(ctx, cfg.ListenAddr)
}

// buildServeConfig creates a Config from the config file and serve flags.
func buildServeConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	flags := cmd.Flags()

	if flags.Changed("addr") {
		if cfg.ListenAddr, err = flags.GetString("addr"); err != nil {
			return nil, err
		}
	}
	enable, err := flags.GetBool("enable")
	if err != nil {
		return nil, err
	}
	if enable {
		cfg.Enabled = true
	}
	if flags.Changed("storage-dir") {
		if cfg.StorageDir, err = flags.GetString("storage-dir"); err != nil {
			return nil, err
		}
	}
	noAudit, err := flags.GetBool("no-audit")
	if err != nil {
		return nil, err
	}
	cfg.SaveToDB = !noAudit
	return cfg, nil
}
