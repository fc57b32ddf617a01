package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/WordPress-Satkhira-Community/easy-svg-upload/internal/config"
	securelog "github.com/WordPress-Satkhira-Community/easy-svg-upload/internal/log"
)

// errRejected makes the process exit with status 1 without printing an
// error, once the report already told the user what was rejected.
var errRejected = errors.New("one or more files were rejected")

// NewRootCmd creates the root command for easysvg.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "easysvg",
		Short: "Sanitize untrusted SVG files",
		Long: `easysvg sanitizes untrusted SVG files before they reach a media library.

Every file is parsed, rewritten through an allow-list of elements,
attributes and URI schemes, serialized again and verified. Files that
cannot be made safe are rejected with a reason; nothing is ever passed
through unchanged.

Settings are read from .easysvg in the current directory, the home
directory or the XDG config directory. Run 'easysvg init' to create one.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().StringP("config", "c", "",
		"Configuration file path (default: .easysvg in current or home directory)")

	cmd.AddCommand(NewSanitizeCmd())
	cmd.AddCommand(NewCheckCmd())
	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewPolicyCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		if !errors.Is(err, errRejected) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// loadConfig builds a Config from defaults and the configuration file.
// If the user named a config file explicitly, a missing file is an error.
// Otherwise a missing file means defaults.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()
	cfg.Verbose = getVerboseFlag(cmd)

	var err error
	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	path := config.FindConfigFile(cfg.ConfigFilePath)
	switch {
	case path != "":
		f, err := config.LoadConfigFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
		if err := cfg.Apply(f); err != nil {
			return nil, fmt.Errorf("config file %s: %w", path, err)
		}
	case cfg.ConfigFilePath != "":
		return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, cfg.ConfigFilePath)
	}
	return cfg, nil
}

// setupLogger creates the secure structured logger on stderr and makes it
// the default.
func setupLogger(cmd *cobra.Command, verbose bool) *slog.Logger {
	logger := securelog.NewSecureLogger(cmd.ErrOrStderr(), verbose)
	slog.SetDefault(logger)
	return logger
}
