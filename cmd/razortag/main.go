package main

import (
	"context"
	"os"
	"runtime/debug"

	"github.com/fatih/color"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/walteh/razortag/cmd/razortag/discover"
	"github.com/walteh/razortag/cmd/razortag/match"
	logging "github.com/walteh/razortag/pkg/debug"
	"github.com/walteh/razortag/pkg/project"
	"gitlab.com/tozd/go/errors"
)

func main() {
	if err := run(); err != nil {
		println(err.Error())
		os.Exit(1)
	}
}

func run() error {
	flags := &project.Flags{}
	var logLevel string
	var noColor bool

	rootCmd := &cobra.Command{
		Use:           "razortag",
		Short:         "Discover tag helpers in Go packages and bind markup tags against them",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&flags.Dir, "dir", "C", "", "project directory (default: working directory)")
	rootCmd.PersistentFlags().StringVar(&flags.Config, "config", "", "config file (default: razortag.{hcl,yaml,yml,toml} in --dir)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "trace, debug, info, warn or error")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		level, err := logging.ParseLevel(logLevel)
		if err != nil {
			return errors.Errorf("parsing --log-level: %w", err)
		}
		if noColor {
			color.NoColor = true
		}
		logger := logging.NewLogger(cmd.ErrOrStderr(), level, !color.NoColor)
		cmd.SetContext(logger.WithContext(cmd.Context()))
		return nil
	}

	info, ok := debug.ReadBuildInfo()
	if !ok {
		rootCmd.Version = "unknown"
	} else {
		rootCmd.Version = info.Main.Version
	}

	cmdVersion := &cobra.Command{
		Use: "raw-version",
		Run: func(cmdz *cobra.Command, args []string) {
			cmdz.Println(rootCmd.Version)
		},
		Hidden: true,
	}

	rootCmd.AddCommand(cmdVersion)

	fs := afero.NewOsFs()
	rootCmd.AddCommand(discover.NewDiscoverCommand(flags, fs))
	rootCmd.AddCommand(match.NewMatchCommand(flags, fs))

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		return errors.Errorf("failed to execute command: %w", err)
	}

	return nil
}
