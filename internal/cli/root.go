// Package cli implements the tasklist command line.
package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"tasklist/internal/config"
)

// app carries state shared by every subcommand of one invocation.
type app struct {
	v          *viper.Viper
	configPath string
	cfg        *config.Config
	static     fs.FS
}

// NewRootCommand builds the command tree. static holds the browser page
// served by `serve`; it may be nil.
func NewRootCommand(version string, static fs.FS) *cobra.Command {
	a := &app{v: config.New(), static: static}

	rootCmd := &cobra.Command{
		Use:   "tasklist",
		Short: "A minimal task list with a REST backend",
		Long: `tasklist serves a small task API and web page, and manages tasks
from the terminal against a running server.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.v, a.configPath)
			if err != nil {
				return err
			}
			a.cfg = cfg
			return nil
		},
	}

	// Global flags
	rootCmd.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "path to a YAML config file")
	rootCmd.PersistentFlags().String("url", "", "task collection URL used by client commands")
	_ = a.v.BindPFlag("client.base_url", rootCmd.PersistentFlags().Lookup("url"))

	rootCmd.AddCommand(newServeCmd(a))
	rootCmd.AddCommand(newListCmd(a))
	rootCmd.AddCommand(newAddCmd(a))
	rootCmd.AddCommand(newDoneCmd(a, true))
	rootCmd.AddCommand(newDoneCmd(a, false))
	rootCmd.AddCommand(newRmCmd(a))
	rootCmd.AddCommand(newConfigCmd(a))

	return rootCmd
}

// Execute runs the root command
func Execute(version string, static fs.FS) error {
	rootCmd := NewRootCommand(version, static)
	if err := rootCmd.Execute(); err != nil {
		var reported *reportedError
		if !errors.As(err, &reported) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		return err
	}
	return nil
}

func newConfigCmd(a *app) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or create configuration",
	}

	configCmd.AddCommand(&cobra.Command{
		Use:   "init <path>",
		Short: "Write the default configuration to a YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(args[0]); err == nil {
				return fmt.Errorf("%s already exists", args[0])
			}
			if err := config.WriteDefault(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", args[0])
			return nil
		},
	})

	return configCmd
}
