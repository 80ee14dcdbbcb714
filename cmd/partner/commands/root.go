// Package commands implements the partner CLI.
package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/fivetwenty-io/partnercenter/internal/config"
	"github.com/fivetwenty-io/partnercenter/pkg/partner"
)

// app holds the state shared by every command of one invocation.
type app struct {
	viper   *viper.Viper
	cfgFile string
	cfg     *config.Config
	logger  zerolog.Logger
	stdin   io.Reader
	stdout  io.Writer
	stderr  io.Writer
}

func (a *app) partnerLogger() partner.Logger {
	return partner.NewZerologLogger(a.logger)
}

// NewRootCommand creates the partner command tree.
func NewRootCommand(version, commit, date string) *cobra.Command {
	a := &app{
		viper:  viper.New(),
		logger: zerolog.Nop(),
		stdin:  os.Stdin,
		stdout: os.Stdout,
		stderr: os.Stderr,
	}

	rootCmd := &cobra.Command{
		Use:   "partner",
		Short: "Partner Center API CLI",
		Long: `A command-line interface for interacting with the Partner Center REST API.

Resources are addressed by their API path, for example /v1/customers or
/v1/invoices/<id>. Settings are read from config.yml in the user config
directory and from PARTNER_* environment variables.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			a.stdout = cmd.OutOrStdout()
			a.stderr = cmd.ErrOrStderr()
			a.stdin = cmd.InOrStdin()

			cfg, err := config.Load(a.viper, a.cfgFile)
			if err != nil {
				return err
			}

			a.cfg = cfg

			level := zerolog.WarnLevel
			if cfg.Verbose {
				level = zerolog.DebugLevel
			}

			a.logger = zerolog.New(zerolog.ConsoleWriter{Out: a.stderr}).Level(level).With().Timestamp().Logger()

			if used := a.viper.ConfigFileUsed(); used != "" {
				a.logger.Debug().Str("file", used).Msg("Using config file")
			}

			return nil
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&a.cfgFile, "config", "c", "", "config file (default is <user config dir>/partnercenter/config.yml)")
	flags.StringP("endpoint", "e", "", "API endpoint URL")
	flags.StringP("token", "t", "", "access token")
	flags.StringP("output", "o", "", "output format (table, json, yaml)")
	flags.BoolP("verbose", "v", false, "verbose output")

	for _, name := range []string{"endpoint", "token", "output", "verbose"} {
		err := a.viper.BindPFlag(name, flags.Lookup(name))
		if err != nil {
			panic(fmt.Sprintf("binding flag %s: %v", name, err))
		}
	}

	rootCmd.AddCommand(newVersionCommand(a, version, commit, date))
	rootCmd.AddCommand(newLoginCommand(a))
	rootCmd.AddCommand(newLogoutCommand(a))
	rootCmd.AddCommand(newGetCommand(a))
	rootCmd.AddCommand(newListCommand(a))

	return rootCmd
}
