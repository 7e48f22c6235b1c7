package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const version = "0.1.0"

const (
	exitSuccess = 0
	exitFailure = 1
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fail(os.Stderr, err.Error())
		os.Exit(exitFailure)
	}
	os.Exit(exitSuccess)
}

// newRootCmd builds the librarian command. With no subcommand it starts the
// shell.
func newRootCmd() *cobra.Command {
	var (
		configFile string
		cfg        *viper.Viper
	)

	startShell := func(cmd *cobra.Command, args []string) error {
		return runShellCommand(cmd, cfg)
	}

	root := &cobra.Command{
		Use:   "librarian",
		Short: "Librarian is an in-memory library desk",
		Long: `Librarian keeps a library's catalog and roster in memory and records
borrows in a session journal. Commands are read line by line from stdin;
nothing is kept once the shell exits.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "version" {
				return nil
			}
			c, err := loadConfig(configFile, cmd.Flags())
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			cfg = c
			return nil
		},
		Args: cobra.NoArgs,
		RunE: startShell,
	}

	root.PersistentFlags().StringVar(&configFile, "config", "", "config file (default: ./librarian.yaml)")
	root.PersistentFlags().String("log-level", defaultLogLevel, "log level: debug, info, warn, error")
	root.PersistentFlags().Bool("json", false, "print listings as JSON")
	root.PersistentFlags().String("seed", "", "catalog YAML to load when the shell starts")

	root.AddCommand(&cobra.Command{
		Use:   "shell",
		Short: "Start the library desk shell (default)",
		Args:  cobra.NoArgs,
		RunE:  startShell,
	})
	root.AddCommand(newHashPassphraseCmd())
	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "librarian v%s\n", version)
		},
	})
	return root
}

func runShellCommand(cmd *cobra.Command, cfg *viper.Viper) error {
	in, out := cmd.InOrStdin(), cmd.OutOrStdout()

	logger, err := newLogger(cmd.ErrOrStderr(), cfg.GetString(cfgKeyLogLevel))
	if err != nil {
		return err
	}

	if hash := cfg.GetString(cfgKeyPassphraseHash); hash != "" {
		if err := unlockShell(hash, cfg.GetString(cfgKeyPassphrase), in, out); err != nil {
			return err
		}
	}

	sess, err := newSession(out, logger, cfg.GetBool(cfgKeyJSON))
	if err != nil {
		return err
	}
	defer sess.Close()

	if seed := cfg.GetString(cfgKeySeed); seed != "" {
		report, err := sess.loadCatalog(seed)
		if err != nil {
			return fmt.Errorf("load seed catalog: %w", err)
		}
		renderReport(out, report)
	}

	_, interactive := terminalFD(in)
	return runShell(sess, in, cfg.GetString(cfgKeyPrompt), interactive)
}
