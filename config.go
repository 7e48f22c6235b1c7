package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	configFileName = "librarian"
	configFileType = "yaml"
	envPrefix      = "LIBRARIAN"

	cfgKeyLogLevel       = "log_level"
	cfgKeyPrompt         = "prompt"
	cfgKeySeed           = "seed"
	cfgKeyPassphraseHash = "passphrase_hash"
	cfgKeyPassphrase     = "passphrase"
	cfgKeyJSON           = "json"

	defaultLogLevel = "warn"
	defaultPrompt   = "> "
)

// loadConfig reads librarian.yaml from the working directory, or path when
// given, layered under LIBRARIAN_* environment variables and the bound flags.
// A missing librarian.yaml in the working directory is not an error; a
// missing explicit path is.
func loadConfig(path string, flags *pflag.FlagSet) (*viper.Viper, error) {
	v := viper.New()
	v.SetDefault(cfgKeyLogLevel, defaultLogLevel)
	v.SetDefault(cfgKeyPrompt, defaultPrompt)
	v.SetDefault(cfgKeyJSON, false)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if flags != nil {
		if f := flags.Lookup("log-level"); f != nil {
			if err := v.BindPFlag(cfgKeyLogLevel, f); err != nil {
				return nil, err
			}
		}
		if f := flags.Lookup("json"); f != nil {
			if err := v.BindPFlag(cfgKeyJSON, f); err != nil {
				return nil, err
			}
		}
		if f := flags.Lookup("seed"); f != nil {
			if err := v.BindPFlag(cfgKeySeed, f); err != nil {
				return nil, err
			}
		}
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(configFileName)
		v.SetConfigType(configFileType)
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path == "" && errors.As(err, &notFound) {
			return v, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	return v, nil
}

// newLogger builds the text logger used by the shell. level is any name
// slog.Level understands (debug, info, warn, error).
func newLogger(w io.Writer, level string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("log level %q: %w", level, err)
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})), nil
}
