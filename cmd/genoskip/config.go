package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Keys the analyze command reads, shown by `config` so users do not have
// to guess.
var configKeys = map[string]string{
	"species":        "species for transcript lookups (human, rat)",
	"cache.dir":      "directory for the persistent payload cache",
	"cache.disabled": "skip the persistent payload cache",
	"verbose":        "enable debug logging",
}

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage genoskip configuration",
		Long:  "Show, get, or set configuration values stored in ~/.genoskip.yaml.",
		Example: `  genoskip config                          # show current settings
  genoskip config set cache.dir /data/genoskip-cache
  genoskip config get species`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigShow()
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigSet(args[0], args[1])
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "get <key>",
		Short: "Get a configuration value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigGet(args[0])
		},
	})

	return cmd
}

func runConfigShow() error {
	settings := viper.AllSettings()
	if len(settings) == 0 {
		fmt.Println("# Nothing configured yet. Known keys:")
		keys := make([]string, 0, len(configKeys))
		for key := range configKeys {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			fmt.Printf("#   %-16s %s\n", key, configKeys[key])
		}
		return nil
	}

	out, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	fmt.Print(string(out))
	return nil
}

func runConfigSet(key, value string) error {
	if b, err := strconv.ParseBool(value); err == nil {
		viper.Set(key, b)
	} else {
		viper.Set(key, value)
	}

	cfgFile := viper.ConfigFileUsed()
	if cfgFile == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("cannot determine home directory: %w", err)
		}
		cfgFile = filepath.Join(home, ".genoskip.yaml")
	}

	if err := viper.WriteConfigAs(cfgFile); err != nil {
		return fmt.Errorf("writing %s: %w", cfgFile, err)
	}

	fmt.Printf("%s = %v (written to %s)\n", key, viper.Get(key), cfgFile)
	return nil
}

func runConfigGet(key string) error {
	val := viper.Get(key)
	if val == nil {
		if help, known := configKeys[key]; known {
			return fmt.Errorf("%q is not set (%s)", key, help)
		}
		return fmt.Errorf("key %q is not set", key)
	}
	fmt.Println(val)
	return nil
}
