package main

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mtodo/mtodo/internal/config"
	"github.com/mtodo/mtodo/internal/ui"
)

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Read and write settings in config.yaml",
	}

	getCmd := &cobra.Command{
		Use:   "get <key>",
		Short: "Print a setting",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			if !config.IsKnownKey(key) {
				return unknownKeyError(key)
			}
			if a.jsonOutput {
				return outputJSON(cmd.OutOrStdout(), map[string]string{key: config.GetString(key)})
			}
			fmt.Fprintln(cmd.OutOrStdout(), config.GetString(key))
			return nil
		},
	}

	setCmd := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Save a setting to config.yaml",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, raw := args[0], args[1]
			if !config.IsKnownKey(key) {
				return unknownKeyError(key)
			}
			value, err := parseConfigValue(key, raw)
			if err != nil {
				return err
			}
			if err := config.UpdateFile(map[string]interface{}{key: value}); err != nil {
				return err
			}
			a.printNormal(cmd, "Set %s = %v\n", key, value)
			return nil
		},
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "Print every setting with its effective value",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings := config.AllSettings()
			out := cmd.OutOrStdout()
			if a.jsonOutput {
				m := make(map[string]string, len(settings))
				for _, kv := range settings {
					m[kv[0]] = kv[1]
				}
				return outputJSON(out, m)
			}
			for _, kv := range settings {
				fmt.Fprintf(out, "%-18s %-12s %s\n", kv[0], kv[1], ui.RenderMuted("# "+config.KnownKeys[kv[0]]))
			}
			a.printNormal(cmd, "\nConfig file: %s\n", config.ConfigFileUsed())
			return nil
		},
	}

	cmd.AddCommand(getCmd, setCmd, listCmd)
	return cmd
}

// parseConfigValue converts raw to the type the key holds.
func parseConfigValue(key, raw string) (interface{}, error) {
	switch key {
	case config.KeyWindowWidth, config.KeyWindowHeight:
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("%s must be a non-negative integer, got %q", key, raw)
		}
		return n, nil
	case config.KeyStyleDark, config.KeyShowAll, config.KeyVerbose:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("%s must be true or false, got %q", key, raw)
		}
		return b, nil
	}
	return raw, nil
}

func unknownKeyError(key string) error {
	keys := make([]string, 0, len(config.KnownKeys))
	for k := range config.KnownKeys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return fmt.Errorf("unknown config key %q (known: %v)", key, keys)
}
