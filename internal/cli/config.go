package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/brainmap/internal/model"
)

const configHierarchy = `Configuration hierarchy (highest to lowest priority):
  1. CLI flags
  2. Environment variables (BRAINMAP_*, e.g. BRAINMAP_API_BASE_URL)
  3. Config file (~/.brainmap/config.yaml)
  4. Defaults`

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage brainmap configuration",
		Long:  "Manage brainmap configuration files and settings.\n\n" + configHierarchy,
	}
	cmd.AddCommand(newConfigShowCmd(a), newConfigInitCmd())
	return cmd
}

func newConfigShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			if used := a.v.ConfigFileUsed(); used != "" {
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Configuration file: %s\n\n", used)
			} else {
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "No configuration file found (using defaults)\n\n")
			}

			data, err := yaml.Marshal(a.cfg)
			if err != nil {
				return errors.Wrap(err, "marshal config")
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}

func newConfigInitCmd() *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if path == "" {
				home, err := os.UserHomeDir()
				if err != nil {
					return errors.Wrap(err, "find home directory")
				}
				path = filepath.Join(home, ".brainmap", "config.yaml")
			}

			if _, err := os.Stat(path); err == nil {
				return errors.WithHint(
					errors.Newf("config file already exists: %s", path),
					"use 'brainmap config show' to view it, or delete it first to recreate")
			}
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return errors.Wrap(err, "create config directory")
			}

			data, err := yaml.Marshal(model.DefaultConfig())
			if err != nil {
				return errors.Wrap(err, "marshal config")
			}
			header := "# brainmap configuration\n#\n"
			for _, line := range strings.Split(configHierarchy, "\n") {
				header += "# " + line + "\n"
			}
			if err := os.WriteFile(path, append([]byte(header+"\n"), data...), 0o644); err != nil {
				return errors.Wrap(err, "write config")
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Created default configuration: %s\n", path)
			return err
		},
	}
	cmd.Flags().StringVar(&path, "path", "", "where to write the file (default: $HOME/.brainmap/config.yaml)")
	return cmd
}
