package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ahnlich/ahnlich-go/configs"
	"github.com/ahnlich/ahnlich-go/internal/config"
	"github.com/ahnlich/ahnlich-go/internal/output"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and scaffold ahnlichd configuration",
		Long: `Inspect and scaffold the YAML file passed to 'ahnlichd run --config'.

Configuration precedence (lowest to highest):
  1. Hardcoded defaults
  2. YAML file (--config)
  3. AHNLICH_*-prefixed environment variables
  4. CLI flags`,
		Example: `  # Write an example configuration file
  ahnlichd config init ahnlichd.yaml

  # Show the effective configuration for a given file
  ahnlichd config show ahnlichd.yaml`,
	}

	cmd.AddCommand(newConfigInitCmd())
	cmd.AddCommand(newConfigShowCmd())
	return cmd
}

func newConfigInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write an example configuration file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "ahnlichd.yaml"
			if len(args) == 1 {
				path = args[0]
			}
			return runConfigInit(cmd, path, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")
	return cmd
}

func runConfigInit(cmd *cobra.Command, path string, force bool) error {
	out := output.New(cmd.OutOrStdout())

	if !force {
		if _, err := os.Stat(path); err == nil {
			out.Warning(fmt.Sprintf("%s already exists", path))
			out.Status("", "use --force to overwrite")
			return nil
		}
	}

	if err := os.WriteFile(path, []byte(configs.ExampleConfig), 0o644); err != nil {
		return fmt.Errorf("config init: write %s: %w", path, err)
	}

	out.Success(fmt.Sprintf("wrote example configuration to %s", path))
	return nil
}

func newConfigShowCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "show [path]",
		Short: "Show the effective configuration after layering defaults, file, and environment",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			return runConfigShow(cmd, path, jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func runConfigShow(cmd *cobra.Command, path string, jsonOutput bool) error {
	cfg, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("config show: %w", err)
	}

	if jsonOutput {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(cfg)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("config show: %w", err)
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}
