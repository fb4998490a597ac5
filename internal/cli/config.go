package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bnema/streamview/internal/config"
)

var (
	schemaWrite bool

	configCmd = &cobra.Command{
		Use:   "config",
		Short: "Inspect configuration",
	}

	configShowCmd = &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Long: `Print the fully resolved configuration: defaults, config file and
STREAMVIEW_* environment overrides merged.`,
		RunE: runConfigShow,
	}

	configSchemaCmd = &cobra.Command{
		Use:   "schema",
		Short: "Print the configuration JSON schema",
		RunE:  runConfigSchema,
	}
)

func init() {
	configSchemaCmd.Flags().BoolVar(&schemaWrite, "write", false, "write the schema next to the config file instead of printing it")
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSchemaCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(_ *cobra.Command, _ []string) error {
	theme := app.Theme

	source := app.Manager.ConfigFileUsed()
	if source == "" {
		source = "built-in defaults"
	}
	fmt.Fprintf(os.Stderr, "%s %s\n", theme.Key.Render("source:"), theme.Value.Render(source))

	data, err := json.MarshalIndent(app.Config, "", "  ")
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

func runConfigSchema(_ *cobra.Command, _ []string) error {
	if schemaWrite {
		path, err := config.WriteSchemaFile()
		if err != nil {
			return fmt.Errorf("write schema: %w", err)
		}
		fmt.Println(app.Theme.SuccessStyle.Render("schema written to " + path))
		return nil
	}

	data, err := config.GenerateSchema()
	if err != nil {
		return fmt.Errorf("generate schema: %w", err)
	}
	fmt.Println(string(data))
	return nil
}
