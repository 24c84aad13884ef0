package generate

import (
	"fmt"
	"os"

	"github.com/go-extras/cobraflags"
	"github.com/spf13/cobra"

	"github.com/giamma80/gymbro-platform-sub001/config"
	"github.com/giamma80/gymbro-platform-sub001/provision/generator"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a grants script for a service schema",
	Long: `Generate the SQL grants script that exposes a service's custom schema
to the Supabase API roles (anon, authenticated, service_role).

The script is written as the next numbered file in the per-service directory:

  <output-dir>/<service>/NNN_grant_<schema>.sql

Paste the generated SQL into the project's SQL editor, or apply it with
"schemactl apply". Afterwards, add the schema to the exposed schemas list in
the project's API settings.

Examples:
  schemactl generate --service calorie-balance
  schemactl generate --service meal-tracking --output-dir sql
  schemactl generate --service new-service --schema new_service`,
	RunE: generateCommand,
}

const (
	serviceFlag      = "service"
	schemaFlag       = "schema"
	outputDirFlag    = "output-dir"
	configFlag       = "config"
	templateFileFlag = "template-file"
)

var generateFlags = map[string]cobraflags.Flag{
	serviceFlag: &cobraflags.StringFlag{
		Name:  serviceFlag,
		Value: "",
		Usage: "Service to generate the grants script for (required)",
	},
	schemaFlag: &cobraflags.StringFlag{
		Name:  schemaFlag,
		Value: "",
		Usage: "Schema name override; required for services not in the registry",
	},
	outputDirFlag: &cobraflags.StringFlag{
		Name:  outputDirFlag,
		Value: "",
		Usage: "Base directory for generated scripts (default from config, else ./sql)",
	},
	configFlag: &cobraflags.StringFlag{
		Name:  configFlag,
		Value: "",
		Usage: "Path to schemactl.yaml",
	},
	templateFileFlag: &cobraflags.StringFlag{
		Name:  templateFileFlag,
		Value: "",
		Usage: "Custom grants template file (defaults to the embedded template)",
	},
}

func NewGenerateCommand() *cobra.Command {
	cobraflags.RegisterMap(generateCmd, generateFlags)
	return generateCmd
}

func generateCommand(_ *cobra.Command, _ []string) error {
	service := generateFlags[serviceFlag].GetString()
	if service == "" {
		return fmt.Errorf("service is required (use --service flag)")
	}

	cfg, err := config.Load(generateFlags[configFlag].GetString())
	if err != nil {
		return err
	}

	reg, err := cfg.Registry()
	if err != nil {
		return err
	}

	svc, err := reg.Resolve(service, generateFlags[schemaFlag].GetString())
	if err != nil {
		return err
	}

	outputDir := generateFlags[outputDirFlag].GetString()
	if outputDir == "" {
		outputDir = cfg.OutputDir
	}

	var template string
	if templateFile := generateFlags[templateFileFlag].GetString(); templateFile != "" {
		raw, err := os.ReadFile(templateFile)
		if err != nil {
			return fmt.Errorf("error reading template file: %w", err)
		}
		template = string(raw)
	}

	script, err := generator.Generate(generator.GenerateOptions{
		Service:   svc,
		OutputDir: outputDir,
		Template:  template,
	})
	if err != nil {
		return fmt.Errorf("error generating grants script: %w", err)
	}

	fmt.Printf("Generated grants script for %s:\n", svc.Title())
	fmt.Printf("  File:   %s\n", script.Path)
	fmt.Printf("  Schema: %s\n", svc.Schema)
	fmt.Printf("  Number: %d\n", script.Number)
	fmt.Println()
	fmt.Println("✅ Grants script created successfully!")
	fmt.Println("Run it in the project's SQL editor, then expose the schema in the API settings.")

	return nil
}
