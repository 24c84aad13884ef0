// schemactl provisions the per-service custom schemas of the platform's
// Supabase-hosted PostgreSQL databases: it generates the grants scripts that
// expose a schema to the API roles, optionally applies and verifies them,
// checks gateway exposure, and mints project API keys.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/giamma80/gymbro-platform-sub001/cmd/apply"
	"github.com/giamma80/gymbro-platform-sub001/cmd/checkexposure"
	"github.com/giamma80/gymbro-platform-sub001/cmd/generate"
	"github.com/giamma80/gymbro-platform-sub001/cmd/keys"
	"github.com/giamma80/gymbro-platform-sub001/cmd/services"
	"github.com/giamma80/gymbro-platform-sub001/cmd/verify"
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:     "schemactl",
		Short:   "Schema provisioning for the platform's Supabase databases",
		Version: version,
		Long: `schemactl manages the database segregation policy of the platform:
every microservice owns a dedicated Supabase-hosted PostgreSQL database with
a custom schema exposed through PostgREST.

Typical workflow for a new service:
  1. schemactl generate --service <name>     # write the grants script
  2. run the script in the project's SQL editor (or: schemactl apply)
  3. expose the schema in the project's API settings
  4. schemactl verify / schemactl check-exposure`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(generate.NewGenerateCommand())
	rootCmd.AddCommand(apply.NewApplyCommand())
	rootCmd.AddCommand(verify.NewVerifyCommand())
	rootCmd.AddCommand(services.NewServicesCommand())
	rootCmd.AddCommand(checkexposure.NewCheckExposureCommand())
	rootCmd.AddCommand(keys.NewKeysCommand())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
