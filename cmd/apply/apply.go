package apply

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/go-extras/cobraflags"
	"github.com/spf13/cobra"

	"github.com/giamma80/gymbro-platform-sub001/config"
	"github.com/giamma80/gymbro-platform-sub001/dbschema"
	"github.com/giamma80/gymbro-platform-sub001/provision/applier"
)

var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Apply generated grants scripts against a database",
	Long: `Apply the generated grants scripts of a service against its database.

Each pending script runs in its own transaction and is recorded in the
grants_history table; already-recorded scripts are skipped, so the command is
safe to rerun. Intended for CI; the documented default workflow is pasting
the generated SQL into the project's SQL editor.

Examples:
  schemactl apply --service calorie-balance --db-url postgres://...
  schemactl apply --service meal-tracking --db-url postgres://... --dry-run`,
	RunE: applyCommand,
}

const (
	serviceFlag = "service"
	dbURLFlag   = "db-url"
	dirFlag     = "dir"
	dryRunFlag  = "dry-run"
	configFlag  = "config"
)

var applyFlags = map[string]cobraflags.Flag{
	serviceFlag: &cobraflags.StringFlag{
		Name:  serviceFlag,
		Value: "",
		Usage: "Service whose grants scripts should be applied (required)",
	},
	dbURLFlag: &cobraflags.StringFlag{
		Name:  dbURLFlag,
		Value: "",
		Usage: "PostgreSQL connection URL of the service's database (required)",
	},
	dirFlag: &cobraflags.StringFlag{
		Name:  dirFlag,
		Value: "",
		Usage: "Base directory holding generated scripts (default from config, else ./sql)",
	},
	dryRunFlag: &cobraflags.BoolFlag{
		Name:  dryRunFlag,
		Value: false,
		Usage: "Log the SQL that would run without executing it",
	},
	configFlag: &cobraflags.StringFlag{
		Name:  configFlag,
		Value: "",
		Usage: "Path to schemactl.yaml",
	},
}

func NewApplyCommand() *cobra.Command {
	cobraflags.RegisterMap(applyCmd, applyFlags)
	return applyCmd
}

func applyCommand(cmd *cobra.Command, _ []string) error {
	service := applyFlags[serviceFlag].GetString()
	if service == "" {
		return fmt.Errorf("service is required (use --service flag)")
	}
	dbURL := applyFlags[dbURLFlag].GetString()
	if dbURL == "" {
		return fmt.Errorf("database URL is required (use --db-url flag)")
	}

	cfg, err := config.Load(applyFlags[configFlag].GetString())
	if err != nil {
		return err
	}

	reg, err := cfg.Registry()
	if err != nil {
		return err
	}

	svc, err := reg.Lookup(service)
	if err != nil {
		return err
	}

	baseDir := applyFlags[dirFlag].GetString()
	if baseDir == "" {
		baseDir = cfg.OutputDir
	}
	serviceDir := filepath.Join(baseDir, svc.Name)
	if _, err := os.Stat(serviceDir); err != nil {
		return fmt.Errorf("no generated scripts found for %s (looked in %s): %w", svc.Name, serviceDir, err)
	}

	conn, err := dbschema.ConnectToDatabase(dbURL)
	if err != nil {
		return fmt.Errorf("error connecting to database: %w", err)
	}
	defer conn.Close()
	slog.Debug("Connected to database", "version", conn.Info().Version)

	conn.Writer().SetDryRun(applyFlags[dryRunFlag].GetBool())

	a, err := applier.NewFSApplier(conn, svc.Name, os.DirFS(serviceDir))
	if err != nil {
		return err
	}

	if err := a.ApplyAll(cmd.Context()); err != nil {
		return fmt.Errorf("error applying grants scripts: %w", err)
	}

	if conn.Writer().IsDryRun() {
		fmt.Println("Dry run complete, no SQL was executed.")
		return nil
	}

	status, err := a.GetStatus(cmd.Context())
	if err != nil {
		return err
	}

	fmt.Printf("Applied grants scripts for %s:\n", svc.Title())
	fmt.Printf("  Applied: %v\n", status.AppliedScripts)
	fmt.Printf("  Total:   %d\n", status.TotalScripts)
	fmt.Println()
	fmt.Println("✅ Grants applied successfully!")
	fmt.Println("Remember to expose the schema in the project's API settings if you haven't yet.")

	return nil
}
