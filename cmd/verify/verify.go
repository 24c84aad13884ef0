package verify

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-extras/cobraflags"
	"github.com/spf13/cobra"

	"github.com/giamma80/gymbro-platform-sub001/config"
	"github.com/giamma80/gymbro-platform-sub001/dbschema"
	"github.com/giamma80/gymbro-platform-sub001/provision/verifier"
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Verify the grants state of a service schema",
	Long: `Verify that a service's schema exists and that the Supabase API roles
hold the privileges the grants template assigns. Reports drift without
changing anything.

Examples:
  schemactl verify --service calorie-balance --db-url postgres://...
  schemactl verify --service ai-coach --db-url postgres://... --ignore-roles anon`,
	RunE: verifyCommand,
}

const (
	serviceFlag     = "service"
	dbURLFlag       = "db-url"
	ignoreRolesFlag = "ignore-roles"
	configFlag      = "config"
)

var verifyFlags = map[string]cobraflags.Flag{
	serviceFlag: &cobraflags.StringFlag{
		Name:  serviceFlag,
		Value: "",
		Usage: "Service whose schema should be verified (required)",
	},
	dbURLFlag: &cobraflags.StringFlag{
		Name:  dbURLFlag,
		Value: "",
		Usage: "PostgreSQL connection URL of the service's database (required)",
	},
	ignoreRolesFlag: &cobraflags.StringFlag{
		Name:  ignoreRolesFlag,
		Value: "",
		Usage: "Comma-separated roles to exclude from verification, in addition to the defaults",
	},
	configFlag: &cobraflags.StringFlag{
		Name:  configFlag,
		Value: "",
		Usage: "Path to schemactl.yaml",
	},
}

func NewVerifyCommand() *cobra.Command {
	cobraflags.RegisterMap(verifyCmd, verifyFlags)
	return verifyCmd
}

func verifyCommand(_ *cobra.Command, _ []string) error {
	service := verifyFlags[serviceFlag].GetString()
	if service == "" {
		return fmt.Errorf("service is required (use --service flag)")
	}
	dbURL := verifyFlags[dbURLFlag].GetString()
	if dbURL == "" {
		return fmt.Errorf("database URL is required (use --db-url flag)")
	}

	cfg, err := config.Load(verifyFlags[configFlag].GetString())
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

	opts := config.DefaultVerifyOptions()
	if extra := verifyFlags[ignoreRolesFlag].GetString(); extra != "" {
		var roles []string
		for _, role := range strings.Split(extra, ",") {
			if role = strings.TrimSpace(role); role != "" {
				roles = append(roles, role)
			}
		}
		opts = config.WithAdditionalIgnoredRoles(roles...)
	}

	conn, err := dbschema.ConnectToDatabase(dbURL)
	if err != nil {
		return fmt.Errorf("error connecting to database: %w", err)
	}
	defer conn.Close()
	slog.Debug("Connected to database", "version", conn.Info().Version)

	snapshot, err := conn.Reader(svc.Schema).ReadGrants()
	if err != nil {
		return fmt.Errorf("error reading grants state: %w", err)
	}

	report := verifier.Verify(snapshot, opts)
	fmt.Println(report.Summary())

	if !report.Clean() {
		return fmt.Errorf("grants drift detected for schema %s", svc.Schema)
	}

	return nil
}
