package checkexposure

import (
	"errors"
	"fmt"

	"github.com/go-extras/cobraflags"
	"github.com/spf13/cobra"

	"github.com/giamma80/gymbro-platform-sub001/config"
	"github.com/giamma80/gymbro-platform-sub001/gateway"
)

var checkExposureCmd = &cobra.Command{
	Use:   "check-exposure",
	Short: "Check that a service schema is exposed through the API gateway",
	Long: `Probe the project's PostgREST endpoint and report whether the service's
schema is in the exposed schemas list.

Exposing a schema is a manual step in the project's API settings; the grants
script alone is not enough. A schema missing from the list makes PostgREST
answer every request with error code PGRST106.

Examples:
  schemactl check-exposure --service calorie-balance --api-url https://abc.supabase.co/rest/v1 --api-key $ANON_KEY`,
	RunE: checkExposureCommand,
}

const (
	serviceFlag = "service"
	apiURLFlag  = "api-url"
	apiKeyFlag  = "api-key"
	configFlag  = "config"
)

var checkExposureFlags = map[string]cobraflags.Flag{
	serviceFlag: &cobraflags.StringFlag{
		Name:  serviceFlag,
		Value: "",
		Usage: "Service whose schema exposure should be checked (required)",
	},
	apiURLFlag: &cobraflags.StringFlag{
		Name:  apiURLFlag,
		Value: "",
		Usage: "PostgREST base URL of the project (default from config)",
	},
	apiKeyFlag: &cobraflags.StringFlag{
		Name:  apiKeyFlag,
		Value: "",
		Usage: "API key sent with the probe (the project's anon key)",
	},
	configFlag: &cobraflags.StringFlag{
		Name:  configFlag,
		Value: "",
		Usage: "Path to schemactl.yaml",
	},
}

func NewCheckExposureCommand() *cobra.Command {
	cobraflags.RegisterMap(checkExposureCmd, checkExposureFlags)
	return checkExposureCmd
}

func checkExposureCommand(cmd *cobra.Command, _ []string) error {
	service := checkExposureFlags[serviceFlag].GetString()
	if service == "" {
		return fmt.Errorf("service is required (use --service flag)")
	}

	cfg, err := config.Load(checkExposureFlags[configFlag].GetString())
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

	apiURL := checkExposureFlags[apiURLFlag].GetString()
	if apiURL == "" {
		apiURL = cfg.APIURL
	}
	if apiURL == "" {
		return fmt.Errorf("API URL is required (use --api-url flag or set api_url in schemactl.yaml)")
	}

	checker := gateway.NewChecker(apiURL, checkExposureFlags[apiKeyFlag].GetString())

	err = checker.CheckExposure(cmd.Context(), svc.Schema)
	if errors.Is(err, gateway.ErrSchemaNotExposed) {
		fmt.Printf("❌ %v\n", err)
		return fmt.Errorf("schema %s is not exposed", svc.Schema)
	}
	if err != nil {
		return fmt.Errorf("exposure check failed: %w", err)
	}

	fmt.Printf("✅ Schema %s is exposed through %s\n", svc.Schema, apiURL)
	return nil
}
