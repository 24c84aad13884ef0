package keys

import (
	"fmt"
	"time"

	"github.com/go-extras/cobraflags"
	"github.com/spf13/cobra"

	"github.com/giamma80/gymbro-platform-sub001/config"
	"github.com/giamma80/gymbro-platform-sub001/core/apikeys"
)

var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Mint PostgREST API keys for a service project",
	Long: `Mint the anon and service_role API keys for a service's Supabase
project: long-lived HS256 JWTs signed with the project's JWT secret.

The secret is found under the project's API settings. Keys minted here match
the ones the dashboard shows as long as the secret is unchanged.

Examples:
  schemactl keys --service calorie-balance --jwt-secret $JWT_SECRET
  schemactl keys --service ai-coach --jwt-secret $JWT_SECRET --ttl 8760h`,
	RunE: keysCommand,
}

const (
	serviceFlag    = "service"
	jwtSecretFlag  = "jwt-secret"
	projectRefFlag = "project-ref"
	ttlFlag        = "ttl"
	configFlag     = "config"
)

var keysFlags = map[string]cobraflags.Flag{
	serviceFlag: &cobraflags.StringFlag{
		Name:  serviceFlag,
		Value: "",
		Usage: "Service the keys are minted for (required)",
	},
	jwtSecretFlag: &cobraflags.StringFlag{
		Name:  jwtSecretFlag,
		Value: "",
		Usage: "JWT secret of the service's project (required)",
	},
	projectRefFlag: &cobraflags.StringFlag{
		Name:  projectRefFlag,
		Value: "",
		Usage: "Supabase project reference embedded in the key claims",
	},
	ttlFlag: &cobraflags.StringFlag{
		Name:  ttlFlag,
		Value: "",
		Usage: "Key lifetime as a Go duration (default 1 year)",
	},
	configFlag: &cobraflags.StringFlag{
		Name:  configFlag,
		Value: "",
		Usage: "Path to schemactl.yaml",
	},
}

func NewKeysCommand() *cobra.Command {
	cobraflags.RegisterMap(keysCmd, keysFlags)
	return keysCmd
}

func keysCommand(_ *cobra.Command, _ []string) error {
	service := keysFlags[serviceFlag].GetString()
	if service == "" {
		return fmt.Errorf("service is required (use --service flag)")
	}
	secret := keysFlags[jwtSecretFlag].GetString()
	if secret == "" {
		return fmt.Errorf("jwt secret is required (use --jwt-secret flag)")
	}

	cfg, err := config.Load(keysFlags[configFlag].GetString())
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

	var ttl time.Duration
	if raw := keysFlags[ttlFlag].GetString(); raw != "" {
		ttl, err = time.ParseDuration(raw)
		if err != nil {
			return fmt.Errorf("invalid ttl: %w", err)
		}
	}

	minted, err := apikeys.Generate(apikeys.Options{
		Secret:     secret,
		ProjectRef: keysFlags[projectRefFlag].GetString(),
		TTL:        ttl,
	})
	if err != nil {
		return fmt.Errorf("error minting keys: %w", err)
	}

	fmt.Printf("API keys for %s:\n", svc.Title())
	fmt.Printf("  anon:         %s\n", minted.AnonKey)
	fmt.Printf("  service_role: %s\n", minted.ServiceRoleKey)
	fmt.Println()
	fmt.Println("Treat the service_role key as a secret: it bypasses row level security.")

	return nil
}
