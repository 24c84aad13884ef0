package services

import (
	"fmt"
	"text/tabwriter"

	"github.com/go-extras/cobraflags"
	"github.com/spf13/cobra"

	"github.com/giamma80/gymbro-platform-sub001/config"
)

var servicesCmd = &cobra.Command{
	Use:   "services",
	Short: "List the registered platform services",
	Long: `List the platform services with their schema and database assignments.

The built-in registry covers the six platform microservices; entries from
schemactl.yaml extend or override it.`,
	RunE: servicesCommand,
}

const configFlag = "config"

var servicesFlags = map[string]cobraflags.Flag{
	configFlag: &cobraflags.StringFlag{
		Name:  configFlag,
		Value: "",
		Usage: "Path to schemactl.yaml",
	},
}

func NewServicesCommand() *cobra.Command {
	cobraflags.RegisterMap(servicesCmd, servicesFlags)
	return servicesCmd
}

func servicesCommand(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(servicesFlags[configFlag].GetString())
	if err != nil {
		return err
	}

	reg, err := cfg.Registry()
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SERVICE\tSCHEMA\tDATABASE\tDESCRIPTION")
	for _, svc := range reg.Services() {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", svc.Name, svc.Schema, svc.Database, svc.Description)
	}
	return w.Flush()
}
