package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/wilfriedroset/consul-awx/internal/catalog"
	"github.com/wilfriedroset/consul-awx/internal/config"
	"github.com/wilfriedroset/consul-awx/internal/ui"
)

var pingAgent bool

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the resolved Consul connection settings",
	Long: `Resolve settings from the environment, the configuration file and the
built-in defaults, then report what the inventory would use. With --ping,
also perform one catalog request to confirm the agent is reachable.`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().BoolVar(&pingAgent, "ping", false, "query the catalog to confirm the agent is reachable")
}

func runValidate(cmd *cobra.Command, args []string) error {
	fmt.Println(ui.Bold("Validating settings..."))

	settings, err := config.Load(viper.GetViper(), config.Overrides{
		Datacenter:    datacenter,
		TaggedAddress: taggedAddress,
	})
	if err != nil {
		return reportError("Failed to load configuration", err)
	}

	ui.ValidationOK("agent", settings.Address())
	if settings.Datacenter != "" {
		ui.ValidationOK("datacenter", settings.Datacenter)
	}
	if settings.Token != "" {
		ui.ValidationOK("token", "set")
	}
	if settings.Scheme == "https" && !settings.VerifyTLS {
		ui.Warn("TLS certificate verification is disabled")
	}

	problems := settings.Validate()
	for _, p := range problems {
		ui.ValidationErr(p.Field, p.Message, p.Suggestion)
	}
	if len(problems) > 0 {
		errReported = true
		return fmt.Errorf("%d validation errors", len(problems))
	}

	if pingAgent {
		client, err := catalog.NewClient(settings)
		if err != nil {
			return reportError("Failed to build catalog client", err)
		}
		if err := client.Ping(); err != nil {
			errReported = true
			ui.ValidationErr("agent", err.Error(), "check that Consul is running and the token has catalog read access")
			return err
		}
		ui.ValidationOK("agent", "catalog reachable")
	}

	fmt.Println()
	ui.Success("Settings valid")
	return nil
}
