package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wilfriedroset/consul-awx/internal/ui"
	"github.com/wilfriedroset/consul-awx/internal/wizard"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a consul_awx.ini config file interactively",
	Long: `Scan the environment for a reachable Consul agent and generate a
configuration file through an interactive wizard.`,
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	configPath := "consul_awx.ini"
	if cfgFile != "" {
		configPath = cfgFile
	}

	if _, err := os.Stat(configPath); err == nil {
		fmt.Printf("%s already exists.\n", configPath)
		fmt.Print("Overwrite? [y/N] ")
		var answer string
		_, _ = fmt.Scanln(&answer)
		if answer != "y" && answer != "Y" {
			fmt.Println("Aborted.")
			return nil
		}
	}

	fmt.Println(ui.Bold("Scanning environment..."))
	detection := wizard.Detect(nil)

	answers, err := wizard.Run(detection)
	if err != nil {
		return fmt.Errorf("wizard: %w", err)
	}

	content, err := wizard.GenerateConfig(*answers)
	if err != nil {
		return fmt.Errorf("generating config: %w", err)
	}

	// 0600: the file may carry an ACL token.
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	ui.Success(fmt.Sprintf("Created %s", configPath))
	fmt.Println()
	fmt.Printf("Next step: %s\n", ui.Bold("consul-awx --list"))
	fmt.Printf("           %s\n", ui.Hint("or wire it into AWX as a custom inventory script"))

	return nil
}
