package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/wilfriedroset/consul-awx/internal/ui"
)

var (
	cfgFile       string
	listFlag      bool
	hostFlag      string
	datacenter    string
	taggedAddress string
	jsonIndent    int
)

var rootCmd = &cobra.Command{
	Use:   "consul-awx",
	Short: "Ansible dynamic inventory backed by the Consul catalog",
	Long: `consul-awx queries the Consul catalog HTTP API and prints a dynamic
inventory for Ansible/AWX: one group per service, host variables under
_meta.hostvars.

Invoke with --list for the full inventory or --host <name> for a single
host's variables, the two modes Ansible uses for dynamic inventories.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runInventory,
}

// Execute runs the root command. Command errors are printed styled to
// stderr by the commands themselves; cobra-level errors (bad flags)
// are printed here.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		if !errReported {
			fmt.Fprint(os.Stderr, ui.FormatError("Invalid invocation", err.Error(), "run 'consul-awx --help' for the supported modes"))
		}
		return err
	}
	return nil
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "path", "", "path to configuration file (default: ./consul_awx.ini)")

	rootCmd.Flags().BoolVar(&listFlag, "list", false, "print the full inventory as JSON")
	rootCmd.Flags().StringVar(&hostFlag, "host", "", "print a single host's variables as JSON")
	rootCmd.Flags().StringVar(&datacenter, "datacenter", "", "restrict catalog queries to a datacenter")
	rootCmd.Flags().StringVar(&taggedAddress, "tagged-address", "", "tagged address used as ansible_host (wan, wan_ipv4, lan, lan_ipv4)")
	rootCmd.Flags().IntVar(&jsonIndent, "indent", 4, "JSON indentation width, 0 for compact output")
	rootCmd.MarkFlagsMutuallyExclusive("list", "host")
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("consul_awx")
		viper.SetConfigType("ini")
		viper.AddConfigPath(".")
	}

	// A missing file is fine: the environment and built-in defaults
	// cover every setting. Anything else (unreadable, bad ini) is
	// worth a line on stderr.
	if err := viper.ReadInConfig(); err != nil {
		_, notFound := err.(viper.ConfigFileNotFoundError)
		if !notFound && !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "Error reading config: %v\n", err)
		}
	}
}
