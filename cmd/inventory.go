package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/wilfriedroset/consul-awx/internal/catalog"
	"github.com/wilfriedroset/consul-awx/internal/config"
	"github.com/wilfriedroset/consul-awx/internal/inventory"
	"github.com/wilfriedroset/consul-awx/internal/ui"
)

// UsageError reports an invocation that is neither --list nor --host.
type UsageError struct {
	Reason string
}

func (e *UsageError) Error() string {
	return fmt.Sprintf("usage: %s", e.Reason)
}

// intent is the parsed invocation mode. Dynamic inventories have
// exactly two: list everything, or report one host's variables.
type intent struct {
	list bool
	host string
}

func parseIntent(list bool, host string) (intent, error) {
	switch {
	case list && host != "":
		return intent{}, &UsageError{Reason: "--list and --host are mutually exclusive"}
	case list:
		return intent{list: true}, nil
	case host != "":
		return intent{host: host}, nil
	}
	return intent{}, &UsageError{Reason: "one of --list or --host is required"}
}

// errReported tracks whether a styled message already reached stderr,
// so Execute does not print the same error twice.
var errReported bool

func runInventory(cmd *cobra.Command, args []string) error {
	in, err := parseIntent(listFlag, hostFlag)
	if err != nil {
		errReported = true
		fmt.Fprint(os.Stderr, ui.FormatError("Invalid invocation", err.Error(), "run 'consul-awx --help' for the supported modes"))
		return err
	}

	settings, err := config.Load(viper.GetViper(), config.Overrides{
		Datacenter:    datacenter,
		TaggedAddress: taggedAddress,
	})
	if err != nil {
		return reportError("Failed to load configuration", err)
	}

	client, err := catalog.NewClient(settings)
	if err != nil {
		return reportError("Failed to build catalog client", err)
	}

	if in.list {
		return listInventory(client, settings)
	}
	return singleHost(client, settings, in.host)
}

func listInventory(client *catalog.Client, settings *config.Settings) error {
	data, err := client.FetchServices()
	if err != nil {
		return reportError("Failed to fetch catalog services", err)
	}

	doc := inventory.Build(data, inventory.Options{TagGroups: settings.NodeGroups})

	if settings.NodeGroups || settings.TaggedAddress != "" || len(settings.NodeMeta) > 0 {
		nodes, err := client.Nodes()
		if err != nil {
			return reportError("Failed to fetch catalog nodes", err)
		}
		inventory.AddNodes(doc, nodes, inventory.NodeOptions{
			TaggedAddress: settings.TaggedAddress,
			Groups:        settings.NodeGroups,
		})
	}

	return printJSON(doc)
}

func singleHost(client *catalog.Client, settings *config.Settings, host string) error {
	detail, err := client.NodeServices(host)
	if err != nil {
		return reportError("Failed to fetch catalog node", err)
	}
	return printJSON(inventory.BuildHostRecord(detail, settings.TaggedAddress))
}

// printJSON marshals fully before writing, so stdout never sees a
// partial document.
func printJSON(v any) error {
	var (
		out []byte
		err error
	)
	if jsonIndent > 0 {
		out, err = json.MarshalIndent(v, "", strings.Repeat(" ", jsonIndent))
	} else {
		out, err = json.Marshal(v)
	}
	if err != nil {
		return reportError("Failed to encode inventory", err)
	}
	fmt.Println(string(out))
	return nil
}

func reportError(title string, err error) error {
	errReported = true
	fmt.Fprint(os.Stderr, ui.FormatError(title, err.Error(), hintFor(err)))
	return err
}

func hintFor(err error) string {
	var (
		uerr *catalog.UnavailableError
		cerr *config.Error
	)
	switch {
	case errors.As(err, &uerr):
		return "is the Consul agent reachable? check CONSUL_URL or consul_awx.ini"
	case errors.As(err, &cerr):
		return "run 'consul-awx init' to create a configuration file"
	}
	return ""
}
