package wizard

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
)

// Run executes the interactive wizard and returns the user's answers.
func Run(detection DetectionResult) (*Answers, error) {
	answers := &Answers{
		Host:      "127.0.0.1",
		Port:      "8500",
		Scheme:    "http",
		VerifyTLS: true,
	}

	// Pre-fill from a detected agent URL
	if detection.EnvURL != "" {
		if u, err := url.Parse(detection.EnvURL); err == nil && u.Hostname() != "" {
			answers.Host = u.Hostname()
			if p := u.Port(); p != "" {
				answers.Port = p
			}
			if u.Scheme == "http" || u.Scheme == "https" {
				answers.Scheme = u.Scheme
			}
		}
	}

	var hints []string
	if detection.ConsulBinary {
		hints = append(hints, "consul binary found on PATH")
	}
	if detection.EnvURL != "" {
		hints = append(hints, fmt.Sprintf("agent URL from environment: %s", detection.EnvURL))
	}

	desc := "Connection parameters for the Consul HTTP API."
	if len(hints) > 0 {
		desc += "\n\nAuto-detected:\n  " + strings.Join(hints, "\n  ")
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Consul host").
				Description(desc).
				Value(&answers.Host),
			huh.NewInput().
				Title("Consul HTTP port").
				Validate(validatePort).
				Value(&answers.Port),
			huh.NewSelect[string]().
				Title("Scheme").
				Options(
					huh.NewOption("http", "http"),
					huh.NewOption("https", "https"),
				).
				Value(&answers.Scheme),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("ACL token (optional)").
				EchoMode(huh.EchoModePassword).
				Value(&answers.Token),
			huh.NewConfirm().
				Title("Verify TLS certificates?").
				Value(&answers.VerifyTLS),
			huh.NewInput().
				Title("Datacenter (optional)").
				Placeholder("dc1").
				Value(&answers.Datacenter),
			huh.NewConfirm().
				Title("Add datacenter and node-meta groups to the inventory?").
				Value(&answers.NodeGroups),
		),
	)

	if err := form.Run(); err != nil {
		return nil, err
	}

	return answers, nil
}

func validatePort(s string) error {
	p, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || p < 1 || p > 65535 {
		return fmt.Errorf("must be a port number between 1 and 65535")
	}
	return nil
}
