package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/wilfriedroset/consul-awx/internal/util"
)

// Built-in connection defaults, used when neither the environment nor
// the configuration file provides a value.
const (
	DefaultHost   = "127.0.0.1"
	DefaultPort   = 8500
	DefaultScheme = "http"
)

// TaggedAddresses lists the Consul tagged-address names that may be
// used as ansible_host.
var TaggedAddresses = []string{"wan", "wan_ipv4", "lan", "lan_ipv4"}

// Error reports a missing or invalid connection parameter.
type Error struct {
	Setting string
	Err     error
}

func (e *Error) Error() string {
	return fmt.Sprintf("configuration: %s: %v", e.Setting, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Problem reports a settings issue with a suggested fix, for the
// validate command.
type Problem struct {
	Field      string // dotted path, e.g. "consul.scheme"
	Message    string // what's wrong
	Suggestion string // how to fix it
}

// Settings holds the resolved connection parameters. It is built once
// at startup and passed around as a read-only value; nothing reads the
// environment after Load returns.
type Settings struct {
	Host          string
	Port          int
	Scheme        string
	VerifyTLS     bool
	Token         string
	Datacenter    string
	CACert        string
	TaggedAddress string
	NodeMeta      map[string]string
	NodeGroups    bool
}

// Address returns the base URL of the Consul agent.
func (s *Settings) Address() string {
	return fmt.Sprintf("%s://%s:%d", s.Scheme, s.Host, s.Port)
}

// Validate checks the resolved settings and returns one Problem per
// issue found.
func (s *Settings) Validate() []Problem {
	var problems []Problem
	if s.Scheme != "http" && s.Scheme != "https" {
		problems = append(problems, Problem{
			Field:      "consul.scheme",
			Message:    fmt.Sprintf("unsupported scheme %q", s.Scheme),
			Suggestion: "use http or https",
		})
	}
	if s.Port < 1 || s.Port > 65535 {
		problems = append(problems, Problem{
			Field:      "consul.port",
			Message:    fmt.Sprintf("port %d out of range", s.Port),
			Suggestion: "the Consul HTTP API listens on 8500 by default",
		})
	}
	if s.CACert != "" {
		if _, err := os.Stat(s.CACert); err != nil {
			problems = append(problems, Problem{
				Field:      "consul.cert",
				Message:    fmt.Sprintf("file not found: %s", s.CACert),
				Suggestion: "check the path to the CA certificate",
			})
		}
	}
	if s.TaggedAddress != "" && !ValidTaggedAddress(s.TaggedAddress) {
		problems = append(problems, Problem{
			Field:      "consul.tagged_address",
			Message:    fmt.Sprintf("unknown tagged address %q", s.TaggedAddress),
			Suggestion: "one of: wan, wan_ipv4, lan, lan_ipv4",
		})
	}
	return problems
}

// ValidTaggedAddress reports whether name is a tagged address Consul
// knows about.
func ValidTaggedAddress(name string) bool {
	for _, t := range TaggedAddresses {
		if t == name {
			return true
		}
	}
	return false
}

// Overrides carries command-line values, which take precedence over
// both the environment and the configuration file.
type Overrides struct {
	Datacenter    string
	TaggedAddress string
}

// Load resolves Settings from, in priority order, command-line
// overrides, the process environment, the [consul] section of the
// configuration file loaded into v, and built-in defaults.
func Load(v *viper.Viper, o Overrides) (*Settings, error) {
	s := &Settings{
		Host:      DefaultHost,
		Port:      DefaultPort,
		Scheme:    DefaultScheme,
		VerifyTLS: true,
	}

	if err := loadFile(v, s); err != nil {
		return nil, err
	}
	if err := loadEnv(s); err != nil {
		return nil, err
	}
	if o.Datacenter != "" {
		s.Datacenter = o.Datacenter
	}
	if o.TaggedAddress != "" {
		s.TaggedAddress = o.TaggedAddress
	}

	if s.Scheme != "http" && s.Scheme != "https" {
		return nil, &Error{Setting: "scheme", Err: fmt.Errorf("unsupported scheme %q", s.Scheme)}
	}
	if s.Port < 1 || s.Port > 65535 {
		return nil, &Error{Setting: "port", Err: fmt.Errorf("port %d out of range", s.Port)}
	}
	if s.TaggedAddress != "" && !ValidTaggedAddress(s.TaggedAddress) {
		return nil, &Error{Setting: "tagged_address", Err: fmt.Errorf("unknown tagged address %q", s.TaggedAddress)}
	}

	return s, nil
}

func loadFile(v *viper.Viper, s *Settings) error {
	if h := v.GetString("consul.host"); h != "" {
		s.Host = h
	}
	if p := v.GetString("consul.port"); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil {
			return &Error{Setting: "port", Err: fmt.Errorf("invalid port %q", p)}
		}
		s.Port = port
	}
	if sch := v.GetString("consul.scheme"); sch != "" {
		s.Scheme = sch
	}
	if ver := v.GetString("consul.verify"); ver != "" {
		b, err := util.ParseBool(ver)
		if err != nil {
			return &Error{Setting: "verify", Err: err}
		}
		s.VerifyTLS = b
	}
	if t := v.GetString("consul.token"); t != "" {
		s.Token = t
	}
	if dc := v.GetString("consul.dc"); dc != "" {
		s.Datacenter = dc
	}
	if c := v.GetString("consul.cert"); c != "" {
		s.CACert = c
	}
	if ta := v.GetString("consul.tagged_address"); ta != "" {
		s.TaggedAddress = ta
	}
	if ng := v.GetString("consul.node_groups"); ng != "" {
		b, err := util.ParseBool(ng)
		if err != nil {
			return &Error{Setting: "node_groups", Err: err}
		}
		s.NodeGroups = b
	}
	if meta := v.GetStringMapString("consul_node_meta"); len(meta) > 0 {
		s.NodeMeta = meta
	}
	return nil
}

func loadEnv(s *Settings) error {
	if raw := os.Getenv("CONSUL_URL"); raw != "" {
		u, err := url.Parse(raw)
		if err != nil {
			return &Error{Setting: "CONSUL_URL", Err: err}
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return &Error{Setting: "CONSUL_URL", Err: fmt.Errorf("unsupported scheme %q", u.Scheme)}
		}
		s.Scheme = u.Scheme
		s.Host = u.Hostname()
		if p := u.Port(); p != "" {
			port, err := strconv.Atoi(p)
			if err != nil {
				return &Error{Setting: "CONSUL_URL", Err: fmt.Errorf("invalid port %q", p)}
			}
			s.Port = port
		}
	}
	if ver := os.Getenv("CONSUL_SSL_VERIFY"); ver != "" {
		b, err := util.ParseBool(ver)
		if err != nil {
			return &Error{Setting: "CONSUL_SSL_VERIFY", Err: err}
		}
		s.VerifyTLS = b
	}
	if t := os.Getenv("CONSUL_TOKEN"); t != "" {
		s.Token = t
	}
	if dc := os.Getenv("CONSUL_DC"); dc != "" {
		s.Datacenter = dc
	}
	if c := os.Getenv("CONSUL_CERT"); c != "" {
		s.CACert = c
	}
	if ta := os.Getenv("CONSUL_TAGGED_ADDRESS"); ta != "" {
		s.TaggedAddress = ta
	}
	if raw := os.Getenv("CONSUL_NODE_META"); raw != "" {
		// YAML is a superset of JSON, so the documented JSON form
		// parses as well.
		meta := map[string]string{}
		if err := yaml.Unmarshal([]byte(raw), &meta); err != nil {
			return &Error{Setting: "CONSUL_NODE_META", Err: fmt.Errorf("must be an object of strings: %w", err)}
		}
		s.NodeMeta = meta
	}
	return nil
}
