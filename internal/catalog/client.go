package catalog

import (
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/wilfriedroset/consul-awx/internal/config"
)

const requestTimeout = 30 * time.Second

// Client queries the Consul catalog HTTP API using the resolved
// Settings. It performs single requests with no retries; any failure
// aborts the invocation.
type Client struct {
	settings *config.Settings
	base     string
	http     *http.Client
}

// NewClient builds a catalog client from settings. The CA certificate
// is loaded here so a bad path fails before any request is made.
func NewClient(s *config.Settings) (*Client, error) {
	client := &http.Client{Timeout: requestTimeout}

	if s.Scheme == "https" {
		tlsCfg := &tls.Config{}
		if !s.VerifyTLS {
			tlsCfg.InsecureSkipVerify = true //nolint:gosec // user-configured
		}
		if s.CACert != "" {
			pem, err := os.ReadFile(s.CACert)
			if err != nil {
				return nil, &config.Error{Setting: "cert", Err: err}
			}
			pool := x509.NewCertPool()
			if !pool.AppendCertsFromPEM(pem) {
				return nil, &config.Error{Setting: "cert", Err: fmt.Errorf("no certificates found in %s", s.CACert)}
			}
			tlsCfg.RootCAs = pool
		}
		client.Transport = &http.Transport{TLSClientConfig: tlsCfg}
	}

	return &Client{
		settings: s,
		base:     s.Address(),
		http:     client,
	}, nil
}

// Services lists service names known to the catalog, mapped to their
// registered tags.
func (c *Client) Services() (map[string][]string, error) {
	var services map[string][]string
	if err := c.get("/v1/catalog/services", nil, &services); err != nil {
		return nil, err
	}
	return services, nil
}

// ServiceNodes lists the nodes providing a service, in catalog
// response order.
func (c *Client) ServiceNodes(name string) ([]Entry, error) {
	var raw []serviceEntry
	if err := c.get("/v1/catalog/service/"+url.PathEscape(name), nil, &raw); err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(raw))
	for _, se := range raw {
		entries = append(entries, se.entry())
	}
	return entries, nil
}

// FetchServices lists all services then fetches each service's nodes,
// returning a complete mapping from service name to entries.
func (c *Client) FetchServices() (map[string][]Entry, error) {
	services, err := c.Services()
	if err != nil {
		return nil, err
	}
	out := make(map[string][]Entry, len(services))
	for name := range services {
		entries, err := c.ServiceNodes(name)
		if err != nil {
			return nil, err
		}
		out[name] = entries
	}
	return out, nil
}

// Nodes lists catalog nodes, filtered by the configured node-meta
// key/value pairs when present.
func (c *Client) Nodes() ([]Node, error) {
	query := url.Values{}
	for k, v := range c.settings.NodeMeta {
		query.Add("node-meta", k+":"+v)
	}
	var nodes []Node
	if err := c.get("/v1/catalog/nodes", query, &nodes); err != nil {
		return nil, err
	}
	return nodes, nil
}

// NodeServices returns a single node and the services registered on
// it, or nil if the catalog does not know the node.
func (c *Client) NodeServices(name string) (*NodeDetail, error) {
	var detail *NodeDetail
	if err := c.get("/v1/catalog/node/"+url.PathEscape(name), nil, &detail); err != nil {
		return nil, err
	}
	// Consul answers an unknown node with a literal null body.
	return detail, nil
}

// Ping performs one cheap catalog request to confirm the agent is
// reachable with the current settings.
func (c *Client) Ping() error {
	var datacenters []string
	return c.get("/v1/catalog/datacenters", nil, &datacenters)
}

func (c *Client) get(path string, query url.Values, out any) error {
	if query == nil {
		query = url.Values{}
	}
	if c.settings.Datacenter != "" {
		query.Set("dc", c.settings.Datacenter)
	}
	u := c.base + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequest(http.MethodGet, u, nil)
	if err != nil {
		return &UnavailableError{URL: u, Err: err}
	}
	if c.settings.Token != "" {
		req.Header.Set("X-Consul-Token", c.settings.Token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &UnavailableError{URL: u, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return &UnavailableError{URL: u, Status: resp.StatusCode}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &DecodeError{URL: u, Err: err}
	}
	return nil
}
