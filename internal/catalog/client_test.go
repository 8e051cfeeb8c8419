package catalog

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wilfriedroset/consul-awx/internal/config"
)

func settingsFor(t *testing.T, server *httptest.Server) *config.Settings {
	t.Helper()
	u, err := url.Parse(server.URL)
	require.NoError(t, err)
	port, err := strconv.Atoi(u.Port())
	require.NoError(t, err)
	return &config.Settings{
		Host:      u.Hostname(),
		Port:      port,
		Scheme:    u.Scheme,
		VerifyTLS: true,
	}
}

func newTestClient(t *testing.T, s *config.Settings) *Client {
	t.Helper()
	c, err := NewClient(s)
	require.NoError(t, err)
	return c
}

func TestFetchServices(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/catalog/services", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"web": ["prod"], "db": []}`)
	})
	mux.HandleFunc("/v1/catalog/service/web", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[
			{"Node": "n1", "Address": "10.0.0.1", "ServiceAddress": "", "ServicePort": 80, "ServiceTags": ["prod"]},
			{"Node": "n2", "Address": "10.0.0.2", "ServiceAddress": "192.168.0.2", "ServicePort": 8080, "ServiceTags": null}
		]`)
	})
	mux.HandleFunc("/v1/catalog/service/db", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"Node": "n1", "Address": "10.0.0.1", "ServicePort": 5432, "ServiceTags": ["master"]}]`)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	c := newTestClient(t, settingsFor(t, server))

	data, err := c.FetchServices()
	require.NoError(t, err)
	require.Len(t, data, 2)

	web := data["web"]
	require.Len(t, web, 2)
	assert.Equal(t, Entry{NodeName: "n1", Address: "10.0.0.1", Port: 80, Tags: []string{"prod"}}, web[0])
	// ServiceAddress wins over the node address, nil tags become empty.
	assert.Equal(t, Entry{NodeName: "n2", Address: "192.168.0.2", Port: 8080, Tags: []string{}}, web[1])

	db := data["db"]
	require.Len(t, db, 1)
	assert.Equal(t, "n1", db[0].NodeName)
	assert.Equal(t, 5432, db[0].Port)
}

func TestClientSendsTokenAndDatacenter(t *testing.T) {
	var gotToken, gotDC string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotToken = r.Header.Get("X-Consul-Token")
		gotDC = r.URL.Query().Get("dc")
		fmt.Fprint(w, `{}`)
	}))
	defer server.Close()

	s := settingsFor(t, server)
	s.Token = "s3cret"
	s.Datacenter = "paris"
	c := newTestClient(t, s)

	_, err := c.Services()
	require.NoError(t, err)
	assert.Equal(t, "s3cret", gotToken)
	assert.Equal(t, "paris", gotDC)
}

func TestClientErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "internal error", http.StatusInternalServerError)
	}))
	defer server.Close()

	c := newTestClient(t, settingsFor(t, server))

	_, err := c.Services()
	require.Error(t, err)

	var uerr *UnavailableError
	require.ErrorAs(t, err, &uerr)
	assert.Equal(t, http.StatusInternalServerError, uerr.Status)
}

func TestClientConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	settings := settingsFor(t, server)
	server.Close()

	c := newTestClient(t, settings)

	_, err := c.Services()
	require.Error(t, err)

	var uerr *UnavailableError
	require.ErrorAs(t, err, &uerr)
	assert.Error(t, uerr.Err)
	assert.Zero(t, uerr.Status)
}

func TestClientDecodeError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"web": not json`)
	}))
	defer server.Close()

	c := newTestClient(t, settingsFor(t, server))

	_, err := c.Services()
	require.Error(t, err)

	var derr *DecodeError
	assert.ErrorAs(t, err, &derr)

	var uerr *UnavailableError
	assert.False(t, errors.As(err, &uerr))
}

func TestNodesSendsMetaFilter(t *testing.T) {
	var gotMeta []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMeta = r.URL.Query()["node-meta"]
		fmt.Fprint(w, `[{"Node": "n1", "Address": "10.0.0.1", "Datacenter": "dc1",
			"TaggedAddresses": {"lan": "10.0.0.1", "wan": "1.2.3.4"},
			"Meta": {"role": "web"}}]`)
	}))
	defer server.Close()

	s := settingsFor(t, server)
	s.NodeMeta = map[string]string{"role": "web"}
	c := newTestClient(t, s)

	nodes, err := c.Nodes()
	require.NoError(t, err)
	assert.Equal(t, []string{"role:web"}, gotMeta)

	require.Len(t, nodes, 1)
	assert.Equal(t, "n1", nodes[0].Name)
	assert.Equal(t, "dc1", nodes[0].Datacenter)
	assert.Equal(t, "1.2.3.4", nodes[0].TaggedAddresses["wan"])
	assert.Equal(t, "web", nodes[0].Meta["role"])
}

func TestNodeServicesUnknownNode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `null`)
	}))
	defer server.Close()

	c := newTestClient(t, settingsFor(t, server))

	detail, err := c.NodeServices("ghost")
	require.NoError(t, err)
	assert.Nil(t, detail)
}

func TestNodeServicesKnownNode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/catalog/node/n1", r.URL.Path)
		fmt.Fprint(w, `{
			"Node": {"Node": "n1", "Address": "10.0.0.1", "Datacenter": "dc1"},
			"Services": {
				"web": {"Service": "web", "Tags": ["prod"], "Port": 80}
			}
		}`)
	}))
	defer server.Close()

	c := newTestClient(t, settingsFor(t, server))

	detail, err := c.NodeServices("n1")
	require.NoError(t, err)
	require.NotNil(t, detail)
	assert.Equal(t, "n1", detail.Node.Name)
	require.Contains(t, detail.Services, "web")
	assert.Equal(t, 80, detail.Services["web"].Port)
}
