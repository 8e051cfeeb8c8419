package wizard

import (
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateConfigDefaults(t *testing.T) {
	content, err := GenerateConfig(Answers{VerifyTLS: true})
	require.NoError(t, err)

	assert.Contains(t, content, "host = 127.0.0.1")
	assert.Contains(t, content, "port = 8500")
	assert.Contains(t, content, "scheme = http")
	assert.Contains(t, content, "verify = true")
	assert.NotContains(t, content, "token =")
	assert.NotContains(t, content, "dc =")
}

func TestGenerateConfigFull(t *testing.T) {
	content, err := GenerateConfig(Answers{
		Host:       "consul.internal",
		Port:       "8501",
		Scheme:     "https",
		Token:      "s3cret",
		VerifyTLS:  false,
		Datacenter: "paris",
		NodeGroups: true,
	})
	require.NoError(t, err)

	assert.Contains(t, content, "host = consul.internal")
	assert.Contains(t, content, "scheme = https")
	assert.Contains(t, content, "verify = false")
	assert.Contains(t, content, "token = s3cret")
	assert.Contains(t, content, "dc = paris")
	assert.Contains(t, content, "node_groups = true")
}

func TestGenerateConfigParses(t *testing.T) {
	content, err := GenerateConfig(Answers{
		Host:       "consul.internal",
		Port:       "8501",
		Scheme:     "https",
		VerifyTLS:  true,
		Datacenter: "paris",
	})
	require.NoError(t, err)

	v := viper.New()
	v.SetConfigType("ini")
	require.NoError(t, v.ReadConfig(strings.NewReader(content)))

	assert.Equal(t, "consul.internal", v.GetString("consul.host"))
	assert.Equal(t, "8501", v.GetString("consul.port"))
	assert.Equal(t, "https", v.GetString("consul.scheme"))
	assert.Equal(t, "paris", v.GetString("consul.dc"))
}
