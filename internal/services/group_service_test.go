package services

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ocserv-tools/ocserv-panel/internal/models"
)

func TestWriteConfigFileSortedOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "developers")

	cfg := models.ConfigMap{
		"mtu":          "1400",
		"dns":          "8.8.8.8",
		"ipv4-network": "172.16.12.1/22",
	}
	require.NoError(t, writeConfigFile(path, cfg))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	expected := "dns = 8.8.8.8\nipv4-network = 172.16.12.1/22\nmtu = 1400\n"
	assert.Equal(t, expected, string(data))
}

func TestWriteConfigFileEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty")

	require.NoError(t, writeConfigFile(path, models.ConfigMap{}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Empty(t, data)
}

func TestValidateGroupName(t *testing.T) {
	valid := []string{"developers", "sales-team", "vpn_users", "group2"}
	for _, name := range valid {
		assert.NoError(t, validateGroupName(name), name)
	}

	invalid := []string{"", ".", "..", "a/b", "a\\b", "with space", "tab\tname"}
	for _, name := range invalid {
		assert.Error(t, validateGroupName(name), name)
	}
}
