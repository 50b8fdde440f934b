// FILE: lixenwraith/settings/decode_test.go
package settings

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScanWithComplexTypes(t *testing.T) {
	input := `
[Network_1]
ip = 192.168.1.100
timeout = 2m30s
started = 2024-05-01T12:30:00Z
ports.0 = 80
ports.1 = 443
labels.env = production
labels.version = 1.2.3
retry.count = 5
retry.interval = 10s
enabled = true
ratio = 0.5
`
	tree, err := INICodec{}.Unmarshal([]byte(input))
	require.NoError(t, err)

	type NetworkConfig struct {
		IP      net.IP            `settings:"ip"`
		Timeout time.Duration     `settings:"timeout"`
		Started time.Time         `settings:"started"`
		Ports   []int             `settings:"ports"`
		Labels  map[string]string `settings:"labels"`
		Enabled bool              `settings:"enabled"`
		Ratio   float64           `settings:"ratio"`
		Retry   struct {
			Count    int           `settings:"count"`
			Interval time.Duration `settings:"interval"`
		} `settings:"retry"`
	}

	var result NetworkConfig
	require.NoError(t, tree.Scan("Network_1", &result))

	assert.Equal(t, "192.168.1.100", result.IP.String())
	assert.Equal(t, 150*time.Second, result.Timeout)
	assert.Equal(t, time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC), result.Started.UTC())
	assert.Equal(t, []int{80, 443}, result.Ports)
	assert.Equal(t, map[string]string{"env": "production", "version": "1.2.3"}, result.Labels)
	assert.True(t, result.Enabled)
	assert.InDelta(t, 0.5, result.Ratio, 1e-9)
	assert.Equal(t, 5, result.Retry.Count)
	assert.Equal(t, 10*time.Second, result.Retry.Interval)
}

func TestScanNestedPath(t *testing.T) {
	tree := sampleTree()

	var db struct {
		Host string `settings:"host"`
		Port uint16 `settings:"port"`
	}
	require.NoError(t, tree.Scan("Server_1.db", &db))
	assert.Equal(t, "db.local", db.Host)
	assert.Equal(t, uint16(5432), db.Port)

	var all map[string]any
	require.NoError(t, tree.Scan("", &all))
	assert.Contains(t, all, "Server_1")
	assert.Contains(t, all, "Node_7")

	var children struct {
		Children []struct {
			Name string `settings:"name"`
		} `settings:"children"`
	}
	require.NoError(t, tree.Scan("Node_7", &children))
	require.Len(t, children.Children, 2)
	assert.Equal(t, "right", children.Children[1].Name)
}

func TestScanEmptyStringToSlice(t *testing.T) {
	section := NewTree()
	section.Set("tags", "")
	tree := NewTree()
	tree.Set("S_1", section)

	var target struct {
		Tags []string `settings:"tags"`
	}
	require.NoError(t, tree.Scan("S_1", &target))
	assert.Empty(t, target.Tags)
}

func TestInvalidScanTargets(t *testing.T) {
	tree := sampleTree()

	var target struct{}
	assert.ErrorIs(t, tree.Scan("Server_1", target), ErrInvalidArgument, "non-pointer")
	assert.ErrorIs(t, tree.Scan("Server_1", nil), ErrInvalidArgument)

	var nilPtr *struct{}
	assert.ErrorIs(t, tree.Scan("Server_1", nilPtr), ErrInvalidArgument)

	err := tree.Scan("Missing", &target)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "path not found")

	err = tree.Scan("Server_1.host", &target)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "non-section")
}

func TestWeaklyTypedInput(t *testing.T) {
	section := NewTree()
	section.Set("count", "not-a-number")
	tree := NewTree()
	tree.Set("S_1", section)

	var target struct {
		Count int `settings:"count"`
	}
	err := tree.Scan("S_1", &target)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode failed")
}
