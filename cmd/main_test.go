// FILE: cmd/main_test.go
package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/lixenwraith/settings"
)

const sampleINI = `[Server_1]
host = localhost
port = 8080
tags.0 = api
tags.1 = public
db.host = db.local

[Node_7]
children.0.name = left
children.1.name = right
`

func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeSample(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "app.ini")
	require.NoError(t, os.WriteFile(path, []byte(sampleINI), 0644))
	return path
}

func TestShowCommand(t *testing.T) {
	path := writeSample(t)

	out, err := runCmd(t, "show", path)
	require.NoError(t, err)
	assert.Contains(t, out, "[Server_1]")
	assert.Contains(t, out, "[Node_7]")

	_, err = runCmd(t, "show")
	assert.Error(t, err, "missing argument")
}

func TestGetCommand(t *testing.T) {
	path := writeSample(t)

	tests := []struct {
		name     string
		path     string
		contains string
	}{
		{"Scalar", "Server_1.port", "8080\n"},
		{"NestedScalar", "Server_1.db.host", "db.local\n"},
		{"List", "Server_1.tags", "api\npublic\n"},
		{"Section", "Server_1.db", "host: db.local\n"},
		{"ObjectList", "Node_7.children", "name: right\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := runCmd(t, "get", path, tt.path)
			require.NoError(t, err)
			assert.Contains(t, out, tt.contains)
		})
	}

	_, err := runCmd(t, "get", path, "Server_1.missing")
	assert.Error(t, err)
}

func TestConvertCommand(t *testing.T) {
	src := writeSample(t)

	for _, ext := range []string{"xml", "toml", "yaml"} {
		t.Run(ext, func(t *testing.T) {
			dst := filepath.Join(t.TempDir(), "converted."+ext)
			_, err := runCmd(t, "--verbose", "convert", src, dst)
			require.NoError(t, err)

			opts := settings.DefaultOptions()
			opts.Backends = settings.ExtendedBackends()
			opts.File = dst
			s, err := settings.NewWithOptions(opts)
			require.NoError(t, err)

			tree, err := s.GetConfigAsObject()
			require.NoError(t, err)
			name, err := tree.String("Node_7.children.1.name")
			require.NoError(t, err)
			assert.Equal(t, "right", name)
		})
	}

	_, err := runCmd(t, "convert", src, filepath.Join(t.TempDir(), "out.json"))
	assert.ErrorIs(t, err, settings.ErrUnknownExtension)
}

// syncCountingCore records Sync calls on top of an observed core.
type syncCountingCore struct {
	zapcore.Core
	syncs int
}

func (c *syncCountingCore) Sync() error {
	c.syncs++
	return c.Core.Sync()
}

func TestVerboseLoggerIsSynced(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	counting := &syncCountingCore{Core: core}

	original := newVerboseLogger
	newVerboseLogger = func(...zap.Option) (*zap.Logger, error) {
		return zap.New(counting), nil
	}
	t.Cleanup(func() { newVerboseLogger = original })

	src := writeSample(t)
	_, err := runCmd(t, "--verbose", "show", src)
	require.NoError(t, err)
	assert.Equal(t, 1, counting.syncs)
	assert.NotZero(t, logs.FilterMessage("config file loaded").Len())

	_, err = runCmd(t, "--verbose", "show", filepath.Join(t.TempDir(), "missing.ini"))
	require.Error(t, err)
	assert.Equal(t, 2, counting.syncs, "synced on failure too")
}
