package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/meshtopo/faces"
	"github.com/notargets/meshtopo/partitions"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "meshtopo.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, FormatAuto, cfg.Format)
	assert.Equal(t, faces.DefaultTolerance, cfg.Faces.Tolerance)

	policy, err := cfg.SetPolicy()
	require.NoError(t, err)
	assert.Equal(t, faces.AllNodes, policy)
	strategy, err := cfg.Strategy()
	require.NoError(t, err)
	assert.Equal(t, partitions.BlockPartition, strategy)
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := writeConfig(t, `
mesh: box.yaml
faces:
  set_policy: any
partition:
  size: 8
  strategy: roundrobin
`)
	t.Setenv("MESHTOPO_PARTITION_SIZE", "16")
	t.Setenv("MESHTOPO_SNAPSHOT", "out.cbor")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "box.yaml", cfg.Mesh)
	assert.Equal(t, "out.cbor", cfg.Snapshot)
	assert.Equal(t, 16, cfg.Partition.Size)
	assert.Equal(t, "roundrobin", cfg.Partition.Strategy)
	// untouched fields keep their defaults
	assert.Equal(t, faces.DefaultTolerance, cfg.Faces.Tolerance)

	policy, err := cfg.SetPolicy()
	require.NoError(t, err)
	assert.Equal(t, faces.AnyNode, policy)
}

func TestLoad_Errors(t *testing.T) {
	tests := map[string]string{
		"unknown field":    "meshfile: x\n",
		"bad policy":       "faces:\n  set_policy: most\n",
		"bad strategy":     "partition:\n  strategy: metis\n",
		"bad format":       "format: stl\n",
		"negative size":    "partition:\n  size: -1\n",
		"negative epsilon": "faces:\n  tolerance: -1e-3\n",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, body))
			assert.Error(t, err)
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestParseEnvError(t *testing.T) {
	t.Setenv("MESHTOPO_PARTITION_WORKERS", "not-an-int")
	err := ParseEnv(Default())
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "parse env:") {
		t.Fatalf("expected parse env prefix, got %v", err)
	}
}
