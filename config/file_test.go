package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempConfig(t *testing.T, body string) string {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "replicaset.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	return path
}

func TestLoadReplicaSetConfig(t *testing.T) {
	path := writeTempConfig(t, `
replicas:
  - addr: "cass-a:9042"
    path: "users"
    name: "us_east"
  - addr: "cass-b:9042"
    path: "users"
    name: "us_west"
ddl_fail_fast: true
timestamp_diff: 5us
get_random_mode: true
`)

	cfg, err := LoadReplicaSetConfig(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"cass-a:9042", "cass-b:9042"}, cfg.Addrs())
	assert.Equal(t, []string{"users", "users"}, cfg.Paths())
	assert.Equal(t, []string{"us_east", "us_west"}, cfg.Names())
	assert.True(t, cfg.DDLFailFast)
	assert.True(t, cfg.GetRandomMode)
}

func TestLoadReplicaSetConfigNoNames(t *testing.T) {
	path := writeTempConfig(t, `
replicas:
  - addr: "cass-a:9042"
    path: "users"
`)

	cfg, err := LoadReplicaSetConfig(path)
	require.NoError(t, err)
	assert.Nil(t, cfg.Names())
}

func TestLoadReplicaSetConfigMissingFile(t *testing.T) {
	_, err := LoadReplicaSetConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidateRejectsEmptyReplicas(t *testing.T) {
	cfg := &ReplicaSetConfig{}
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsMissingAddr(t *testing.T) {
	cfg := &ReplicaSetConfig{Replicas: []ReplicaConfig{{Path: "users"}}}
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsMissingPath(t *testing.T) {
	cfg := &ReplicaSetConfig{Replicas: []ReplicaConfig{{Addr: "cass-a:9042"}}}
	assert.Error(t, cfg.Validate())
}
