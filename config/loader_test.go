package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadAppConfigFrom(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 8080
gtfs:
  path: /data/gtfs.zip
  snapshotDB: /data/schedule.db
analysis:
  expressStopMinShare: 0.4
  skipStop:
    fullTimeRoute: J
    partTimeRoute: Z
    exceptionStops: [Hewes St, Lorimer St, Flushing Av]
`)
	cfg, err := LoadAppConfigFrom(path)
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "/data/gtfs.zip", cfg.GTFS.Path)
	assert.Equal(t, "/data/schedule.db", cfg.GTFS.SnapshotDB)
	assert.Equal(t, 0.4, cfg.Analysis.ExpressStopMinShare)
	assert.Equal(t, "Z", cfg.Analysis.SkipStop.PartTimeRoute)
	assert.Len(t, cfg.Analysis.SkipStop.ExceptionStops, 3)
}

func TestLoadAppConfigDefaults(t *testing.T) {
	cfg, err := LoadAppConfigFrom(writeConfig(t, "gtfs:\n  path: /data/gtfs\n"))
	require.NoError(t, err)
	assert.Equal(t, 16181, cfg.Server.Port)
	assert.Equal(t, 0.5, cfg.Analysis.ExpressStopMinShare)
}

func TestLoadAppConfigEnvOverrides(t *testing.T) {
	t.Setenv("SA_PORT", "9090")
	t.Setenv("SA_GTFS_PATH", "/env/gtfs.zip")
	cfg, err := LoadAppConfigFrom(writeConfig(t, "gtfs:\n  path: /data/gtfs\n"))
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "/env/gtfs.zip", cfg.GTFS.Path)
}

func TestLoadAppConfigRejectsMissingPath(t *testing.T) {
	t.Setenv("SA_GTFS_PATH", "")
	_, err := LoadAppConfigFrom(writeConfig(t, "server:\n  port: 8080\n"))
	assert.Error(t, err)
}

func TestLoadAppConfigRejectsBadShare(t *testing.T) {
	_, err := LoadAppConfigFrom(writeConfig(t, "gtfs:\n  path: /x\nanalysis:\n  expressStopMinShare: 1.5\n"))
	assert.Error(t, err)
}
