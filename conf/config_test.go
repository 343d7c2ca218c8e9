package conf

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefaults(t *testing.T) {
	cfg, err := NewCfg().Load(&CommandLineArgs{})
	require.NoError(t, err)
	assert.Equal(t, DefaultBlockSize, cfg.BlockSize)
	assert.Equal(t, 4, cfg.RecordSize)
	assert.Equal(t, DefaultPoolCount, cfg.PoolCount)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, 1024, cfg.RecordsPerBlock())
}

func TestMissingFileKeepsDefaults(t *testing.T) {
	cfg, err := NewCfg().Load(&CommandLineArgs{ConfigPath: filepath.Join(t.TempDir(), "absent.ini")})
	require.NoError(t, err)
	assert.Equal(t, DefaultBlockSize, cfg.BlockSize)
}

func TestLoadIni(t *testing.T) {
	path := writeConfig(t, "heapsort.ini", `
[sort]
block_size  = 512
record_size = 8
pool_count  = 3

[logs]
log_infos = /tmp/heapsort.log
log_level = DEBUG
`)
	cfg, err := NewCfg().Load(&CommandLineArgs{ConfigPath: path})
	require.NoError(t, err)
	assert.Equal(t, 512, cfg.BlockSize)
	assert.Equal(t, 8, cfg.RecordSize)
	assert.Equal(t, 3, cfg.PoolCount)
	assert.Equal(t, "/tmp/heapsort.log", cfg.LogInfos)
	assert.Equal(t, "", cfg.LogError)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 64, cfg.RecordsPerBlock())

	pool := cfg.BufferPoolConfig()
	assert.Equal(t, 512, pool.BlockSize)
	assert.Equal(t, 3, pool.PoolCount)
	assert.Equal(t, "/tmp/heapsort.log", cfg.LogConfig().InfoLogPath)
}

func TestLoadToml(t *testing.T) {
	path := writeConfig(t, "heapsort.toml", `
[sort]
block_size = 1024
pool_count = 7

[logs]
log_level = "verbose"
`)
	cfg, err := NewCfg().Load(&CommandLineArgs{ConfigPath: path})
	require.NoError(t, err)
	assert.Equal(t, 1024, cfg.BlockSize)
	assert.Equal(t, 4, cfg.RecordSize)
	assert.Equal(t, 7, cfg.PoolCount)
	assert.Equal(t, "info", cfg.LogLevel, "unknown levels fall back to info")
}

func TestLoadRejectsMalformedToml(t *testing.T) {
	path := writeConfig(t, "broken.toml", "[sort\nblock_size = ")
	_, err := NewCfg().Load(&CommandLineArgs{ConfigPath: path})
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	for _, mutate := range []func(*Cfg){
		func(c *Cfg) { c.BlockSize = 0 },
		func(c *Cfg) { c.PoolCount = 0 },
		func(c *Cfg) { c.PoolCount = MaxPoolCount + 1 },
		func(c *Cfg) { c.RecordSize = 3 },
		func(c *Cfg) { c.RecordSize = 6 },
	} {
		cfg := NewCfg()
		mutate(cfg)
		err := cfg.Validate()
		require.Error(t, err)
		assert.Equal(t, ErrInvalidConfig, errors.Cause(err))
	}
}
