package conf

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml"
	"github.com/pkg/errors"
	"gopkg.in/ini.v1"

	"github.com/zhukovaskychina/xheapsort/logger"
	"github.com/zhukovaskychina/xheapsort/sorter/record"
	"github.com/zhukovaskychina/xheapsort/storage/buffer_pool"
)

const (
	DefaultBlockSize = 4096
	DefaultPoolCount = 10
	// MaxPoolCount bounds the number of buffers a run may ask for.
	MaxPoolCount = 20
)

var ErrInvalidConfig = errors.New("invalid configuration")

type CommandLineArgs struct {
	ConfigPath string
}

/*
*
[sort]
block_size  = 4096
record_size = 4
pool_count  = 10

[logs]
log_error = /var/log/heapsort/error.log
log_infos = /var/log/heapsort/heapsort.log
log_level = info
*/
type Cfg struct {
	Raw        *ini.File
	ConfigPath string

	// sort
	BlockSize  int `default:"4096" yaml:"block_size" json:"block_size,omitempty"`
	RecordSize int `default:"4" yaml:"record_size" json:"record_size,omitempty"`
	PoolCount  int `default:"10" yaml:"pool_count" json:"pool_count,omitempty"`

	// logs
	LogError string `default:"" yaml:"log_error" json:"log_error,omitempty"`
	LogInfos string `default:"" yaml:"log_infos" json:"log_infos,omitempty"`
	LogLevel string `default:"info" yaml:"log_level" json:"log_level,omitempty"`
}

func NewCfg() *Cfg {
	return &Cfg{
		Raw:        ini.Empty(),
		BlockSize:  DefaultBlockSize,
		RecordSize: record.DefaultRecordSize,
		PoolCount:  DefaultPoolCount,
		LogLevel:   "info",
	}
}

// Load overrides the defaults from args.ConfigPath. A missing file keeps the
// defaults; a file that cannot be parsed is an error. Paths ending in .toml
// are read as TOML, everything else as ini.
func (cfg *Cfg) Load(args *CommandLineArgs) (*Cfg, error) {
	if args == nil || args.ConfigPath == "" {
		return cfg, nil
	}
	cfg.ConfigPath, _ = filepath.Abs(args.ConfigPath)

	if _, err := os.Stat(args.ConfigPath); os.IsNotExist(err) {
		logger.Debugf("配置文件不存在: %s，使用默认配置", args.ConfigPath)
		return cfg, nil
	}

	if strings.EqualFold(filepath.Ext(args.ConfigPath), ".toml") {
		tree, err := toml.LoadFile(args.ConfigPath)
		if err != nil {
			return nil, errors.Wrapf(err, "parse %s", args.ConfigPath)
		}
		cfg.parseToml(tree)
	} else {
		iniFile, err := ini.Load(args.ConfigPath)
		if err != nil {
			return nil, errors.Wrapf(err, "parse %s", args.ConfigPath)
		}
		cfg.Raw = iniFile
		cfg.parseSortCfg(cfg.Raw.Section("sort"))
		cfg.parseLogsCfg(cfg.Raw.Section("logs"))
	}

	logger.Debugf("成功加载配置文件: %s", args.ConfigPath)
	return cfg, nil
}

func (cfg *Cfg) parseSortCfg(section *ini.Section) *Cfg {
	if section == nil {
		return cfg
	}
	cfg.BlockSize = section.Key("block_size").MustInt(cfg.BlockSize)
	cfg.RecordSize = section.Key("record_size").MustInt(cfg.RecordSize)
	cfg.PoolCount = section.Key("pool_count").MustInt(cfg.PoolCount)
	return cfg
}

func (cfg *Cfg) parseLogsCfg(section *ini.Section) *Cfg {
	if section == nil {
		return cfg
	}
	cfg.LogError = valueAsString(section, "log_error", cfg.LogError)
	cfg.LogInfos = valueAsString(section, "log_infos", cfg.LogInfos)
	cfg.setLogLevel(valueAsString(section, "log_level", cfg.LogLevel))
	return cfg
}

func (cfg *Cfg) parseToml(tree *toml.Tree) *Cfg {
	cfg.BlockSize = tomlInt(tree, "sort.block_size", cfg.BlockSize)
	cfg.RecordSize = tomlInt(tree, "sort.record_size", cfg.RecordSize)
	cfg.PoolCount = tomlInt(tree, "sort.pool_count", cfg.PoolCount)
	cfg.LogError = tomlString(tree, "logs.log_error", cfg.LogError)
	cfg.LogInfos = tomlString(tree, "logs.log_infos", cfg.LogInfos)
	cfg.setLogLevel(tomlString(tree, "logs.log_level", cfg.LogLevel))
	return cfg
}

// setLogLevel falls back to info on an unknown level.
func (cfg *Cfg) setLogLevel(level string) {
	level = strings.ToLower(level)
	if !logger.IsValidLevel(level) {
		logger.Debugf("警告: 无效的日志级别 '%s', 使用默认级别 'info'", level)
		level = "info"
	}
	cfg.LogLevel = level
}

func valueAsString(section *ini.Section, keyName string, defaultValue string) string {
	value := section.Key(keyName).MustString(defaultValue)
	if value == "" {
		return defaultValue
	}
	return value
}

func tomlInt(tree *toml.Tree, key string, defaultValue int) int {
	switch v := tree.Get(key).(type) {
	case int64:
		return int(v)
	case uint64:
		return int(v)
	case float64:
		return int(v)
	default:
		return defaultValue
	}
}

func tomlString(tree *toml.Tree, key string, defaultValue string) string {
	if v, ok := tree.Get(key).(string); ok && v != "" {
		return v
	}
	return defaultValue
}

// Validate checks every size before any file is opened.
func (cfg *Cfg) Validate() error {
	if cfg.BlockSize <= 0 {
		return errors.Wrapf(ErrInvalidConfig, "block_size %d must be positive", cfg.BlockSize)
	}
	if cfg.PoolCount <= 0 || cfg.PoolCount > MaxPoolCount {
		return errors.Wrapf(ErrInvalidConfig, "pool_count %d must be in [1, %d]", cfg.PoolCount, MaxPoolCount)
	}
	if _, err := record.NewCodec(cfg.RecordSize); err != nil {
		return errors.Wrapf(ErrInvalidConfig, "record_size %d: %v", cfg.RecordSize, err)
	}
	return nil
}

// RecordsPerBlock is how many records start in each block, the stride of the
// block leaders.
func (cfg *Cfg) RecordsPerBlock() int {
	n := cfg.BlockSize / cfg.RecordSize
	if n < 1 {
		return 1
	}
	return n
}

func (cfg *Cfg) BufferPoolConfig() *buffer_pool.BufferPoolConfig {
	return &buffer_pool.BufferPoolConfig{
		BlockSize: cfg.BlockSize,
		PoolCount: cfg.PoolCount,
	}
}

func (cfg *Cfg) LogConfig() logger.LogConfig {
	return logger.LogConfig{
		ErrorLogPath: cfg.LogError,
		InfoLogPath:  cfg.LogInfos,
		LogLevel:     cfg.LogLevel,
	}
}
