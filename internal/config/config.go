// Package config 分析参数配置
package config

import (
	"os"
	"runtime"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

const (
	DefaultSolcEndpoint = "https://raw.githubusercontent.com/ethereum/solc-bin/gh-pages/wasm/"
	DefaultSolcDir      = "solc_binary"
)

type Config struct {
	SelectorsGas  uint64 `yaml:"selectors_gas"`
	ArgumentsGas  uint64 `yaml:"arguments_gas"`
	MutabilityGas uint64 `yaml:"mutability_gas"`
	Workers       int    `yaml:"workers"`
	LogLevel      string `yaml:"log_level"`
	SolcDir       string `yaml:"solc_dir"`
	SolcEndpoint  string `yaml:"solc_endpoint"`
}

// Default gas 为 0 时由各分析器使用自身的默认值
func Default() *Config {
	return &Config{
		Workers:      runtime.NumCPU(),
		LogLevel:     "info",
		SolcDir:      DefaultSolcDir,
		SolcEndpoint: DefaultSolcEndpoint,
	}
}

// Load 读取yaml文件，文件中没有的字段保留默认值
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "ReadFile")
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrap(err, "Unmarshal")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Workers <= 0 {
		return errors.Errorf("workers must be positive, got %d", c.Workers)
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return errors.Wrap(err, "ParseLevel")
	}
	return nil
}

// Level 日志级别，非法值退回 info
func (c *Config) Level() log.Level {
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return log.InfoLevel
	}
	return level
}
