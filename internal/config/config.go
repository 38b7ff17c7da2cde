/**
 * 配置管理
 * @author: Sun977
 * @date: 2026.08.12
 * @description: 配置管理，负责加载和管理转换、入库、查询的所有配置
 */
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"neovector/internal/store"
)

// Config 全量配置
type Config struct {
	// 应用配置
	App *AppConfig `yaml:"app" mapstructure:"app"`

	// 日志配置
	Log *LogConfig `yaml:"log" mapstructure:"log"`

	// 向量库连接配置
	Store *store.Config `yaml:"store" mapstructure:"store"`

	// 入库配置
	Ingest *IngestConfig `yaml:"ingest" mapstructure:"ingest"`

	// 查询配置
	Query *QueryConfig `yaml:"query" mapstructure:"query"`
}

// AppConfig 应用配置
type AppConfig struct {
	Name        string `yaml:"name" mapstructure:"name"`               // 应用名称
	Version     string `yaml:"version" mapstructure:"version"`         // 应用版本
	Environment string `yaml:"environment" mapstructure:"environment"` // 运行环境
	Debug       bool   `yaml:"debug" mapstructure:"debug"`             // 调试模式
	Timezone    string `yaml:"timezone" mapstructure:"timezone"`       // 时区
}

// LogConfig 日志配置
type LogConfig struct {
	Level      string `yaml:"level" mapstructure:"level"`             // 日志级别 (debug/info/warn/error)
	Format     string `yaml:"format" mapstructure:"format"`           // 日志格式 (json/text)
	Output     string `yaml:"output" mapstructure:"output"`           // 日志输出 (stdout/stderr/file)
	FilePath   string `yaml:"file_path" mapstructure:"file_path"`     // 日志文件路径
	MaxSize    int    `yaml:"max_size" mapstructure:"max_size"`       // 最大文件大小（MB）
	MaxBackups int    `yaml:"max_backups" mapstructure:"max_backups"` // 最大备份数
	MaxAge     int    `yaml:"max_age" mapstructure:"max_age"`         // 最大保留天数
	Compress   bool   `yaml:"compress" mapstructure:"compress"`       // 是否压缩
	Caller     bool   `yaml:"caller" mapstructure:"caller"`           // 是否显示调用者信息
}

// IngestConfig 入库配置
type IngestConfig struct {
	BatchSize int `yaml:"batch_size" mapstructure:"batch_size"` // 批量写入大小
}

// QueryConfig 查询配置
type QueryConfig struct {
	K             int `yaml:"k" mapstructure:"k"`                           // 语义查询默认返回条数
	PortThreshold int `yaml:"port_threshold" mapstructure:"port_threshold"` // :ports 默认阈值
}

// LoadConfig 加载配置
// 传入文件路径时直接加载该文件，传入目录或留空时走搜索路径
func LoadConfig(configPath ...string) (*Config, error) {
	var path string
	if len(configPath) > 0 && configPath[0] != "" {
		path = configPath[0]
	}

	var (
		config *Config
		err    error
	)
	if info, statErr := os.Stat(path); path != "" && statErr == nil && !info.IsDir() {
		config, err = LoadConfigFromFile(path)
	} else {
		config, err = NewConfigLoader(path, "NEOVECTOR").LoadConfig()
	}
	if err != nil {
		return nil, err
	}

	// 设置全局配置
	globalConfig = config
	return config, nil
}

// loadConfigFile 从指定配置文件加载
func loadConfigFile(cfg *Config, configPath string) error {
	// 检查文件是否存在
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return fmt.Errorf("config file not found: %s", configPath)
	}

	// 读取配置文件
	data, err := os.ReadFile(configPath)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	// 根据文件扩展名选择解析方式
	ext := filepath.Ext(configPath)
	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("failed to parse YAML config: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("failed to parse JSON config: %w", err)
		}
	default:
		return fmt.Errorf("unsupported config file format: %s", ext)
	}

	return nil
}

// ensureDir 确保目录存在
func ensureDir(dir string) error {
	if dir == "" {
		return nil
	}

	absDir, err := filepath.Abs(dir)
	if err != nil {
		return err
	}

	return os.MkdirAll(absDir, 0755)
}

// GetConfig 获取配置（单例模式）
var globalConfig *Config

func GetConfig() *Config {
	if globalConfig == nil {
		var err error
		globalConfig, err = LoadConfig("")
		if err != nil {
			panic(fmt.Sprintf("Failed to load config: %v", err))
		}
	}
	return globalConfig
}

// ReloadConfig 重新加载配置
func ReloadConfig() error {
	newConfig, err := LoadConfig("")
	if err != nil {
		return err
	}

	globalConfig = newConfig
	return nil
}
