package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"neovector/internal/pkg/version"
	"neovector/internal/store"
)

// ConfigLoader 配置加载器
type ConfigLoader struct {
	configPath string
	envPrefix  string
	viper      *viper.Viper
}

// NewConfigLoader 创建配置加载器
func NewConfigLoader(configPath, envPrefix string) *ConfigLoader {
	if envPrefix == "" {
		envPrefix = "NEOVECTOR"
	}

	return &ConfigLoader{
		configPath: configPath,
		envPrefix:  envPrefix,
		viper:      viper.New(),
	}
}

// LoadConfig 加载配置
// 配置文件缺失时仅用默认值和环境变量，命令行工具不强依赖配置文件
func (cl *ConfigLoader) LoadConfig() (*Config, error) {
	// 设置配置文件类型
	cl.viper.SetConfigType("yaml")

	// 设置环境变量前缀
	cl.viper.SetEnvPrefix(cl.envPrefix)
	cl.viper.AutomaticEnv()
	cl.viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// 绑定环境变量
	cl.bindEnvVars()

	// 设置默认值
	cl.setDefaults()

	// 加载配置文件
	if err := cl.loadConfigFile(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	// 解析配置
	var config Config
	if err := cl.viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// 验证配置
	if err := cl.validateConfig(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

// loadConfigFile 加载配置文件
func (cl *ConfigLoader) loadConfigFile() error {
	if cl.configPath == "" {
		// 尝试从环境变量获取配置文件路径
		if envPath := os.Getenv("NEOVECTOR_CONFIG_PATH"); envPath != "" {
			cl.configPath = envPath
		} else {
			// 默认配置文件路径
			cl.configPath = "./configs"
		}
	}

	// 获取环境
	env := cl.getEnvironment()

	// 设置配置文件搜索路径
	cl.viper.AddConfigPath(cl.configPath)
	cl.viper.AddConfigPath("./configs")
	cl.viper.AddConfigPath(".")

	// 尝试加载环境特定的配置文件
	configName := fmt.Sprintf("config.%s", env)
	cl.viper.SetConfigName(configName)

	if err := cl.viper.ReadInConfig(); err != nil {
		// 如果环境特定配置文件不存在，尝试加载默认配置文件
		cl.viper.SetConfigName("config")
		if err := cl.viper.ReadInConfig(); err != nil {
			return err
		}
	}

	return nil
}

// getEnvironment 获取运行环境
func (cl *ConfigLoader) getEnvironment() string {
	env := os.Getenv("NEOVECTOR_ENV")
	if env == "" {
		env = os.Getenv("GO_ENV")
	}
	if env == "" {
		env = "development"
	}
	return env
}

// bindEnvVars 绑定环境变量
func (cl *ConfigLoader) bindEnvVars() {
	// App配置
	cl.viper.BindEnv("app.name", "NEOVECTOR_APP_NAME")
	cl.viper.BindEnv("app.environment", "NEOVECTOR_APP_ENVIRONMENT")
	cl.viper.BindEnv("app.debug", "NEOVECTOR_APP_DEBUG")

	// 日志配置
	cl.viper.BindEnv("log.level", "NEOVECTOR_LOG_LEVEL")
	cl.viper.BindEnv("log.format", "NEOVECTOR_LOG_FORMAT")
	cl.viper.BindEnv("log.file_path", "NEOVECTOR_LOG_FILE_PATH")

	// 向量库配置
	cl.viper.BindEnv("store.mode", "NEOVECTOR_STORE_MODE")
	cl.viper.BindEnv("store.host", "NEOVECTOR_STORE_HOST")
	cl.viper.BindEnv("store.port", "NEOVECTOR_STORE_PORT")
	cl.viper.BindEnv("store.auth_token", "NEOVECTOR_STORE_AUTH_TOKEN")
	cl.viper.BindEnv("store.collection", "NEOVECTOR_STORE_COLLECTION")
	cl.viper.BindEnv("store.vector_size", "NEOVECTOR_STORE_VECTOR_SIZE")

	// 入库配置
	cl.viper.BindEnv("ingest.batch_size", "NEOVECTOR_INGEST_BATCH_SIZE")

	// 查询配置
	cl.viper.BindEnv("query.k", "NEOVECTOR_QUERY_K")
	cl.viper.BindEnv("query.port_threshold", "NEOVECTOR_QUERY_PORT_THRESHOLD")
}

// setDefaults 设置默认值
func (cl *ConfigLoader) setDefaults() {
	// App默认值
	cl.viper.SetDefault("app.name", "NeoVector")
	cl.viper.SetDefault("app.version", version.GetVersion())
	cl.viper.SetDefault("app.environment", "development")
	cl.viper.SetDefault("app.debug", false)
	cl.viper.SetDefault("app.timezone", "UTC")

	// 日志默认值
	cl.viper.SetDefault("log.level", "warn")
	cl.viper.SetDefault("log.format", "text")
	cl.viper.SetDefault("log.output", "stderr")
	cl.viper.SetDefault("log.file_path", "./logs/neovector.log")
	cl.viper.SetDefault("log.max_size", 100)
	cl.viper.SetDefault("log.max_backups", 3)
	cl.viper.SetDefault("log.max_age", 28)
	cl.viper.SetDefault("log.compress", true)
	cl.viper.SetDefault("log.caller", false)

	// 向量库默认值
	cl.viper.SetDefault("store.mode", "local")
	cl.viper.SetDefault("store.host", "localhost")
	cl.viper.SetDefault("store.port", 8000)
	cl.viper.SetDefault("store.collection", "security_scans")
	cl.viper.SetDefault("store.vector_size", 384)

	// 入库默认值
	cl.viper.SetDefault("ingest.batch_size", 100)

	// 查询默认值
	cl.viper.SetDefault("query.k", 5)
	cl.viper.SetDefault("query.port_threshold", 3)
}

// validateConfig 验证配置
func (cl *ConfigLoader) validateConfig(config *Config) error {
	// 验证存储模式
	switch config.Store.Mode {
	case store.ModeLocal, store.ModeRemote, "":
	default:
		return fmt.Errorf("invalid store mode: %s (expect local or remote)", config.Store.Mode)
	}

	if config.Store.Port <= 0 || config.Store.Port > 65535 {
		return fmt.Errorf("invalid store port: %d", config.Store.Port)
	}

	if config.Store.Collection == "" {
		return fmt.Errorf("store collection is required")
	}

	if config.Ingest.BatchSize <= 0 {
		return fmt.Errorf("invalid ingest batch size: %d", config.Ingest.BatchSize)
	}

	if config.Query.K <= 0 {
		return fmt.Errorf("invalid query result count: %d", config.Query.K)
	}

	// 日志落盘时确保目录存在
	if strings.ToLower(config.Log.Output) == "file" {
		if err := ensureDir(filepath.Dir(config.Log.FilePath)); err != nil {
			return fmt.Errorf("failed to create log directory: %w", err)
		}
	}

	return nil
}

// GetConfigPath 获取配置文件路径
func (cl *ConfigLoader) GetConfigPath() string {
	return cl.viper.ConfigFileUsed()
}

// LoadConfigFromFile 从指定文件加载配置
// JSON文件直接解析，YAML走viper搜索路径以合并环境变量
func LoadConfigFromFile(configFile string) (*Config, error) {
	if filepath.Ext(configFile) == ".json" {
		loader := NewConfigLoader("", "NEOVECTOR")
		loader.setDefaults()

		var config Config
		if err := loader.viper.Unmarshal(&config); err != nil {
			return nil, fmt.Errorf("failed to unmarshal defaults: %w", err)
		}
		if err := loadConfigFile(&config, configFile); err != nil {
			return nil, err
		}
		if err := loader.validateConfig(&config); err != nil {
			return nil, fmt.Errorf("config validation failed: %w", err)
		}
		return &config, nil
	}

	configPath := filepath.Dir(configFile)
	loader := NewConfigLoader(configPath, "NEOVECTOR")
	return loader.LoadConfig()
}
