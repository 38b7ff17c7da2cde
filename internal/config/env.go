package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// EnvLoader 环境变量加载器
// @author: Sun977
// @date: 2026.08.12
// @description: 负责从环境变量和.env文件加载配置
type EnvLoader struct {
	envFiles []string // .env文件路径列表
	loaded   bool     // 是否已加载
}

// NewEnvLoader 创建环境变量加载器
func NewEnvLoader(envFiles ...string) *EnvLoader {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	return &EnvLoader{
		envFiles: envFiles,
		loaded:   false,
	}
}

// Load 加载环境变量
func (e *EnvLoader) Load() error {
	if e.loaded {
		return nil
	}

	// 加载.env文件
	for _, envFile := range e.envFiles {
		if err := e.loadEnvFile(envFile); err != nil {
			// .env文件不存在不算错误
			if !os.IsNotExist(err) {
				return fmt.Errorf("failed to load env file %s: %w", envFile, err)
			}
		}
	}

	e.loaded = true
	return nil
}

// loadEnvFile 加载单个.env文件
func (e *EnvLoader) loadEnvFile(envFile string) error {
	// 检查文件是否存在
	if _, err := os.Stat(envFile); os.IsNotExist(err) {
		return err
	}

	// 加载.env文件
	if err := godotenv.Load(envFile); err != nil {
		return fmt.Errorf("failed to load %s: %w", envFile, err)
	}

	return nil
}

// GetString 获取字符串环境变量
func (e *EnvLoader) GetString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// GetInt 获取整数环境变量
func (e *EnvLoader) GetInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// GetBool 获取布尔值环境变量
func (e *EnvLoader) GetBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// 全局环境变量加载器实例
var globalEnvLoader *EnvLoader

// InitGlobalEnvLoader 初始化全局环境变量加载器
func InitGlobalEnvLoader(envFiles ...string) error {
	globalEnvLoader = NewEnvLoader(envFiles...)
	return globalEnvLoader.Load()
}

// GetGlobalEnvLoader 获取全局环境变量加载器
func GetGlobalEnvLoader() *EnvLoader {
	if globalEnvLoader == nil {
		globalEnvLoader = NewEnvLoader()
		_ = globalEnvLoader.Load() // 忽略错误，使用默认值
	}
	return globalEnvLoader
}

// 便捷函数，使用全局加载器

// EnvString 获取字符串环境变量
func EnvString(key, defaultValue string) string {
	return GetGlobalEnvLoader().GetString(key, defaultValue)
}

// EnvInt 获取整数环境变量
func EnvInt(key string, defaultValue int) int {
	return GetGlobalEnvLoader().GetInt(key, defaultValue)
}

// EnvBool 获取布尔值环境变量
func EnvBool(key string, defaultValue bool) bool {
	return GetGlobalEnvLoader().GetBool(key, defaultValue)
}
