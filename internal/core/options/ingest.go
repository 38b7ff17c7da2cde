package options

import (
	"fmt"

	"neovector/internal/store"
)

// IngestOptions 入库指令参数
type IngestOptions struct {
	InputPath  string
	Collection string
	Host       string
	Port       int
	AuthToken  string
	VectorSize int
	StoreMode  string
	BatchSize  int
}

func NewIngestOptions() *IngestOptions {
	return &IngestOptions{
		Collection: "security_scans",
		Host:       "localhost",
		Port:       8000,
		VectorSize: 384,
		StoreMode:  string(store.ModeRemote),
		BatchSize:  100,
	}
}

func (o *IngestOptions) Validate() error {
	if o.InputPath == "" {
		return fmt.Errorf("input file is required")
	}

	if o.Collection == "" {
		return fmt.Errorf("collection name is required")
	}

	switch store.Mode(o.StoreMode) {
	case store.ModeLocal, store.ModeRemote:
	default:
		return fmt.Errorf("unsupported store mode: %s", o.StoreMode)
	}

	if o.Port <= 0 || o.Port > 65535 {
		return fmt.Errorf("invalid port: %d", o.Port)
	}

	if o.BatchSize <= 0 {
		return fmt.Errorf("invalid batch size: %d", o.BatchSize)
	}

	return nil
}

// StoreConfig 转换为存储连接配置
func (o *IngestOptions) StoreConfig() store.Config {
	return store.Config{
		Mode:       store.Mode(o.StoreMode),
		Host:       o.Host,
		Port:       o.Port,
		AuthToken:  o.AuthToken,
		Collection: o.Collection,
		VectorSize: o.VectorSize,
	}
}
