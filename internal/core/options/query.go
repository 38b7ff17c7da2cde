package options

import (
	"fmt"

	"neovector/internal/store"
)

// QueryOptions 查询指令参数
type QueryOptions struct {
	Interactive bool
	Collection  string
	Host        string
	Port        int
	AuthToken   string
	StoreMode   string
	K           int
}

func NewQueryOptions() *QueryOptions {
	return &QueryOptions{
		Collection: "security_scans",
		Host:       "localhost",
		Port:       8000,
		StoreMode:  string(store.ModeRemote),
		K:          5,
	}
}

func (o *QueryOptions) Validate() error {
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

	if o.K <= 0 {
		return fmt.Errorf("result count must be positive: %d", o.K)
	}

	return nil
}

// StoreConfig 转换为存储连接配置
func (o *QueryOptions) StoreConfig() store.Config {
	return store.Config{
		Mode:       store.Mode(o.StoreMode),
		Host:       o.Host,
		Port:       o.Port,
		AuthToken:  o.AuthToken,
		Collection: o.Collection,
	}
}
