/**
 * 向量库边界接口
 * @author: Sun977
 * @date: 2026.08.12
 * @description: 向量库作为外部协作方，只通过这组窄接口消费：
 *               upsert / query / get / count。存储模式在启动时解析一次，
 *               此后全程使用同一个能力对象，不留死代码路径。
 */
package store

import (
	"context"
	"errors"
	"fmt"
)

// ==================== 存储错误定义 ====================

var (
	// 无法连接向量库服务，入库/查询启动即失败
	ErrConnection = errors.New("cannot reach vector store")

	// 批量入库中途连接中断，剩余记录未入库，已入库记录保留
	ErrIngestionAborted = errors.New("ingestion aborted: connection lost mid-batch")
)

// ==================== 能力接口 ====================

// Hit 一条查询命中
// Distance 仅语义查询返回 (越小越相似)，元数据过滤时为 0
type Hit struct {
	ID       string
	Document string
	Metadata map[string]interface{}
	Distance float64
}

// Where 元数据过滤谓词，Chroma 风格：
// {"state": "up"} 精确匹配；{"open_port_count": {"$gt": 3}} 比较
type Where map[string]interface{}

// Store 向量库能力对象
type Store interface {
	// Upsert 按 ID 插入或覆盖一批文档
	Upsert(ctx context.Context, ids []int, documents []string, metadatas []map[string]interface{}) error

	// Query 语义查询，返回按相似度排序的前 k 条
	Query(ctx context.Context, text string, k int) ([]Hit, error)

	// Get 元数据过滤检索
	Get(ctx context.Context, where Where, limit int) ([]Hit, error)

	// Count 集合内文档总数
	Count(ctx context.Context) (int, error)
}

// ==================== 模式解析 ====================

// Mode 存储模式，启动时解析一次
type Mode string

const (
	ModeLocal  Mode = "local"  // 进程内存储，离线运行和测试用
	ModeRemote Mode = "remote" // ChromaDB HTTP 服务
)

// Config 存储连接配置
type Config struct {
	Mode       Mode   `yaml:"mode" mapstructure:"mode"`               // local / remote
	Host       string `yaml:"host" mapstructure:"host"`               // 远端主机
	Port       int    `yaml:"port" mapstructure:"port"`               // 远端端口
	AuthToken  string `yaml:"auth_token" mapstructure:"auth_token"`   // Bearer 令牌，可为空
	Collection string `yaml:"collection" mapstructure:"collection"`   // 集合名
	VectorSize int    `yaml:"vector_size" mapstructure:"vector_size"` // 向量维度 (远端建集合用)
}

// Open 按配置解析出唯一的能力对象
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Mode {
	case ModeLocal, "":
		return NewMemoryStore(), nil
	case ModeRemote:
		return NewChromaStore(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown store mode %q (expect local or remote)", cfg.Mode)
	}
}
