// 自定义日志格式化器
package logger

import (
	"time"

	"github.com/sirupsen/logrus"
)

// FormatTimestamp 格式化时间戳为统一的毫秒精度格式
// 返回格式："2006-01-02 15:04:05.000"
func FormatTimestamp(t time.Time) string {
	// 除了日志管理器之外的其他模块使用的时间戳格式
	return t.Format("2006-01-02 15:04:05.000")
}

// NowFormatted 返回当前时间的格式化字符串
// 返回格式："2006-01-02 15:04:05.000"
func NowFormatted() string {
	return FormatTimestamp(time.Now())
}

// LogType 日志类型枚举
type LogType string

const (
	// ConvertLog 转换日志 - 记录文本归一化和解析情况
	ConvertLog LogType = "convert"
	// IngestLog 入库日志 - 记录向量库批量写入情况
	IngestLog LogType = "ingest"
	// QueryLog 查询日志 - 记录语义查询和过滤查询
	QueryLog LogType = "query"
	// SystemLog 系统日志 - 记录系统运行状态
	SystemLog LogType = "system"
	// ErrorLog 错误日志 - 记录系统错误和异常
	ErrorLog LogType = "error"
)

// WithType 给日志条目打上类型字段
func WithType(logType LogType) *logrus.Entry {
	return WithField("log_type", string(logType))
}

// LogConvert 记录一次转换的结果概要
func LogConvert(tool string, units int, records int, skipped int) {
	WithFields(logrus.Fields{
		"log_type": string(ConvertLog),
		"tool":     tool,
		"units":    units,
		"records":  records,
		"skipped":  skipped,
	}).Info("Conversion completed")
}

// LogIngest 记录一次入库的结果概要
func LogIngest(collection string, uploaded int, failed int, batches int) {
	WithFields(logrus.Fields{
		"log_type":   string(IngestLog),
		"collection": collection,
		"uploaded":   uploaded,
		"failed":     failed,
		"batches":    batches,
	}).Info("Ingestion completed")
}

// LogQuery 记录一次查询
func LogQuery(kind string, expr string, hits int) {
	WithFields(logrus.Fields{
		"log_type": string(QueryLog),
		"kind":     kind,
		"expr":     expr,
		"hits":     hits,
	}).Debug("Query executed")
}
