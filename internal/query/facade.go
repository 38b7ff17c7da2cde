/**
 * 查询门面
 * @author: Sun977
 * @date: 2026.08.12
 * @description: 对向量库发起语义查询和元数据过滤查询，渲染为控制台表格。
 *               demo 模式跑一组固定的示例查询，交互模式见 repl.go。
 */
package query

import (
	"context"
	"fmt"
	"strconv"

	"github.com/pterm/pterm"

	"neovector/internal/pkg/logger"
	"neovector/internal/store"
)

// DefaultK 语义查询默认返回条数
const DefaultK = 5

// Facade 查询门面，持有启动时解析好的能力对象
type Facade struct {
	store store.Store
	K     int
}

func NewFacade(s store.Store) *Facade {
	return &Facade{
		store: s,
		K:     DefaultK,
	}
}

// Semantic 自由文本语义查询，打印前 K 条命中
func (f *Facade) Semantic(ctx context.Context, text string) error {
	hits, err := f.store.Query(ctx, text, f.K)
	if err != nil {
		return fmt.Errorf("semantic query %q: %w", text, err)
	}
	logger.LogQuery("semantic", text, len(hits))
	if len(hits) == 0 {
		pterm.Warning.Printfln("No results for %q", text)
		return nil
	}

	pterm.Println(pterm.LightGreen(fmt.Sprintf("Top %d results for %q:", len(hits), text)))
	return renderHits(hits, true)
}

// ActiveHosts 元数据过滤：state == up 的记录
func (f *Facade) ActiveHosts(ctx context.Context) error {
	hits, err := f.store.Get(ctx, store.Where{"state": "up"}, 100)
	if err != nil {
		return fmt.Errorf("active hosts filter: %w", err)
	}
	logger.LogQuery("filter", "state == up", len(hits))
	if len(hits) == 0 {
		pterm.Warning.Println("No active hosts found")
		return nil
	}

	pterm.Println(pterm.LightGreen(fmt.Sprintf("Found %d active hosts", len(hits))))
	return renderHits(hits, false)
}

// PortsAbove 元数据过滤：open_port_count > n 的记录
func (f *Facade) PortsAbove(ctx context.Context, n int) error {
	hits, err := f.store.Get(ctx, store.Where{
		"open_port_count": map[string]interface{}{"$gt": n},
	}, f.K)
	if err != nil {
		return fmt.Errorf("port count filter: %w", err)
	}
	logger.LogQuery("filter", fmt.Sprintf("open_port_count > %d", n), len(hits))
	if len(hits) == 0 {
		pterm.Warning.Printfln("No hosts found with more than %d open ports", n)
		return nil
	}

	pterm.Println(pterm.LightGreen(fmt.Sprintf("Hosts with more than %d open ports:", n)))
	return renderHits(hits, false)
}

// Count 集合内文档总数
func (f *Facade) Count(ctx context.Context) (int, error) {
	n, err := f.store.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count collection: %w", err)
	}
	return n, nil
}

// Demo 按固定顺序跑一组示例查询
func (f *Facade) Demo(ctx context.Context) error {
	demos := []struct {
		title string
		run   func() error
	}{
		{"Search for HTTP services", func() error { return f.Semantic(ctx, "HTTP web server") }},
		{"Search for SSH services", func() error { return f.Semantic(ctx, "SSH secure shell") }},
		{"Hosts with more than 3 open ports", func() error { return f.PortsAbove(ctx, 3) }},
		{"Search for SMB services (port 445)", func() error { return f.Semantic(ctx, "445 SMB netbios microsoft-ds CIFS") }},
		{"All active hosts", func() error { return f.ActiveHosts(ctx) }},
		{"Search for database services", func() error { return f.Semantic(ctx, "database mysql postgresql mongodb redis sql") }},
		{"Search for SMTP", func() error { return f.Semantic(ctx, "smtp") }},
	}

	for i, demo := range demos {
		pterm.DefaultSection.Printfln("Query %d: %s", i+1, demo.title)
		if err := demo.run(); err != nil {
			return err
		}
	}
	return nil
}

// renderHits 把命中渲染为表格
// 元数据字段集按 record_type 固定，这里挑跨类型通用的摘要列
func renderHits(hits []store.Hit, withScore bool) error {
	headers := []string{"ID", "Type", "Subject", "Detail"}
	if withScore {
		headers = append(headers, "Score")
	}

	tableData := pterm.TableData{headers}
	for _, hit := range hits {
		row := []string{hit.ID, metaString(hit, "record_type"), hitSubject(hit), hitDetail(hit)}
		if withScore {
			row = append(row, fmt.Sprintf("%.4f", hit.Distance))
		}
		tableData = append(tableData, row)
	}

	if err := pterm.DefaultTable.
		WithHasHeader(true).
		WithBoxed(false).
		WithData(tableData).
		Render(); err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}
	return nil
}

// hitSubject 记录的主标识列
func hitSubject(hit store.Hit) string {
	for _, key := range []string{"ip", "hostname", "target", "template"} {
		if v := metaString(hit, key); v != "" {
			return v
		}
	}
	return "-"
}

// hitDetail 记录的概要列
func hitDetail(hit store.Hit) string {
	switch metaString(hit, "record_type") {
	case "port_service":
		return metaInt(hit, "open_port_count") + " open ports, state " + metaString(hit, "state")
	case "protocol_status":
		return metaInt(hit, "enabled_protocol_count") + " protocols enabled, " +
			metaInt(hit, "weak_protocol_count") + " weak"
	case "log_entry":
		if sev := metaString(hit, "severity"); sev != "" {
			return "severity " + sev
		}
		return "log level " + metaString(hit, "log_level")
	case "host":
		return "origin " + metaString(hit, "input_origin")
	}
	return "-"
}

func metaString(hit store.Hit, key string) string {
	if hit.Metadata == nil {
		return ""
	}
	if v, ok := hit.Metadata[key].(string); ok {
		return v
	}
	return ""
}

func metaInt(hit store.Hit, key string) string {
	if hit.Metadata == nil {
		return "0"
	}
	switch v := hit.Metadata[key].(type) {
	case int:
		return strconv.Itoa(v)
	case float64:
		return strconv.Itoa(int(v))
	}
	return "0"
}
