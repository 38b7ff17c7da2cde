/**
 * 交互式查询
 * @author: Sun977
 * @date: 2026.08.12
 * @description: 单线程 REPL。自由文本做语义查询，冒号开头的行是命令。
 */
package query

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pterm/pterm"
)

// defaultPortThreshold :ports 不带参数或参数非法时的兜底阈值
const defaultPortThreshold = 3

// REPL 交互式查询循环，输入流可注入便于测试
type REPL struct {
	facade        *Facade
	in            io.Reader
	portThreshold int
}

func NewREPL(f *Facade, in io.Reader) *REPL {
	return &REPL{
		facade:        f,
		in:            in,
		portThreshold: defaultPortThreshold,
	}
}

// WithPortThreshold 覆盖 :ports 的兜底阈值
func (r *REPL) WithPortThreshold(n int) *REPL {
	if n > 0 {
		r.portThreshold = n
	}
	return r
}

// Run 读行循环，直到 :quit 或输入流结束
func (r *REPL) Run(ctx context.Context) error {
	printHelp()
	scanner := bufio.NewScanner(r.in)

	for {
		pterm.Print(pterm.LightCyan("query> "))
		if !scanner.Scan() {
			break
		}
		quit, err := r.Exec(ctx, scanner.Text())
		if err != nil {
			pterm.Error.Printfln("Query failed: %v", err)
		}
		if quit {
			break
		}
	}
	return scanner.Err()
}

// Exec 执行一行输入，返回是否退出循环
// 冒号开头的行只走命令分发，未知命令不会落到语义查询
func (r *REPL) Exec(ctx context.Context, line string) (quit bool, err error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return false, nil
	}

	if !strings.HasPrefix(line, ":") {
		return false, r.facade.Semantic(ctx, line)
	}

	// 命令名不区分大小写，参数原样保留
	fields := strings.Fields(line)
	switch strings.ToLower(fields[0]) {
	case ":quit", ":q", ":exit":
		pterm.Println("Bye")
		return true, nil
	case ":help":
		printHelp()
		return false, nil
	case ":k":
		r.setK(fields[1:])
		return false, nil
	case ":all":
		return false, r.facade.ActiveHosts(ctx)
	case ":ports":
		return false, r.facade.PortsAbove(ctx, r.parsePortThreshold(fields[1:]))
	case ":count":
		n, err := r.facade.Count(ctx)
		if err != nil {
			return false, err
		}
		pterm.Println(pterm.LightGreen(fmt.Sprintf("Collection holds %d documents", n)))
		return false, nil
	default:
		pterm.Warning.Printfln("Unknown command %s, type :help for usage", fields[0])
		return false, nil
	}
}

// setK 更新语义查询返回条数，非法参数保留旧值
func (r *REPL) setK(args []string) {
	if len(args) != 1 {
		pterm.Warning.Printfln("Usage: :k <n>, keeping k=%d", r.facade.K)
		return
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n <= 0 {
		pterm.Warning.Printfln("Invalid value %q, keeping k=%d", args[0], r.facade.K)
		return
	}
	r.facade.K = n
	pterm.Printfln("Result count set to %d", n)
}

// parsePortThreshold :ports 的参数解析，解析失败回落兜底阈值
func (r *REPL) parsePortThreshold(args []string) int {
	if len(args) != 1 {
		return r.portThreshold
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return r.portThreshold
	}
	return n
}

func printHelp() {
	pterm.DefaultBox.WithTitle("Interactive query").Println(strings.Join([]string{
		"<text>      semantic search for free text",
		":k <n>      set result count for semantic search",
		":all        list all active hosts",
		":ports <n>  hosts with more than n open ports (default 3)",
		":count      number of documents in the collection",
		":help       show this help",
		":quit       exit (:q, :exit)",
	}, "\n"))
}
