/**
 * 行/块归一化器
 * @author: Sun977
 * @date: 2026.08.12
 * @description: 将原始工具输出切分为干净的原子单元 (行或块)，供格式解析器消费。
 *               纯转换，无副作用；同一输入重复调用产出相同的单元序列。
 */
package normalizer

import (
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strings"
	"unicode/utf8"

	"neovector/internal/core/model"
)

// Format 输入格式标签，由调用方显式指定，不做自动探测
type Format string

const (
	FormatSubdomain Format = "subdomain" // 每行一个主机名的列表
	FormatNmap      Format = "nmap"      // nmap 普通文本输出，按主机分块
	FormatSSLScan   Format = "sslscan"   // sslscan 文本输出，按目标分块
	FormatNuclei    Format = "nuclei"    // nuclei 控制台输出，每行一个条目
)

// Unit 一个归一化后的原子单元
// 行格式下 Lines 只有一个元素；块格式下是一个逻辑记录的全部非空行
type Unit struct {
	Index int      // 1 起始的单元序号
	Line  int      // 单元首行在原始文件中的 1 起始行号
	Lines []string // 归一化后的行内容
}

var (
	// ANSI 转义序列 (nuclei 彩色输出残留)
	ansiRegexp = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

	// nmap 主机块边界：报告头或裸 IP 行
	nmapHostRegexp = regexp.MustCompile(`^(Nmap scan report for\s+\S|\d+\.\d+\.\d+\.\d+)`)

	// sslscan 目标块边界
	sslscanTargetRegexp = regexp.MustCompile(`^Testing SSL server\s+\S+`)

	// sslscan 在目标块头之前打印的连接行，归一化时并入下一个目标块
	sslscanConnectedRegexp = regexp.MustCompile(`^Connected to\s+\S+`)
)

// Normalize 读取原始文本并产出指定格式下的单元序列
// 输入无法按 UTF-8 解码时返回 ErrInputDecode，不产出任何单元
func Normalize(r io.Reader, format Format) ([]Unit, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}

	// 容忍 BOM
	raw = bytes.TrimPrefix(raw, []byte{0xEF, 0xBB, 0xBF})
	if !utf8.Valid(raw) {
		return nil, model.ErrInputDecode
	}

	lines := strings.Split(string(raw), "\n")

	switch format {
	case FormatSubdomain, FormatNuclei:
		return splitLines(lines, format), nil
	case FormatNmap:
		return splitBlocks(lines, nmapHostRegexp), nil
	case FormatSSLScan:
		return splitSSLScanBlocks(lines), nil
	default:
		return nil, fmt.Errorf("unsupported input format: %s", format)
	}
}

// splitLines 行格式：一行一个单元，丢弃空行、注释行和装饰行
func splitLines(lines []string, format Format) []Unit {
	var units []Unit
	for i, line := range lines {
		cleaned := cleanLine(line)
		if cleaned == "" || isBannerLine(cleaned) {
			continue
		}
		if format == FormatSubdomain && strings.HasPrefix(cleaned, "#") {
			continue
		}
		units = append(units, Unit{
			Index: len(units) + 1,
			Line:  i + 1,
			Lines: []string{cleaned},
		})
	}
	return units
}

// splitBlocks 块格式：在边界行开启新单元，其余非空行归入当前单元
// 首个边界之前的前导行 (扫描 banner、进度信息) 构成一个独立的前导单元，
// 解析器按装饰内容处理，不产出记录
func splitBlocks(lines []string, boundary *regexp.Regexp) []Unit {
	var units []Unit
	var current *Unit

	for i, line := range lines {
		cleaned := cleanLine(line)
		if cleaned == "" || isBannerLine(cleaned) {
			continue
		}

		if boundary.MatchString(cleaned) || current == nil {
			units = append(units, Unit{
				Index: len(units) + 1,
				Line:  i + 1,
			})
			current = &units[len(units)-1]
		}
		current.Lines = append(current.Lines, cleaned)
	}
	return units
}

// splitSSLScanBlocks sslscan 专用分块：`Testing SSL server` 行开启新单元
// sslscan 先打印 `Connected to <ip>` 再打印目标头，连接行因此暂存，
// 在下一个目标单元里紧跟目标头之后落位，保持目标头始终是单元首行
func splitSSLScanBlocks(lines []string) []Unit {
	var units []Unit
	var current *Unit
	var pending string // 等待归属的 Connected 行

	for i, line := range lines {
		cleaned := cleanLine(line)
		if cleaned == "" || isBannerLine(cleaned) {
			continue
		}

		if sslscanConnectedRegexp.MatchString(cleaned) {
			pending = cleaned
			current = nil
			continue
		}

		if sslscanTargetRegexp.MatchString(cleaned) || current == nil {
			units = append(units, Unit{
				Index: len(units) + 1,
				Line:  i + 1,
			})
			current = &units[len(units)-1]
		}
		current.Lines = append(current.Lines, cleaned)
		if pending != "" {
			current.Lines = append(current.Lines, pending)
			pending = ""
		}
	}

	// 文件末尾悬空的连接行没有归属目标，单独成块由解析器按装饰丢弃
	if pending != "" {
		units = append(units, Unit{
			Index: len(units) + 1,
			Line:  len(lines),
			Lines: []string{pending},
		})
	}
	return units
}

// cleanLine 去除 ANSI 噪声和首尾空白
func cleanLine(line string) string {
	line = ansiRegexp.ReplaceAllString(line, "")
	return strings.TrimSpace(line)
}

// isBannerLine 纯边框/分隔线 (表格边框、`====` 分隔等)
// 以 `|` 开头的续行是块成员，不在此列
func isBannerLine(line string) bool {
	if len(line) < 3 {
		return false
	}
	for _, r := range line {
		switch {
		case strings.ContainsRune("-=~_*+", r):
		case r >= 0x2500 && r <= 0x257F: // box-drawing
		default:
			return false
		}
	}
	return true
}
