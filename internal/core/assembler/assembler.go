/**
 * 记录装配器
 * @author: Sun977
 * @date: 2026.08.12
 * @description: 按单元顺序消费解析结果，分配连续递增 ID 并附加溯源字段。
 *               ID 是累加器在装配过程中显式传递的，不依赖任何进程级计数器，
 *               相同输入和解析器下结果可精确复现。
 */
package assembler

import (
	"fmt"

	"neovector/internal/core/model"
	"neovector/internal/core/normalizer"
	"neovector/internal/core/parser"
)

// 摘要里保留的跳过原因上限，避免脏输入刷屏
const maxSkipReasons = 10

// Summary 一次装配的统计，跳过计数始终对外呈现
type Summary struct {
	TotalUnits  int      // 归一化单元总数
	Records     int      // 产出记录数
	Skipped     int      // 解析失败被跳过的单元数
	SkipReasons []string // 前若干条跳过原因 (含行号)
}

// Run 驱动一次完整装配
// tool 固定为本次运行的 source_tool；origin 是扫描目标标识，可为空
func Run(units []normalizer.Unit, p parser.Parser, origin string) ([]model.Record, *Summary, error) {
	summary := &Summary{TotalUnits: len(units)}
	records := make([]model.Record, 0, len(units))

	nextID := 1
	for _, unit := range units {
		parsed, err := p.Parse(unit)
		if err != nil {
			// 单元级失败可恢复：计数后继续，ID 不留空洞
			summary.Skipped++
			if len(summary.SkipReasons) < maxSkipReasons {
				summary.SkipReasons = append(summary.SkipReasons, err.Error())
			}
			continue
		}

		for _, rec := range parsed {
			meta := rec.Header()
			meta.ID = nextID
			meta.RecordType = rec.Type()
			meta.SourceTool = p.Tool()
			meta.InputOrigin = origin
			nextID++
			records = append(records, rec)
		}
	}

	summary.Records = len(records)
	// 空输入 (0 个单元) 与全部解析失败同罪：零记录一律报错
	if len(records) == 0 {
		return nil, summary, fmt.Errorf("%d units yielded nothing (wrong format selected?): %w",
			len(units), model.ErrNoRecordsParsed)
	}
	return records, summary, nil
}
