package convert

import (
	"context"
	"fmt"
	"os"

	"neovector/internal/core/assembler"
	"neovector/internal/core/normalizer"
	"neovector/internal/core/options"
	"neovector/internal/core/parser"
	"neovector/internal/core/reporter"
	"neovector/internal/core/serializer"
	"neovector/internal/pkg/logger"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var globalOutputOptions options.OutputOptions

// NewConvertCmd 创建 convert 父命令
func NewConvertCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "convert",
		Short: "转换扫描工具文本输出为统一 JSON 记录",
		Long: `把各类安全工具的文本输出归一化为带稳定 ID 的 JSON 记录流。
请使用具体的子命令指定输入格式。`,
	}

	// 定义持久化 Flags (所有子命令都可用)
	pFlags := cmd.PersistentFlags()
	pFlags.BoolVar(&globalOutputOptions.Pretty, "pretty", false, "JSON 缩进输出")
	pFlags.BoolVar(&globalOutputOptions.Table, "table", false, "控制台表格预览")
	pFlags.StringVar(&globalOutputOptions.OutputCsv, "outputCsv", "", "指定保存csv文件路径[以.csv结尾] (alias: --oc)")

	// 注册别名 (Hidden flags) 方便用户使用简短命令
	pFlags.StringVar(&globalOutputOptions.OutputCsv, "oc", "", "outputCsv 简写")
	pFlags.Lookup("oc").Hidden = true

	// 注册子命令
	cmd.AddCommand(newSubdomainCmd())
	cmd.AddCommand(newNmapCmd())
	cmd.AddCommand(newSSLScanCmd())
	cmd.AddCommand(newNucleiCmd())

	return cmd
}

// runConvert 所有格式共用的转换流程
func runConvert(opts *options.ConvertOptions) error {
	if err := opts.Validate(); err != nil {
		return err
	}

	// 注入全局输出参数 (位置参数在子命令里已填)
	opts.Output.Pretty = globalOutputOptions.Pretty
	opts.Output.Table = globalOutputOptions.Table
	opts.Output.OutputCsv = globalOutputOptions.OutputCsv

	f, err := os.Open(opts.InputPath)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer f.Close()

	units, err := normalizer.Normalize(f, opts.Format)
	if err != nil {
		return err
	}

	p, err := parser.ForFormat(opts.Format)
	if err != nil {
		return err
	}

	records, summary, err := assembler.Run(units, p, opts.EffectiveOrigin())
	if err != nil {
		return err
	}

	// JSON 输出：有路径写文件，否则写标准输出
	if opts.Output.OutputPath != "" {
		if err := serializer.WriteFile(opts.Output.OutputPath, records, opts.Output.Pretty); err != nil {
			return err
		}
		pterm.Success.Printfln("Wrote %d records to %s", len(records), opts.Output.OutputPath)
	} else {
		if err := serializer.Write(os.Stdout, records, opts.Output.Pretty); err != nil {
			return err
		}
	}

	// 控制台表格与 CSV 导出走统一的 Reporter 出口
	var reporters []reporter.Reporter
	if opts.Output.Table {
		reporters = append(reporters, reporter.NewConsoleReporter())
	}
	if opts.Output.OutputCsv != "" {
		reporters = append(reporters, reporter.NewCsvReporter(opts.Output.OutputCsv))
	}
	if len(reporters) > 0 {
		if err := reporter.NewMultiReporter(reporters...).Report(context.Background(), records); err != nil {
			return err
		}
	}

	// 跳过情况提示
	if summary.Skipped > 0 {
		pterm.Warning.Printfln("Skipped %d of %d units", summary.Skipped, summary.TotalUnits)
		for _, reason := range summary.SkipReasons {
			pterm.Warning.Printfln("  %s", reason)
		}
	}

	logger.LogConvert(p.Tool(), summary.TotalUnits, summary.Records, summary.Skipped)
	return nil
}
