package main

import (
	"context"
	"fmt"
	"os"

	"neovector/internal/core/model"
	"neovector/internal/core/options"
	"neovector/internal/ingest"
	"neovector/internal/pkg/logger"
	"neovector/internal/store"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

func newIngestCmd() *cobra.Command {
	opts := options.NewIngestOptions()

	cmd := &cobra.Command{
		Use:   "ingest <json> [collection]",
		Short: "把转换后的 JSON 记录载入向量库",
		Long: `读取 convert 产出的 JSON 记录文件，构造可嵌入文档和扁平元数据，
批量写入向量库集合。连接中断立即中止，单批失败跳过继续。`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.InputPath = args[0]
			if len(args) > 1 {
				opts.Collection = args[1]
			}
			applyIngestFileConfig(opts, cmd, len(args) > 1)
			if err := opts.Validate(); err != nil {
				return err
			}
			return runIngest(cmd.Context(), opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.Host, "host", opts.Host, "向量库主机")
	flags.IntVar(&opts.Port, "port", opts.Port, "向量库端口")
	flags.StringVar(&opts.AuthToken, "token", "", "Bearer 认证令牌")
	flags.IntVar(&opts.VectorSize, "vector-size", opts.VectorSize, "向量维度")
	flags.StringVar(&opts.StoreMode, "store-mode", opts.StoreMode, "存储模式 (local/remote)")
	flags.IntVar(&opts.BatchSize, "batch-size", opts.BatchSize, "批量写入大小")

	return cmd
}

// applyIngestFileConfig 用配置文件值补充未显式指定的参数
// 优先级：命令行参数 > 配置文件 > 内置默认值
func applyIngestFileConfig(opts *options.IngestOptions, cmd *cobra.Command, collectionFromArg bool) {
	if fileConfig == nil {
		return
	}

	flags := cmd.Flags()
	if s := fileConfig.Store; s != nil {
		if !flags.Changed("host") && s.Host != "" {
			opts.Host = s.Host
		}
		if !flags.Changed("port") && s.Port > 0 {
			opts.Port = s.Port
		}
		if !flags.Changed("token") && s.AuthToken != "" {
			opts.AuthToken = s.AuthToken
		}
		if !flags.Changed("vector-size") && s.VectorSize > 0 {
			opts.VectorSize = s.VectorSize
		}
		if !flags.Changed("store-mode") && s.Mode != "" {
			opts.StoreMode = string(s.Mode)
		}
		if !collectionFromArg && s.Collection != "" {
			opts.Collection = s.Collection
		}
	}
	if i := fileConfig.Ingest; i != nil {
		if !flags.Changed("batch-size") && i.BatchSize > 0 {
			opts.BatchSize = i.BatchSize
		}
	}
}

func runIngest(ctx context.Context, opts *options.IngestOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}

	data, err := os.ReadFile(opts.InputPath)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	records, err := model.UnmarshalRecords(data)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		pterm.Warning.Println("Input holds no records, nothing to ingest")
		return nil
	}

	s, err := store.Open(ctx, opts.StoreConfig())
	if err != nil {
		return err
	}

	summary, err := ingest.NewAdapter(s).WithBatchSize(opts.BatchSize).Ingest(ctx, records)
	if summary != nil {
		logger.LogIngest(opts.Collection, summary.Uploaded, summary.Failed, summary.Batches)
	}
	if err != nil {
		return err
	}

	pterm.Success.Printfln("Ingested %d of %d records into %q (%d batches, %d failed)",
		summary.Uploaded, summary.Prepared, opts.Collection, summary.Batches, summary.Failed)
	return nil
}
