package main

import (
	"context"
	"os"

	"neovector/internal/config"
	"neovector/internal/core/options"
	"neovector/internal/pkg/logger"
	"neovector/internal/query"
	"neovector/internal/store"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newQueryCmd() *cobra.Command {
	opts := options.NewQueryOptions()

	cmd := &cobra.Command{
		Use:   "query [collection]",
		Short: "查询向量库中的扫描记录",
		Long: `对向量库发起语义查询和元数据过滤查询。
默认跑一组固定的示例查询 (demo 模式)，-i 进入交互式查询循环。`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				opts.Collection = args[0]
			}
			applyQueryFileConfig(opts, cmd, len(args) > 0)
			if err := opts.Validate(); err != nil {
				return err
			}
			return runQuery(cmd.Context(), opts)
		},
	}

	flags := cmd.Flags()
	flags.BoolVarP(&opts.Interactive, "interactive", "i", false, "交互式查询")
	flags.StringVar(&opts.Host, "host", opts.Host, "向量库主机")
	flags.IntVar(&opts.Port, "port", opts.Port, "向量库端口")
	flags.StringVar(&opts.AuthToken, "token", "", "Bearer 认证令牌")
	flags.StringVar(&opts.StoreMode, "store-mode", opts.StoreMode, "存储模式 (local/remote)")
	flags.IntVar(&opts.K, "k", opts.K, "语义查询返回条数")

	return cmd
}

// applyQueryFileConfig 用配置文件值补充未显式指定的参数
// 优先级：命令行参数 > 配置文件 > 内置默认值
func applyQueryFileConfig(opts *options.QueryOptions, cmd *cobra.Command, collectionFromArg bool) {
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
		if !flags.Changed("store-mode") && s.Mode != "" {
			opts.StoreMode = string(s.Mode)
		}
		if !collectionFromArg && s.Collection != "" {
			opts.Collection = s.Collection
		}
	}
	if q := fileConfig.Query; q != nil {
		if !flags.Changed("k") && q.K > 0 {
			opts.K = q.K
		}
	}
}

func runQuery(ctx context.Context, opts *options.QueryOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}

	s, err := store.Open(ctx, opts.StoreConfig())
	if err != nil {
		return err
	}

	facade := query.NewFacade(s)
	facade.K = opts.K

	if !opts.Interactive {
		return facade.Demo(ctx)
	}

	// 交互模式下监听配置文件，支持运行期调日志级别
	if watcher := startConfigWatcher(); watcher != nil {
		defer watcher.Stop()
	}

	repl := query.NewREPL(facade, os.Stdin)
	if fileConfig != nil && fileConfig.Query != nil {
		repl.WithPortThreshold(fileConfig.Query.PortThreshold)
	}
	return repl.Run(ctx)
}

// startConfigWatcher 找不到配置文件或监听失败都不阻塞查询
func startConfigWatcher() *config.ConfigWatcher {
	configFile := viper.ConfigFileUsed()
	if configFile == "" {
		return nil
	}

	watcher, err := config.WatchConfig(configFile, func(oldCfg, newCfg *config.Config) error {
		if err := config.ValidateConfigChange(oldCfg, newCfg); err != nil {
			return err
		}
		if err := config.DefaultConfigChangeCallback(oldCfg, newCfg); err != nil {
			return err
		}
		if logger.LoggerInstance != nil {
			return logger.LoggerInstance.UpdateConfig(newCfg.Log)
		}
		return nil
	})
	if err != nil {
		pterm.Warning.Printfln("Config watcher disabled: %v", err)
		return nil
	}
	return watcher
}
