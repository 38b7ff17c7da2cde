/*
 * @author: Sun977
 * @date: 2026.08.12
 * @description: Cobra Root Command 定义
 */

package main

import (
	"fmt"
	"io"
	"os"

	"neovector/cmd/neovector/convert"
	"neovector/internal/config"
	"neovector/internal/pkg/logger"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string

	// fileConfig 配置文件内容，加载失败时为 nil (flag 和默认值兜底)
	fileConfig *config.Config
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "neovector",
	Short: "neovector 扫描结果归一化与向量检索工具",
	Long: `neovector 把各类安全工具的文本输出归一化为统一的 JSON 记录流,
并可选地载入向量库做语义检索和元数据过滤检索.

示例:
  1.转换 nmap 文本输出
	neovector convert nmap scan.txt records.json --pretty
  2.载入向量库
	neovector ingest records.json security_scans --host localhost --port 8000
  3.查询 (demo 模式)
	neovector query security_scans
  4.交互式查询
	neovector query -i security_scans
`,
	// PersistentPreRun: 全局初始化逻辑，确保所有子命令都能使用日志
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		initCLILogger()
	},
}

func Execute() {
	// 全局 Panic Recovery
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "\n[FATAL] neovector crashed unexpectedly: %v\n", r)
			os.Exit(1)
		}
	}()

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	// 全局 Flag
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "配置文件路径 (默认: ./configs/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "日志级别 (debug, info, warn, error)")

	// 绑定 Viper
	viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))

	// 注册子命令
	rootCmd.AddCommand(convert.NewConvertCmd())
	rootCmd.AddCommand(newIngestCmd())
	rootCmd.AddCommand(newQueryCmd())
}

// initConfig 读取配置文件和环境变量
func initConfig() {
	// 先加载 .env，让后续的环境变量读取生效
	_ = config.InitGlobalEnvLoader()

	if cfgFile == "" {
		cfgFile = config.EnvString("NEOVECTOR_CONFIG_PATH", "")
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath("configs")
		viper.AddConfigPath(".")
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.AutomaticEnv() // 读取环境变量

	if err := viper.ReadInConfig(); err == nil {
		// fmt.Println("Using config file:", viper.ConfigFileUsed())
	}

	// 加载结构化配置，供 ingest/query 补充未显式指定的参数
	if cfg, err := config.LoadConfig(cfgFile); err == nil {
		fileConfig = cfg
	} else {
		pterm.Warning.Printfln("Config load failed, falling back to defaults: %v", err)
	}
}

// initCLILogger 初始化 CLI 模式下的日志
// 转换结果走标准输出，日志一律走标准错误，默认只输出 warn 以上
func initCLILogger() {
	// 级别来源：--log-level 标志 > 配置文件 log.level > 默认 warn
	level := "warn"
	if v := viper.GetString("log.level"); v != "" {
		level = v
	}

	// 配置 pterm
	switch level {
	case "debug":
		pterm.EnableDebugMessages()
	case "info":
		pterm.DisableDebugMessages()
	case "warn", "error", "fatal":
		pterm.DisableDebugMessages()
		// 只留告警和错误，过程性输出静音
		pterm.Info = *pterm.Info.WithWriter(io.Discard)
	}

	logConfig := &config.LogConfig{
		Level:  level,
		Format: "text",
		Output: "stderr",
		Caller: false,
	}

	// 初始化日志
	if _, err := logger.InitLogger(logConfig); err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
	}
}
