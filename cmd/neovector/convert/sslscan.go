package convert

import (
	"neovector/internal/core/normalizer"
	"neovector/internal/core/options"

	"github.com/spf13/cobra"
)

func newSSLScanCmd() *cobra.Command {
	opts := options.NewConvertOptions(normalizer.FormatSSLScan)

	cmd := &cobra.Command{
		Use:   "sslscan <input> [output]",
		Short: "转换 sslscan 文本输出",
		Long:  `转换 sslscan 的文本输出，每个目标一条 protocol_status 记录。`,
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.InputPath = args[0]
			if len(args) > 1 {
				opts.Output.OutputPath = args[1]
			}
			return runConvert(opts)
		},
	}

	cmd.Flags().StringVar(&opts.Origin, "origin", "", "覆盖记录的 input_origin (默认: 输入文件路径)")

	return cmd
}
