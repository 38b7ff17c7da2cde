package convert

import (
	"neovector/internal/core/normalizer"
	"neovector/internal/core/options"

	"github.com/spf13/cobra"
)

func newNmapCmd() *cobra.Command {
	opts := options.NewConvertOptions(normalizer.FormatNmap)

	cmd := &cobra.Command{
		Use:   "nmap <input> [output]",
		Short: "转换 nmap 普通文本输出",
		Long:  `转换 nmap 的普通文本输出 (-oN)，每台主机一条 port_service 记录。`,
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
