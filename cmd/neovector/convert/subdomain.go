package convert

import (
	"neovector/internal/core/normalizer"
	"neovector/internal/core/options"

	"github.com/spf13/cobra"
)

func newSubdomainCmd() *cobra.Command {
	opts := options.NewConvertOptions(normalizer.FormatSubdomain)

	cmd := &cobra.Command{
		Use:   "subdomain <input> [output]",
		Short: "转换子域名枚举输出",
		Long:  `转换子域名枚举工具的输出，每行一个主机名，产出 host 记录。`,
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
