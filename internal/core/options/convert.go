package options

import (
	"fmt"

	"neovector/internal/core/normalizer"
)

// ConvertOptions 转换指令参数
type ConvertOptions struct {
	Format    normalizer.Format
	InputPath string
	Origin    string // 覆盖记录的 input_origin，空则用输入文件路径
	Output    OutputOptions
}

func NewConvertOptions(format normalizer.Format) *ConvertOptions {
	return &ConvertOptions{
		Format: format,
	}
}

func (o *ConvertOptions) Validate() error {
	if o.InputPath == "" {
		return fmt.Errorf("input file is required")
	}

	switch o.Format {
	case normalizer.FormatSubdomain, normalizer.FormatNmap, normalizer.FormatSSLScan, normalizer.FormatNuclei:
	default:
		return fmt.Errorf("unsupported input format: %s", o.Format)
	}

	return nil
}

// EffectiveOrigin 记录要打的来源标签
func (o *ConvertOptions) EffectiveOrigin() string {
	if o.Origin != "" {
		return o.Origin
	}
	return o.InputPath
}
