package options

// OutputOptions 定义结果输出的通用参数
type OutputOptions struct {
	OutputPath string // 位置参数，JSON输出文件路径，空则写标准输出
	OutputCsv  string // -oc, --outputCsv
	Pretty     bool   // --pretty
	Table      bool   // --table，控制台表格预览
}
