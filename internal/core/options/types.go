package options

// Option 定义所有指令参数结构体必须实现的接口
type Option interface {
	// Validate 验证参数合法性
	Validate() error
}
