package output

import (
	"fmt"

	"github.com/fatih/color"
)

// PrintBanner 打印启动横幅
func PrintBanner(version string) {
	title := color.New(color.FgCyan, color.Bold)
	dim := color.New(color.FgHiBlack)

	title.Println("Function Engine")
	fmt.Printf("版本: %s\n", color.GreenString(version))
	dim.Println("存储即函数 · 嵌入式与Sidecar双执行后端")
}

// PrintError 打印错误信息
func PrintError(format string, args ...any) {
	color.New(color.FgRed).PrintfFunc()("✗ "+format+"\n", args...)
}

// PrintSuccess 打印成功信息
func PrintSuccess(format string, args ...any) {
	color.New(color.FgGreen).PrintfFunc()("✓ "+format+"\n", args...)
}
