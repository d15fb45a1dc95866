package runtime

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// 文件系统路径匹配（Unix绝对路径与Windows盘符路径）
var pathPattern = regexp.MustCompile(`(?:[A-Za-z]:)?(?:[\\/][\w@.~\-]+){2,}[\\/]?`)

// goja栈帧中的源码行号，如 <eval>:3:7
var linePattern = regexp.MustCompile(`<eval>:(\d+):\d+`)

// 多余空白折叠
var spacePattern = regexp.MustCompile(`\s{2,}`)

// SanitizeMessage 清洗用户代码错误消息
// 去掉宿主文件系统路径与内部栈帧文本，调用方永远看不到宿主的路径布局
func SanitizeMessage(msg string) string {
	// 只保留首行，丢弃后续栈帧
	if idx := strings.IndexByte(msg, '\n'); idx >= 0 {
		msg = msg[:idx]
	}
	msg = pathPattern.ReplaceAllString(msg, "")
	msg = spacePattern.ReplaceAllString(msg, " ")
	return strings.TrimSpace(msg)
}

// ExtractLine 尽力从栈文本中提取出错的源码行号
func ExtractLine(stack string) (int, bool) {
	match := linePattern.FindStringSubmatch(stack)
	if match == nil {
		return 0, false
	}
	line, err := strconv.Atoi(match[1])
	if err != nil {
		return 0, false
	}
	return line, true
}

// FaultMessage 组装脱敏后的故障消息，能定位时附加行号
func FaultMessage(message, stack string) string {
	msg := SanitizeMessage(message)
	if msg == "" {
		msg = "code execution failed"
	}
	if line, ok := ExtractLine(stack); ok {
		msg = fmt.Sprintf("%s (line %d)", msg, line)
	}
	return msg
}
