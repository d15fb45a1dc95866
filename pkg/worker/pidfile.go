package worker

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// WritePIDFile 启动时写入进程身份记录
func WritePIDFile(path string) error {
	pid := os.Getpid()
	if err := os.WriteFile(path, []byte(strconv.Itoa(pid)), 0o644); err != nil {
		return fmt.Errorf("write pid file failed: %w", err)
	}
	return nil
}

// RemovePIDFile 退出前移除进程身份记录
func RemovePIDFile(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove pid file failed: %w", err)
	}
	return nil
}

// ReadPIDFile 读取进程身份记录
func ReadPIDFile(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("invalid pid file content: %w", err)
	}
	return pid, nil
}
