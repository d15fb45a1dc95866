package worker

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestPIDFile_RoundTrip 测试PID记录的写入读取与移除
func TestPIDFile_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "worker.pid")

	require.NoError(t, WritePIDFile(path))

	pid, err := ReadPIDFile(path)
	require.NoError(t, err)
	assert.Equal(t, os.Getpid(), pid)

	require.NoError(t, RemovePIDFile(path))
	_, err = ReadPIDFile(path)
	assert.Error(t, err)

	// 重复移除不报错
	assert.NoError(t, RemovePIDFile(path))
}

// TestReadPIDFile_Garbage 测试非数字内容返回错误
func TestReadPIDFile_Garbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "worker.pid")
	require.NoError(t, os.WriteFile(path, []byte("not-a-pid"), 0o644))

	_, err := ReadPIDFile(path)
	assert.Error(t, err)
}
