package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Load 加载配置文件
// 文件不存在时返回默认配置，解析失败或校验失败时返回错误
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("read config file failed: %w", err)
	}

	// 从默认值起步，文件中出现的字段覆盖默认值
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config file failed: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}
