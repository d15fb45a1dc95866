package cmd

import (
	"github.com/spf13/cobra"

	"github.com/LENAX/function-engine/pkg/cli/output"
)

// Version 编译期注入的版本号
var Version = "0.3.0"

// versionCmd 版本命令
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "显示版本信息",
	Run: func(cmd *cobra.Command, args []string) {
		output.PrintBanner(Version)
	},
}
