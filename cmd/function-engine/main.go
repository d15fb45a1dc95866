package main

import (
	"github.com/LENAX/function-engine/pkg/cli/cmd"
)

func main() {
	cmd.Execute()
}
