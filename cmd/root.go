package main

import (
	"github.com/spf13/cobra"
)

func main() {
	var root = &cobra.Command{Use: "homeboard"}

	root.AddCommand(serveCMD(), planCMD())
	_ = root.Execute()
}
