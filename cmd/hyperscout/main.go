package main

import (
	"github.com/spf13/cobra"
)

func main() {
	var root = &cobra.Command{Use: "hyperscout"}

	root.AddCommand(serveCMD(), ingestCMD(), searchCMD(), demoCMD())
	_ = root.Execute()
}
