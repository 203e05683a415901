package main

import (
	"github.com/spf13/cobra"
)

func main() {
	var root = &cobra.Command{Use: "regfaq"}

	root.AddCommand(serveCMD(), ingestCMD())
	_ = root.Execute()
}
