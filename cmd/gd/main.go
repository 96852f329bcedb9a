package main

import (
	"os"

	"github.com/bnema/growth-dashboard/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
