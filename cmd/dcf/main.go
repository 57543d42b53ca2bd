package main

import (
	"os"

	"dcf_valuation/cmd/dcf/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
