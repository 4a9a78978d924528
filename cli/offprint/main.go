package main

import (
	"os"

	offprintcmder "github.com/offprinthq/offprint/cmd/offprint"
)

func main() {
	cmd := offprintcmder.NewOffprintCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
