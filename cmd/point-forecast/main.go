package main

import (
	"os"

	"github.com/i474232898/point-forecast/internal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
