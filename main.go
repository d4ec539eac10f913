package main

import (
	"os"

	"github.com/pdfquiz/pdfquiz/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
