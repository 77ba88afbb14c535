package main

import (
	"os"

	"github.com/washb22/gunghabnote/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
