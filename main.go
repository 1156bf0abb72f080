package main

import (
	"os"
	_ "time/tzdata"

	"github.com/kilianp07/svitlosync/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
