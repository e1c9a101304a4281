package main

import (
	"os"

	"github.com/leftmike/sqlcoerce/cmd"
)

func main() {
	if cmd.Execute() != nil {
		os.Exit(1)
	}
}
