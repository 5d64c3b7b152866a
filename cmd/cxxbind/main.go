package main

import (
	"os"

	"cxxbind/internal/ui/cli"
)

func main() {
	os.Exit(cli.Run(os.Args[1:]))
}
