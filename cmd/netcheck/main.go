package main

import (
	"os"

	"github.com/hamed0406/netcheck/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
