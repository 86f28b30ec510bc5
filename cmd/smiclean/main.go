package main

import (
	"os"

	"github.com/chemforge/smiclean/internal/interfaces/cli"
)

func main() {
	os.Exit(cli.Execute())
}
