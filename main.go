package main

import (
	"os"

	"marker-migrate/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
