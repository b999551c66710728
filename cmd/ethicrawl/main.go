package main

import (
	cmd "github.com/rohmanhakim/ethicrawl/internal/cli"
)

func main() {
	cmd.Execute()
}
