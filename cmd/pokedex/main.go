package main

import (
	"context"
	"fmt"
	"os"

	"github.com/Sternrassler/pokedex-client/internal/cli"
)

var version = "0.1.0"

func main() {
	if err := cli.NewRootCmd(version).ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
