package main

import (
	"context"
	"fmt"
	"os"

	"github.com/Jahir7946/Cat-store/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
