package main

import (
	"context"
	"fmt"
	"os"

	"github.com/dmitrijs2005/containerhub/internal/client/cli"
	"github.com/spf13/afero"
)

func main() {
	cmd := cli.NewRootCommand(context.Background(), afero.NewOsFs(), os.Stdin, os.Stdout)
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
