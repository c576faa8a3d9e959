package main

import (
	"context"
	"fmt"
	"os"

	"github.com/dmitrijs2005/containerhub/internal/adminctl"
)

func main() {
	cmd := adminctl.NewRootCommand(context.Background(), os.Stdin, os.Stdout)
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
