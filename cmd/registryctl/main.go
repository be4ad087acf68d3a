package main

import (
	"context"
	"fmt"
	"os"

	"diskregistry/internal/registryctl"
)

func main() {
	if err := registryctl.NewRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
