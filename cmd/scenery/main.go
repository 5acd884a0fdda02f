// Copyright 2023 Gustavo C. Viegas. All rights reserved.

// Command scenery loads a scene description and runs it
// through the simulation/render loop.
package main

import (
	"fmt"
	"os"

	"github.com/gviegas/scenery/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "scenery:", err)
		os.Exit(1)
	}
}
