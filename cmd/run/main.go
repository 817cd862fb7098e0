package main

import (
	"fmt"
	"os"
)

// makefile runner
func main() {
	bindVar()
	if err := runProfiled(cfg.pprofmode, execute); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
