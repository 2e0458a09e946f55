package main

import (
	"fmt"
	"os"

	"github.com/rook-sec/padoracle/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "padoracle:", err)
		os.Exit(1)
	}
}
