// Package main is the entry point for the schedeck application
package main

import (
	"github.com/ethpandaops/schedeck/cmd"
)

func main() {
	cmd.Execute()
}
