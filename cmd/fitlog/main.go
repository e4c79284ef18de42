// ABOUTME: Entry point for fitlog CLI.
// ABOUTME: Invokes the root Cobra command.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Execute runs the root command and releases the store on every exit path.
func Execute() error {
	defer closeStore()
	return rootCmd.Execute()
}
