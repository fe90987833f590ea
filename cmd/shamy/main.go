// Command shamy deals threshold keys and drives the individual steps of a
// threshold Schnorr signing session from the shell.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
