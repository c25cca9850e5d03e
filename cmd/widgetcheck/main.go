// Command widgetcheck runs the practice automation browser suites outside of
// go test.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
