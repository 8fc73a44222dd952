// Command scenec validates a scene file and prints its compiled component
// source.
package main

import (
	"errors"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		if !errors.Is(err, errInvalidScene) {
			os.Stderr.WriteString("scenec: " + err.Error() + "\n")
		}
		os.Exit(1)
	}
}
