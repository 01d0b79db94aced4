// Command example runs the unchained example application.
//
//	go run ./example serve --env development --config example/config.yaml
//	go run ./example routes
//	go run ./example shell
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
