//go:build !unix

package cmd

import "os"

var terminationSignals = []os.Signal{os.Interrupt}
