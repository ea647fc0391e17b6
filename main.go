package main

import (
	"context"
	"os"

	"github.com/yiyuanh/tscaffold/cmd"
)

func main() {
	os.Exit(run())
}

func run() (code int) {
	defer cmd.RecoverExit(&code, os.Stderr)

	stop := cmd.ExitOnSignal(os.Stderr)
	defer stop()

	return cmd.ExitCode(cmd.Execute(context.Background()), os.Stderr)
}
