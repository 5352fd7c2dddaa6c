package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/gnolang/canvasfmt/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		var exit *cmd.ExitError
		if !errors.As(err, &exit) || exit.Err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
		os.Exit(cmd.ExitCode(err))
	}
}
