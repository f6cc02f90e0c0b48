// Command sh is a from-scratch POSIX shell interpreter.
package main

import (
	"os"

	"github.com/opensh/sh/cmd/sh/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
