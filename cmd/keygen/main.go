// Command keygen generates domain parameters and a delegator key pair.
package main

import (
	"os"

	"github.com/privacybydesign/proxysig/internal/cli"
)

func main() {
	os.Exit(cli.KeygenCommand().Execute(os.Args[1:]))
}
