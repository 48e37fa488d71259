// Command proxysign signs a file on behalf of a delegator, using a proxy key.
package main

import (
	"os"

	"github.com/privacybydesign/proxysig/internal/cli"
)

func main() {
	os.Exit(cli.ProxySignCommand().Execute(os.Args[1:]))
}
