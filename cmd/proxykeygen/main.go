// Command proxykeygen issues a proxy key from a delegator key pair.
package main

import (
	"os"

	"github.com/privacybydesign/proxysig/internal/cli"
)

func main() {
	os.Exit(cli.ProxyKeygenCommand().Execute(os.Args[1:]))
}
