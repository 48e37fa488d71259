// Command proxyverify verifies a proxy signature on a file.
package main

import (
	"os"

	"github.com/privacybydesign/proxysig/internal/cli"
)

func main() {
	os.Exit(cli.ProxyVerifyCommand().Execute(os.Args[1:]))
}
