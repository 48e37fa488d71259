// Package cli implements the keygen, proxykeygen, proxysign and proxyverify commands.
package cli

import (
	"crypto/rand"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-errors/errors"
	"github.com/privacybydesign/proxysig"
	"github.com/sirupsen/logrus"
)

// Exit codes
const (
	ExitOK      = 0
	ExitFailure = 1
	ExitUsage   = 2
)

var ErrUsage = errors.New("invalid usage")

// Command is one of the command line tools. Its flags are -d (debug output),
// -config (YAML configuration file) and -out (output directory), plus any a
// specific command adds.
type Command struct {
	Name      string
	ArgsUsage string

	// Config, Args, Debug and Bundle are available to run after parsing.
	Config Config
	Args   []string
	Debug  bool
	Bundle bool

	Stdout io.Writer
	Stderr io.Writer
	Random io.Reader
	Logger *logrus.Logger

	flags      *flag.FlagSet
	configPath string
	outDir     string
	nargs      func(c *Command) int
	run        func(c *Command) error
}

func newCommand(name, argsUsage string, nargs func(c *Command) int, run func(c *Command) error) *Command {
	c := &Command{
		Name:      name,
		ArgsUsage: argsUsage,
		Stdout:    os.Stdout,
		Stderr:    os.Stderr,
		Random:    rand.Reader,
		Logger:    proxysig.Logger,
		nargs:     nargs,
		run:       run,
	}
	c.flags = flag.NewFlagSet(name, flag.ContinueOnError)
	c.flags.BoolVar(&c.Debug, "d", false, "print intermediate values")
	c.flags.StringVar(&c.configPath, "config", "", "YAML configuration file (default "+DefaultConfigFile+" if present)")
	c.flags.StringVar(&c.outDir, "out", "", "directory for output files")
	c.flags.Usage = c.usage
	return c
}

func fixedArgs(n int) func(*Command) int {
	return func(*Command) int { return n }
}

func (c *Command) usage() {
	fmt.Fprintf(c.Stderr, "Usage: %s %s\n", c.Name, c.ArgsUsage)
	c.flags.SetOutput(c.Stderr)
	c.flags.PrintDefaults()
}

// Parse parses the flags and positional arguments. Failures wrap ErrUsage.
func (c *Command) Parse(args []string) error {
	c.flags.SetOutput(io.Discard)
	if err := c.flags.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return err
		}
		return errors.Errorf("%w: %w", ErrUsage, err)
	}
	c.Args = c.flags.Args()
	if want := c.nargs(c); len(c.Args) != want {
		return errors.Errorf("%w: expected %d arguments, got %d", ErrUsage, want, len(c.Args))
	}
	return nil
}

// Execute runs the command with the given arguments and returns its exit code.
func (c *Command) Execute(args []string) int {
	if err := c.Parse(args); err != nil {
		if err == flag.ErrHelp {
			c.usage()
			return ExitOK
		}
		fmt.Fprintln(c.Stderr, strings.TrimPrefix(err.Error(), ErrUsage.Error()+": "))
		c.usage()
		return ExitUsage
	}

	c.Logger.SetOutput(c.Stderr)
	if c.Debug {
		c.Logger.SetLevel(logrus.DebugLevel)
	} else {
		c.Logger.SetLevel(logrus.InfoLevel)
	}

	cfg, err := LoadFromPath(c.configPath)
	if err != nil {
		c.fail(err)
		return ExitFailure
	}
	if c.outDir != "" {
		cfg.OutDir = c.outDir
	}
	c.Config = cfg

	if err = c.run(c); err != nil {
		c.fail(err)
		return ExitFailure
	}
	return ExitOK
}

func (c *Command) fail(err error) {
	c.Logger.Error(err)
	if e, ok := err.(*errors.Error); ok && c.Debug {
		fmt.Fprint(c.Stderr, e.ErrorStack())
	}
}

// Printf writes a result line to standard output.
func (c *Command) Printf(format string, a ...interface{}) {
	fmt.Fprintf(c.Stdout, format+"\n", a...)
}

func KeygenCommand() *Command {
	return newCommand("keygen", "[-d]", fixedArgs(0), Keygen)
}

func ProxyKeygenCommand() *Command {
	return newCommand("proxykeygen", "[-d] privateKey publicKey", fixedArgs(2), ProxyKeygen)
}

func ProxySignCommand() *Command {
	c := newCommand("proxysign", "[-d] [-bundle] proxyKey publicKey fileToSign", fixedArgs(3), ProxySign)
	c.flags.BoolVar(&c.Bundle, "bundle", false, "also write a signed document bundle")
	return c
}

func ProxyVerifyCommand() *Command {
	nargs := func(c *Command) int {
		if c.Bundle {
			return 2
		}
		return 3
	}
	c := newCommand("proxyverify", "[-d] publicKey signatureFile signedFile | [-d] -bundle bundleFile signedFile", nargs, ProxyVerify)
	c.flags.BoolVar(&c.Bundle, "bundle", false, "verify against a signed document bundle")
	return c
}
