package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-errors/errors"
	"github.com/privacybydesign/proxysig"
	"github.com/privacybydesign/proxysig/internal/common"
	"github.com/privacybydesign/proxysig/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testRun struct {
	code           int
	stdout, stderr string
}

func execute(t *testing.T, c *Command, seed byte, args ...string) testRun {
	t.Helper()
	var stdout, stderr bytes.Buffer
	c.Stdout, c.Stderr = &stdout, &stderr
	c.Random = testutil.NewCPRNG(seed)
	code := c.Execute(args)
	return testRun{code: code, stdout: stdout.String(), stderr: stderr.String()}
}

func TestUsageErrors(t *testing.T) {
	assert.Equal(t, ExitUsage, execute(t, KeygenCommand(), 1, "extra").code)
	assert.Equal(t, ExitUsage, execute(t, KeygenCommand(), 1, "-unknown").code)
	assert.Equal(t, ExitUsage, execute(t, ProxyKeygenCommand(), 1, "private.key").code)
	assert.Equal(t, ExitUsage, execute(t, ProxySignCommand(), 1, "a", "b").code)
	assert.Equal(t, ExitUsage, execute(t, ProxyVerifyCommand(), 1, "a", "b").code)
	assert.Equal(t, ExitUsage, execute(t, ProxyVerifyCommand(), 1, "-bundle", "a", "b", "c").code)

	run := execute(t, ProxySignCommand(), 1, "-d")
	assert.Equal(t, ExitUsage, run.code)
	assert.Contains(t, run.stderr, "Usage: proxysign [-d] [-bundle] proxyKey publicKey fileToSign")

	assert.Equal(t, ExitOK, execute(t, KeygenCommand(), 1, "-h").code)
}

func TestParse(t *testing.T) {
	c := ProxyVerifyCommand()
	require.NoError(t, c.Parse([]string{"-d", "-bundle", "message.bundle", "message.txt"}))
	assert.True(t, c.Debug)
	assert.True(t, c.Bundle)
	assert.Equal(t, []string{"message.bundle", "message.txt"}, c.Args)

	err := ProxyKeygenCommand().Parse([]string{"only-one"})
	assert.True(t, errors.Is(err, ErrUsage))
}

func TestEndToEnd(t *testing.T) {
	t.Setenv("PROXYSIG_BITS", "12")
	dir := t.TempDir()
	path := func(name string) string { return filepath.Join(dir, name) }

	run := execute(t, KeygenCommand(), 1, "-out", dir)
	require.Equal(t, ExitOK, run.code, run.stderr)
	assert.Contains(t, run.stdout, path("public.key"))
	testutil.AssertFilePerm(t, path("private.key"), 0600)

	run = execute(t, ProxyKeygenCommand(), 2, "-out", dir, path("private.key"), path("public.key"))
	require.Equal(t, ExitOK, run.code, run.stderr)
	testutil.AssertFilePerm(t, path("proxy.key"), 0600)

	require.NoError(t, os.WriteFile(path("message.txt"), []byte("contract text"), 0644))
	run = execute(t, ProxySignCommand(), 3, "-d", "-bundle", "-out", dir, path("proxy.key"), path("public.key"), path("message.txt"))
	require.Equal(t, ExitOK, run.code, run.stderr)
	assert.FileExists(t, path("message.sign"))
	assert.FileExists(t, path("message.bundle"))
	assert.Contains(t, run.stderr, "file signed")

	run = execute(t, ProxyVerifyCommand(), 4, path("public.key"), path("message.sign"), path("message.txt"))
	require.Equal(t, ExitOK, run.code, run.stderr)
	assert.Contains(t, run.stdout, "successfully verified")

	run = execute(t, ProxyVerifyCommand(), 4, "-bundle", path("message.bundle"), path("message.txt"))
	require.Equal(t, ExitOK, run.code, run.stderr)
	assert.Contains(t, run.stdout, "successfully verified")

	// A failed verification is a result, not an error
	require.NoError(t, os.WriteFile(path("message.txt"), []byte("contract text, amended"), 0644))
	run = execute(t, ProxyVerifyCommand(), 4, path("public.key"), path("message.sign"), path("message.txt"))
	require.Equal(t, ExitOK, run.code, run.stderr)
	assert.Contains(t, run.stdout, "FAILED")

	run = execute(t, ProxyVerifyCommand(), 4, "-bundle", path("message.bundle"), path("message.txt"))
	require.Equal(t, ExitOK, run.code, run.stderr)
	assert.Contains(t, run.stdout, "FAILED")
}

func TestOperationalErrors(t *testing.T) {
	dir := t.TempDir()
	missing := filepath.Join(dir, "missing")

	run := execute(t, ProxyKeygenCommand(), 1, missing, missing)
	assert.Equal(t, ExitFailure, run.code)
	assert.Contains(t, run.stderr, "cannot read input")

	malformed := filepath.Join(dir, "public.key")
	require.NoError(t, os.WriteFile(malformed, []byte("17#2"), 0644))
	run = execute(t, ProxyVerifyCommand(), 1, malformed, missing, missing)
	assert.Equal(t, ExitFailure, run.code)
	assert.Contains(t, run.stderr, "malformed artifact")

	run = execute(t, KeygenCommand(), 1, "-config", missing)
	assert.Equal(t, ExitFailure, run.code)
}

func TestLoadFromPath(t *testing.T) {
	dir := t.TempDir()
	filename := filepath.Join(dir, "proxysig.yaml")
	require.NoError(t, os.WriteFile(filename, []byte(`
bits: 16
digest: sha3-256
outDir: out
overwrite: false
files:
  signature: document.sig
`), 0644))

	cfg, err := LoadFromPath(filename)
	require.NoError(t, err)
	assert.Equal(t, 16, cfg.Bits)
	assert.Equal(t, "sha3-256", cfg.Digest)
	assert.Equal(t, "out", cfg.OutDir)
	assert.False(t, cfg.Overwrite)
	assert.Equal(t, "document.sig", cfg.Files.Signature)
	assert.Equal(t, "public.key", cfg.Files.PublicKey)
	assert.Equal(t, filepath.Join("out", "document.sig"), cfg.Path(cfg.Files.Signature))

	t.Setenv("PROXYSIG_BITS", "24")
	t.Setenv("PROXYSIG_DIGEST", "blake2b-256")
	t.Setenv("PROXYSIG_OUT_DIR", "elsewhere")
	cfg, err = LoadFromPath(filename)
	require.NoError(t, err)
	assert.Equal(t, 24, cfg.Bits)
	assert.Equal(t, "blake2b-256", cfg.Digest)
	assert.Equal(t, "elsewhere", cfg.OutDir)
}

func TestLoadFromPathDefaults(t *testing.T) {
	cfg, err := LoadFromPath("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadFromPathInvalid(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadFromPath(filepath.Join(dir, "missing.yaml"))
	assert.True(t, errors.Is(err, common.ErrInputIO))

	broken := filepath.Join(dir, "broken.yaml")
	require.NoError(t, os.WriteFile(broken, []byte("bits: [1, 2"), 0644))
	_, err = LoadFromPath(broken)
	assert.True(t, errors.Is(err, common.ErrMalformed))

	t.Setenv("PROXYSIG_DIGEST", "md5")
	_, err = LoadFromPath("")
	assert.True(t, errors.Is(err, proxysig.ErrDigestUnavailable))

	t.Setenv("PROXYSIG_DIGEST", "")
	t.Setenv("PROXYSIG_BITS", "3")
	_, err = LoadFromPath("")
	assert.Error(t, err)

	// Unparseable values are ignored
	t.Setenv("PROXYSIG_BITS", "many")
	cfg, err := LoadFromPath("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Bits, cfg.Bits)
}
