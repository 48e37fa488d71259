package cli

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-errors/errors"
	"github.com/privacybydesign/proxysig"
	"github.com/privacybydesign/proxysig/internal/common"
	"github.com/privacybydesign/proxysig/keys"
	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is looked up in the working directory when no -config flag is given.
const DefaultConfigFile = "proxysig.yaml"

// Config holds the settings shared by all commands.
type Config struct {
	Bits      int
	Digest    string
	OutDir    string
	Overwrite bool
	Files     FileNames
}

// FileNames are the names of the artifacts written by the commands.
type FileNames struct {
	PublicKey  string
	PrivateKey string
	ProxyKey   string
	Signature  string
	Bundle     string
}

type fileConfig struct {
	Bits      int             `yaml:"bits"`
	Digest    string          `yaml:"digest"`
	OutDir    string          `yaml:"outDir"`
	Overwrite *bool           `yaml:"overwrite"`
	Files     fileNamesConfig `yaml:"files"`
}

type fileNamesConfig struct {
	PublicKey  string `yaml:"publicKey"`
	PrivateKey string `yaml:"privateKey"`
	ProxyKey   string `yaml:"proxyKey"`
	Signature  string `yaml:"signature"`
	Bundle     string `yaml:"bundle"`
}

func DefaultConfig() Config {
	return Config{
		Bits:      keys.DefaultBits,
		Digest:    proxysig.DefaultDigest,
		OutDir:    ".",
		Overwrite: true,
		Files: FileNames{
			PublicKey:  "public.key",
			PrivateKey: "private.key",
			ProxyKey:   "proxy.key",
			Signature:  "message.sign",
			Bundle:     "message.bundle",
		},
	}
}

// LoadFromPath returns the defaults, merged with the YAML file at configPath and then
// with the environment. Without configPath, DefaultConfigFile is used if it exists.
// An explicitly named file that cannot be read or parsed is an error.
func LoadFromPath(configPath string) (Config, error) {
	cfg := DefaultConfig()

	path, explicit := configPath, configPath != ""
	if !explicit {
		path = DefaultConfigFile
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		var parsed fileConfig
		if err := yaml.Unmarshal(data, &parsed); err != nil {
			return cfg, common.Malformed("configuration "+path, err)
		}
		Merge(&cfg, parsed)
	case explicit:
		return cfg, errors.Errorf("%w %s: %w", common.ErrInputIO, path, err)
	}

	ApplyEnvOverrides(&cfg)
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func Merge(dst *Config, src fileConfig) {
	if src.Bits != 0 {
		dst.Bits = src.Bits
	}
	if src.Digest != "" {
		dst.Digest = src.Digest
	}
	if src.OutDir != "" {
		dst.OutDir = src.OutDir
	}
	if src.Overwrite != nil {
		dst.Overwrite = *src.Overwrite
	}
	if src.Files.PublicKey != "" {
		dst.Files.PublicKey = src.Files.PublicKey
	}
	if src.Files.PrivateKey != "" {
		dst.Files.PrivateKey = src.Files.PrivateKey
	}
	if src.Files.ProxyKey != "" {
		dst.Files.ProxyKey = src.Files.ProxyKey
	}
	if src.Files.Signature != "" {
		dst.Files.Signature = src.Files.Signature
	}
	if src.Files.Bundle != "" {
		dst.Files.Bundle = src.Files.Bundle
	}
}

// ApplyEnvOverrides applies PROXYSIG_BITS, PROXYSIG_DIGEST and PROXYSIG_OUT_DIR.
// Unparseable values are ignored.
func ApplyEnvOverrides(cfg *Config) {
	if raw := strings.TrimSpace(os.Getenv("PROXYSIG_BITS")); raw != "" {
		if bits, err := strconv.Atoi(raw); err == nil {
			cfg.Bits = bits
		} else {
			proxysig.Logger.WithField("PROXYSIG_BITS", raw).Warn("ignoring invalid bit length")
		}
	}
	if digest := strings.TrimSpace(os.Getenv("PROXYSIG_DIGEST")); digest != "" {
		cfg.Digest = digest
	}
	if dir := strings.TrimSpace(os.Getenv("PROXYSIG_OUT_DIR")); dir != "" {
		cfg.OutDir = dir
	}
}

// Validate checks the bit length and the digest name.
func (cfg *Config) Validate() error {
	if cfg.Bits < keys.MinBits {
		return errors.Errorf("bits must be at least %d, got %d", keys.MinBits, cfg.Bits)
	}
	if _, err := proxysig.LookupDigest(cfg.Digest); err != nil {
		return err
	}
	return nil
}

// Path returns the location of an output file.
func (cfg *Config) Path(name string) string {
	return filepath.Join(cfg.OutDir, name)
}
