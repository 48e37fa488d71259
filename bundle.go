package proxysig

import (
	"bytes"
	"io"
	"os"

	"github.com/go-errors/errors"
	"github.com/multiformats/go-multihash"
	"github.com/privacybydesign/proxysig/cbor"
	"github.com/privacybydesign/proxysig/internal/common"
	"github.com/privacybydesign/proxysig/keys"
)

// Bundle is a self-contained signed document envelope: the delegator's public key,
// the proxy signature, the digest it was made with, and the multihash of the
// signed message. The message itself travels separately.
type Bundle struct {
	PublicKey *keys.PublicKey     `cbor:"pk"`
	Signature *Signature          `cbor:"sig"`
	Digest    string              `cbor:"digest"`
	Message   multihash.Multihash `cbor:"msg"`
}

// NewBundle packs a signature on msg. A nil digest selects DefaultDigest.
func NewBundle(pk *keys.PublicKey, sig *Signature, digest *Digest, msg []byte) (*Bundle, error) {
	if digest == nil {
		digest = digests[DefaultDigest]
	}
	mh, err := digest.Multihash(msg)
	if err != nil {
		return nil, errors.WrapPrefix(err, "cannot hash message", 0)
	}
	return &Bundle{PublicKey: pk, Signature: sig, Digest: digest.Name, Message: mh}, nil
}

// bundleFields has the fields of Bundle but not its MarshalBinary method, which
// the CBOR encoder would otherwise call.
type bundleFields Bundle

// MarshalBinary implements encoding.BinaryMarshaler.
func (b *Bundle) MarshalBinary() ([]byte, error) {
	return cbor.Marshal((*bundleFields)(b))
}

// ParseBundle decodes and validates a CBOR encoded bundle.
func ParseBundle(bts []byte) (*Bundle, error) {
	b := &Bundle{}
	if err := cbor.Unmarshal(bts, b); err != nil {
		return nil, common.Malformed("bundle", err)
	}
	if err := b.validate(); err != nil {
		return nil, err
	}
	return b, nil
}

// ReadBundle decodes and validates one bundle from r.
func ReadBundle(r io.Reader) (*Bundle, error) {
	b := &Bundle{}
	if err := cbor.NewDecoder(r).Decode(b); err != nil {
		return nil, common.Malformed("bundle", err)
	}
	if err := b.validate(); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *Bundle) validate() error {
	if b.PublicKey == nil {
		return common.Malformed("bundle", errors.New("missing public key"))
	}
	if err := b.PublicKey.Validate(); err != nil {
		return err
	}
	if b.Signature == nil || b.Signature.SP == nil || b.Signature.E == nil || b.Signature.R == nil {
		return common.Malformed("bundle", errors.New("missing signature"))
	}
	d, err := LookupDigest(b.Digest)
	if err != nil {
		return err
	}
	decoded, err := multihash.Decode(b.Message)
	if err != nil {
		return common.Malformed("bundle", err)
	}
	if decoded.Code != d.Code {
		return common.Malformed("bundle", errors.Errorf("message hashed with %s, signed with %s", decoded.Name, d.Name))
	}
	return nil
}

// Verify reports whether msg is the bundled message and the bundled signature on it
// is valid under the bundled public key.
func (b *Bundle) Verify(msg []byte) (bool, error) {
	d, err := LookupDigest(b.Digest)
	if err != nil {
		return false, err
	}
	mh, err := d.Multihash(msg)
	if err != nil {
		return false, errors.WrapPrefix(err, "cannot hash message", 0)
	}
	if !bytes.Equal(mh, b.Message) {
		Logger.Debug("message does not match bundle")
		return false, nil
	}
	return NewVerifier(b.PublicKey, d).Verify(msg, b.Signature)
}

// WriteTo writes the CBOR encoded bundle to the given writer.
func (b *Bundle) WriteTo(writer io.Writer) (int64, error) {
	bts, err := b.MarshalBinary()
	if err != nil {
		return 0, err
	}
	n, err := writer.Write(bts)
	return int64(n), err
}

// WriteToFile writes the bundle to a file. If any existing file with the same
// filename should be overwritten, set forceOverwrite to true.
func (b *Bundle) WriteToFile(filename string, forceOverwrite bool) (int64, error) {
	bts, err := b.MarshalBinary()
	if err != nil {
		return 0, err
	}
	return common.WriteFile(filename, bts, 0644, forceOverwrite)
}

// NewBundleFromFile reads a bundle file.
func NewBundleFromFile(filename string) (*Bundle, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, errors.Errorf("%w %s: %w", ErrInputIO, filename, err)
	}
	defer common.Close(f)
	return ReadBundle(f)
}
