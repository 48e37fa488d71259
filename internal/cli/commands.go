package cli

import (
	"os"

	"github.com/go-errors/errors"
	"github.com/privacybydesign/proxysig"
	"github.com/privacybydesign/proxysig/factor"
	"github.com/privacybydesign/proxysig/internal/common"
	"github.com/privacybydesign/proxysig/keys"
	"github.com/sirupsen/logrus"
)

func (c *Command) prepareOutDir() error {
	if err := os.MkdirAll(c.Config.OutDir, 0755); err != nil {
		return errors.WrapPrefix(err, "cannot create output directory", 0)
	}
	return nil
}

// Keygen generates a domain and a delegator key pair.
func Keygen(c *Command) error {
	builder := &keys.DomainBuilder{
		Random:     c.Random,
		Factorizer: factor.New(nil),
		Follower:   newLogFollower(c.Logger),
	}
	domain, err := builder.Build(c.Config.Bits)
	if err != nil {
		return err
	}
	sk, pk, err := keys.GenerateKeyPair(c.Random, domain)
	if err != nil {
		return err
	}
	c.Logger.WithFields(logrus.Fields{
		"p": pk.P, "q": pk.Q, "g": pk.G, "x": sk.X, "y": pk.Y,
	}).Debug("key pair generated")

	if err = c.prepareOutDir(); err != nil {
		return err
	}
	pubFile := c.Config.Path(c.Config.Files.PublicKey)
	if _, err = pk.WriteToFile(pubFile, c.Config.Overwrite); err != nil {
		return err
	}
	c.Printf("Public key written to %s", pubFile)

	privFile := c.Config.Path(c.Config.Files.PrivateKey)
	if _, err = sk.WriteToFile(privFile, c.Config.Overwrite); err != nil {
		return err
	}
	c.Printf("Private key written to %s", privFile)
	return nil
}

// ProxyKeygen issues a proxy key from the delegator's key pair.
func ProxyKeygen(c *Command) error {
	sk, err := keys.NewPrivateKeyFromFile(c.Args[0])
	if err != nil {
		return err
	}
	pk, err := keys.NewPublicKeyFromFile(c.Args[1])
	if err != nil {
		return err
	}

	delegator := proxysig.NewDelegator(sk, pk)
	delegator.Random = c.Random
	key, err := delegator.Delegate()
	if err != nil {
		return err
	}
	c.Logger.WithFields(logrus.Fields{"r": key.R, "s": key.S}).Debug("proxy key generated")

	if err = c.prepareOutDir(); err != nil {
		return err
	}
	filename := c.Config.Path(c.Config.Files.ProxyKey)
	if _, err = key.WriteToFile(filename, c.Config.Overwrite); err != nil {
		return err
	}
	c.Printf("Proxy key written to %s", filename)
	return nil
}

// ProxySign signs a file with a proxy key.
func ProxySign(c *Command) error {
	key, err := proxysig.NewProxyKeyFromFile(c.Args[0])
	if err != nil {
		return err
	}
	pk, err := keys.NewPublicKeyFromFile(c.Args[1])
	if err != nil {
		return err
	}
	msg, err := common.ReadFile(c.Args[2])
	if err != nil {
		return err
	}
	digest, err := proxysig.LookupDigest(c.Config.Digest)
	if err != nil {
		return err
	}

	signer := proxysig.NewProxySigner(pk, key, digest)
	signer.Random = c.Random
	sig, err := signer.Sign(msg)
	if err != nil {
		return err
	}
	c.Logger.WithFields(logrus.Fields{
		"sp": sig.SP, "e": sig.E, "r": sig.R, "digest": digest.Name,
	}).Debug("file signed")

	if err = c.prepareOutDir(); err != nil {
		return err
	}
	filename := c.Config.Path(c.Config.Files.Signature)
	if _, err = sig.WriteToFile(filename, c.Config.Overwrite); err != nil {
		return err
	}
	c.Printf("Signature written to %s", filename)

	if !c.Bundle {
		return nil
	}
	bundle, err := proxysig.NewBundle(pk, sig, digest, msg)
	if err != nil {
		return err
	}
	filename = c.Config.Path(c.Config.Files.Bundle)
	if _, err = bundle.WriteToFile(filename, c.Config.Overwrite); err != nil {
		return err
	}
	c.Printf("Bundle written to %s", filename)
	return nil
}

// ProxyVerify verifies a signature on a file. A signature that does not verify is a
// result, not an error.
func ProxyVerify(c *Command) error {
	var (
		ok  bool
		err error
	)
	if c.Bundle {
		ok, err = verifyBundle(c, c.Args[0], c.Args[1])
	} else {
		ok, err = verifySignature(c, c.Args[0], c.Args[1], c.Args[2])
	}
	if err != nil {
		return err
	}

	if ok {
		c.Printf("File signature is correct and successfully verified!")
	} else {
		c.Printf("Signature verification FAILED!")
	}
	return nil
}

func verifySignature(c *Command, pubFile, sigFile, signedFile string) (bool, error) {
	pk, err := keys.NewPublicKeyFromFile(pubFile)
	if err != nil {
		return false, err
	}
	sig, err := proxysig.NewSignatureFromFile(sigFile)
	if err != nil {
		return false, err
	}
	msg, err := common.ReadFile(signedFile)
	if err != nil {
		return false, err
	}
	digest, err := proxysig.LookupDigest(c.Config.Digest)
	if err != nil {
		return false, err
	}
	return proxysig.NewVerifier(pk, digest).Verify(msg, sig)
}

func verifyBundle(c *Command, bundleFile, signedFile string) (bool, error) {
	bundle, err := proxysig.NewBundleFromFile(bundleFile)
	if err != nil {
		return false, err
	}
	msg, err := common.ReadFile(signedFile)
	if err != nil {
		return false, err
	}
	c.Logger.WithField("digest", bundle.Digest).Debug("bundle read")
	return bundle.Verify(msg)
}
