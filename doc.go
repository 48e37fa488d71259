// Package proxysig is an implementation of a discrete logarithm proxy signature
// scheme after Mambo, Usuda and Okamoto. A delegator holding a key pair from the
// keys package issues a proxy key (r, s) to a proxy (see Delegator); the proxy signs
// documents on the delegator's behalf (see ProxySigner), and anyone with the
// delegator's public key can check the result (see Verifier).
//
// For now, see proxysig_test.go on how to use the library.
package proxysig
