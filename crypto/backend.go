package crypto

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha1"

	errors "github.com/go-errors/errors"
)

// Backend is the primitive set used by the handshake. There is one
// production implementation.
type Backend interface {
	// RSA-OAEP wrap and unwrap of key material and tokens.
	Wrap(public_key *rsa.PublicKey, plain_text []byte) ([]byte, error)
	Unwrap(private_key *rsa.PrivateKey, cipher_text []byte) ([]byte, error)

	PrivateEncrypt(private_key *rsa.PrivateKey, digest []byte) ([]byte, error)
	PublicDecrypt(public_key *rsa.PublicKey, signature []byte) ([]byte, error)

	Encrypt(plain_text []byte, keys *SymmetricKeys, block_size int) ([]byte, error)
	Decrypt(envelope []byte, keys *SymmetricKeys, mac_size, block_size int) ([]byte, error)
}

// RSABackend uses RSA-OAEP with SHA1, raw PKCS#1 signatures and
// AES-CBC with HMAC-SHA256.
type RSABackend struct{}

func (self RSABackend) Wrap(
	public_key *rsa.PublicKey, plain_text []byte) ([]byte, error) {
	if public_key == nil {
		return nil, errors.New("Wrap: no public key")
	}

	rsaEncryptCounter.Inc()
	result, err := rsa.EncryptOAEP(
		sha1.New(), rand.Reader, public_key, plain_text, []byte(""))
	if err != nil {
		return nil, errors.Wrap(err, 0)
	}
	return result, nil
}

func (self RSABackend) Unwrap(
	private_key *rsa.PrivateKey, cipher_text []byte) ([]byte, error) {
	if private_key == nil {
		return nil, errors.New("Unwrap: no private key")
	}

	rsaDecryptCounter.Inc()
	result, err := rsa.DecryptOAEP(
		sha1.New(), rand.Reader, private_key, cipher_text, []byte(""))
	if err != nil {
		return nil, errors.Wrap(err, 0)
	}
	return result, nil
}

func (self RSABackend) PrivateEncrypt(
	private_key *rsa.PrivateKey, digest []byte) ([]byte, error) {
	return PrivateEncrypt(private_key, digest)
}

func (self RSABackend) PublicDecrypt(
	public_key *rsa.PublicKey, signature []byte) ([]byte, error) {
	return PublicDecrypt(public_key, signature)
}

func (self RSABackend) Encrypt(
	plain_text []byte, keys *SymmetricKeys, block_size int) ([]byte, error) {
	return Encrypt(plain_text, keys, block_size)
}

func (self RSABackend) Decrypt(
	envelope []byte, keys *SymmetricKeys, mac_size, block_size int) ([]byte, error) {
	return Decrypt(envelope, keys, mac_size, block_size)
}
