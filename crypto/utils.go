package crypto

import (
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/binary"
	"encoding/hex"
	"encoding/pem"
	"fmt"
)

func ParseRsaPrivateKeyFromPemStr(pem_str []byte) (*rsa.PrivateKey, error) {
	for {
		block, rest := pem.Decode(pem_str)
		if block == nil {
			return nil, fmt.Errorf("%w: failed to parse PEM block containing the key",
				ErrKeyLoad)
		}

		switch block.Type {
		case "RSA PRIVATE KEY":
			priv, err := x509.ParsePKCS1PrivateKey(block.Bytes)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrKeyLoad, err)
			}
			return priv, nil

		case "PRIVATE KEY":
			key, err := x509.ParsePKCS8PrivateKey(block.Bytes)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrKeyLoad, err)
			}
			priv, ok := key.(*rsa.PrivateKey)
			if !ok {
				return nil, fmt.Errorf("%w: not an RSA private key", ErrKeyLoad)
			}
			return priv, nil
		}
		pem_str = rest
	}
}

// PemToPublicKey accepts both the PKIX "PUBLIC KEY" and the PKCS1 "RSA
// PUBLIC KEY" encodings.
func PemToPublicKey(pem_str []byte) (*rsa.PublicKey, error) {
	for {
		block, rest := pem.Decode(pem_str)
		if block == nil {
			return nil, fmt.Errorf("%w: failed to parse PEM block containing the key",
				ErrKeyLoad)
		}

		switch block.Type {
		case "PUBLIC KEY":
			key, err := x509.ParsePKIXPublicKey(block.Bytes)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrKeyLoad, err)
			}
			pub, ok := key.(*rsa.PublicKey)
			if !ok {
				return nil, fmt.Errorf("%w: not an RSA public key", ErrKeyLoad)
			}
			return pub, nil

		case "RSA PUBLIC KEY":
			pub, err := x509.ParsePKCS1PublicKey(block.Bytes)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrKeyLoad, err)
			}
			return pub, nil
		}
		pem_str = rest
	}
}

func PrivateKeyToPem(key *rsa.PrivateKey) []byte {
	return pem.EncodeToMemory(
		&pem.Block{
			Type:  "RSA PRIVATE KEY",
			Bytes: x509.MarshalPKCS1PrivateKey(key),
		},
	)
}

func PublicKeyToPem(key *rsa.PublicKey) []byte {
	// Marshalling an RSA public key can not fail.
	der, _ := x509.MarshalPKIXPublicKey(key)
	return pem.EncodeToMemory(
		&pem.Block{
			Type:  "PUBLIC KEY",
			Bytes: der,
		},
	)
}

/* Node IDs are derived from the public key.

This makes it impossible to impersonate a node unless one has the
node's corresponding private key. The ID is only used to name peers
in logs - it is never used as a trust decision.
*/
func ClientIDFromPublicKey(public_key *rsa.PublicKey) string {
	raw_n := public_key.N.Bytes()
	result := make([]byte, 4+1+len(raw_n))
	binary.BigEndian.PutUint32(result[0:], uint32(len(raw_n)+1))
	copy(result[5:], raw_n)
	hashed := sha256.Sum256(result)
	dst := make([]byte, hex.EncodedLen(8))
	hex.Encode(dst, hashed[:8])
	return "C." + string(dst)
}
