package crypto

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha1"
	"fmt"
	"math/big"

	errors "github.com/go-errors/errors"
)

// SignMessage signs the SHA1 of message with PKCS#1 v1.5. The scheme
// is fixed so that every node in the fleet can verify it.
func SignMessage(private_key *rsa.PrivateKey, message []byte) ([]byte, error) {
	hashed := sha1.Sum(message)

	rsaSignCounter.Inc()
	signature, err := rsa.SignPKCS1v15(
		rand.Reader, private_key, crypto.SHA1, hashed[:])
	if err != nil {
		return nil, errors.Wrap(err, 0)
	}
	return signature, nil
}

// SignMessageFromFile reloads the private key on each call.
func SignMessageFromFile(private_key_path string, message []byte) ([]byte, error) {
	private_key, err := LoadPrivateKey(private_key_path)
	if err != nil {
		return nil, err
	}
	return SignMessage(private_key, message)
}

// VerifySignature never fails - any problem with the key or the
// signature is simply an invalid signature.
func VerifySignature(public_key *rsa.PublicKey, message, signature []byte) bool {
	if public_key == nil {
		return false
	}

	hashed := sha1.Sum(message)

	rsaVerifyCounter.Inc()
	return rsa.VerifyPKCS1v15(public_key, crypto.SHA1, hashed[:], signature) == nil
}

func VerifySignatureFromFile(public_key_path string, message, signature []byte) bool {
	public_key, err := LoadPublicKey(public_key_path)
	if err != nil {
		return false
	}
	return VerifySignature(public_key, message, signature)
}

// PrivateEncrypt produces a raw ANSI X9.31 signature over digest, the
// same as OpenSSL's RSA_private_encrypt with RSA_X931_PADDING. The
// digest is signed as is: it is not hashed and no hash id is added.
func PrivateEncrypt(private_key *rsa.PrivateKey, digest []byte) ([]byte, error) {
	if private_key == nil || private_key.D == nil {
		return nil, errors.New("PrivateEncrypt: no private key")
	}

	k := private_key.Size()
	padding := k - len(digest) - 2
	if padding < 0 {
		return nil, fmt.Errorf("%w: %d byte digest does not fit a %d bit key",
			ErrInvalidKeySize, len(digest), private_key.N.BitLen())
	}

	// EM = 0x6b || 0xbb... || 0xba || digest || 0xcc, or
	// 0x6a || digest || 0xcc when there is no room for padding.
	em := make([]byte, 0, k)
	if padding == 0 {
		em = append(em, 0x6a)
	} else {
		em = append(em, 0x6b)
		for i := 1; i < padding; i++ {
			em = append(em, 0xbb)
		}
		em = append(em, 0xba)
	}
	em = append(em, digest...)
	em = append(em, 0xcc)

	rsaSignCounter.Inc()
	m := new(big.Int).SetBytes(em)
	s := new(big.Int).Exp(m, private_key.D, private_key.N)

	// X9.31 sends the smaller of s and n - s.
	other := new(big.Int).Sub(private_key.N, s)
	if other.Cmp(s) < 0 {
		s = other
	}

	return s.FillBytes(make([]byte, k)), nil
}

// PublicDecrypt recovers the digest signed by PrivateEncrypt.
func PublicDecrypt(public_key *rsa.PublicKey, signature []byte) ([]byte, error) {
	if public_key == nil {
		return nil, errors.New("PublicDecrypt: no public key")
	}

	k := public_key.Size()
	if len(signature) != k {
		return nil, fmt.Errorf("PublicDecrypt: signature is %d bytes, expected %d",
			len(signature), k)
	}

	rsaVerifyCounter.Inc()
	s := new(big.Int).SetBytes(signature)
	if s.Sign() == 0 || s.Cmp(public_key.N) >= 0 {
		return nil, errors.New("PublicDecrypt: signature out of range")
	}

	m := new(big.Int).Exp(s, big.NewInt(int64(public_key.E)), public_key.N)

	// A valid EM ends in 0xcc. Otherwise the signer sent n - s.
	if new(big.Int).And(m, big.NewInt(0x0f)).Int64() != 0x0c {
		m.Sub(public_key.N, m)
	}
	em := m.FillBytes(make([]byte, k))

	var body []byte
	switch em[0] {
	case 0x6a:
		body = em[1:]

	case 0x6b:
		i := 1
		for i < k-1 && em[i] == 0xbb {
			i++
		}
		if i == k-1 || em[i] != 0xba {
			return nil, errors.New("PublicDecrypt: invalid padding")
		}
		body = em[i+1:]

	default:
		return nil, errors.New("PublicDecrypt: invalid padding")
	}

	if len(body) == 0 || body[len(body)-1] != 0xcc {
		return nil, errors.New("PublicDecrypt: invalid trailer")
	}

	return body[:len(body)-1], nil
}
