package crypto

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"

	errors "github.com/go-errors/errors"
	"www.velocidex.com/golang/minioncrypt/constants"
)

// GenerateSessionKey returns a fresh session key string:
// base64(aes_key || hmac_key).
func GenerateSessionKey(aes_key_size int) ([]byte, error) {
	switch aes_key_size {
	case 16, 24, 32:
	default:
		return nil, fmt.Errorf("%w: AES key is %d bytes", ErrInvalidKeySize,
			aes_key_size)
	}

	raw := make([]byte, aes_key_size+constants.HMAC_SHA256_SIZE)
	defer zero(raw)

	_, err := rand.Read(raw)
	if err != nil {
		return nil, errors.Wrap(err, 0)
	}

	result := make([]byte, base64.StdEncoding.EncodedLen(len(raw)))
	base64.StdEncoding.Encode(result, raw)
	return result, nil
}

// ParseSessionKey splits a session key string into its AES and HMAC
// halves. Everything after the first aes_key_size bytes is the HMAC
// key.
func ParseSessionKey(session_key []byte, aes_key_size int) (*SymmetricKeys, error) {
	raw, err := base64.StdEncoding.DecodeString(string(session_key))
	if err != nil {
		return nil, fmt.Errorf("%w: session key is not base64", ErrInvalidKeySize)
	}

	if len(raw) <= aes_key_size {
		zero(raw)
		return nil, fmt.Errorf("%w: session key is only %d bytes",
			ErrInvalidKeySize, len(raw))
	}

	keys := &SymmetricKeys{
		AESKey:  raw[:aes_key_size:aes_key_size],
		HMACKey: raw[aes_key_size:],
	}

	err = keys.validate()
	if err != nil {
		keys.Zero()
		return nil, err
	}
	return keys, nil
}

// SessionCipher protects all traffic of a single session with one
// set of SymmetricKeys.
type SessionCipher struct {
	keys       *SymmetricKeys
	block_size int
	mac_size   int
}

func NewSessionCipher(session_key []byte, aes_key_size int) (*SessionCipher, error) {
	keys, err := ParseSessionKey(session_key, aes_key_size)
	if err != nil {
		return nil, err
	}

	return &SessionCipher{
		keys:       keys,
		block_size: constants.AES_BLOCK_SIZE,
		mac_size:   constants.HMAC_SHA256_SIZE,
	}, nil
}

func (self *SessionCipher) Encrypt(plain_text []byte) ([]byte, error) {
	return Encrypt(plain_text, self.keys, self.block_size)
}

func (self *SessionCipher) Decrypt(envelope []byte) ([]byte, error) {
	return Decrypt(envelope, self.keys, self.mac_size, self.block_size)
}

// Close scrubs the session keys. The cipher can not be used
// afterwards.
func (self *SessionCipher) Close() {
	self.keys.Zero()
	self.keys = nil
}

func zero(buf []byte) {
	for i := range buf {
		buf[i] = 0
	}
}
