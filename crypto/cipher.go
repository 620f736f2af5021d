package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"fmt"

	errors "github.com/go-errors/errors"
)

// SymmetricKeys protect a single session. They are never persisted
// or logged.
type SymmetricKeys struct {
	AESKey  []byte
	HMACKey []byte
}

// Zero scrubs the key material. The keys are unusable afterwards.
func (self *SymmetricKeys) Zero() {
	if self == nil {
		return
	}
	for i := range self.AESKey {
		self.AESKey[i] = 0
	}
	for i := range self.HMACKey {
		self.HMACKey[i] = 0
	}
}

func (self *SymmetricKeys) validate() error {
	if self == nil {
		return fmt.Errorf("%w: no keys", ErrInvalidKeySize)
	}

	switch len(self.AESKey) {
	case 16, 24, 32:
	default:
		return fmt.Errorf("%w: AES key is %d bytes", ErrInvalidKeySize,
			len(self.AESKey))
	}

	if len(self.HMACKey) == 0 {
		return fmt.Errorf("%w: empty HMAC key", ErrInvalidKeySize)
	}
	return nil
}

func checkBlockSize(block_size int) error {
	if block_size != aes.BlockSize {
		return fmt.Errorf("%w: %d (AES requires %d)", ErrInvalidBlockSize,
			block_size, aes.BlockSize)
	}
	return nil
}

func calcHMAC(hmac_key, data []byte) []byte {
	mac := hmac.New(sha256.New, hmac_key)
	mac.Write(data)
	return mac.Sum(nil)
}

// Encrypt produces IV || ciphertext || HMAC-SHA256(IV || ciphertext).
func Encrypt(plain_text []byte, keys *SymmetricKeys, block_size int) ([]byte, error) {
	err := keys.validate()
	if err != nil {
		return nil, err
	}

	err = checkBlockSize(block_size)
	if err != nil {
		return nil, err
	}

	// A block aligned message still gets a full block of padding
	// so the padding length is always in [1, block_size].
	padding := block_size - (len(plain_text) % block_size)
	padded := make([]byte, len(plain_text)+padding)
	copy(padded, plain_text)
	for i := len(plain_text); i < len(padded); i++ {
		padded[i] = byte(padding)
	}

	base_crypter, err := aes.NewCipher(keys.AESKey)
	if err != nil {
		return nil, errors.Wrap(err, 0)
	}

	data_len := block_size + len(padded)
	result := make([]byte, data_len, data_len+sha256.Size)

	iv := result[:block_size]
	_, err = rand.Read(iv)
	if err != nil {
		return nil, errors.Wrap(err, 0)
	}

	mode := cipher.NewCBCEncrypter(base_crypter, iv)
	mode.CryptBlocks(result[block_size:], padded)

	return append(result, calcHMAC(keys.HMACKey, result)...), nil
}

// Decrypt verifies the MAC before anything is decrypted. A MAC
// mismatch returns ErrAuthentication and no plain text.
func Decrypt(envelope []byte, keys *SymmetricKeys,
	mac_size int, block_size int) ([]byte, error) {
	err := keys.validate()
	if err != nil {
		return nil, err
	}

	err = checkBlockSize(block_size)
	if err != nil {
		return nil, err
	}

	if mac_size <= 0 || len(envelope) < mac_size {
		macFailureCounter.Inc()
		return nil, fmt.Errorf("%w: envelope too short", ErrAuthentication)
	}

	data := envelope[:len(envelope)-mac_size]
	received_mac := envelope[len(envelope)-mac_size:]

	if !constantTimeEqual(calcHMAC(keys.HMACKey, data), received_mac) {
		macFailureCounter.Inc()
		return nil, fmt.Errorf("%w: MAC did not verify", ErrAuthentication)
	}

	// The MAC is authentic from here on, but the sender may still
	// have produced a malformed envelope.
	if len(data) < 2*block_size || len(data)%block_size != 0 {
		return nil, fmt.Errorf(
			"%w: cipher text is not a whole number of blocks", ErrAuthentication)
	}

	iv := data[:block_size]
	cipher_text := data[block_size:]

	base_crypter, err := aes.NewCipher(keys.AESKey)
	if err != nil {
		return nil, errors.Wrap(err, 0)
	}

	mode := cipher.NewCBCDecrypter(base_crypter, iv)
	plain_text := make([]byte, len(cipher_text))
	mode.CryptBlocks(plain_text, cipher_text)

	// Strip the padding. Every padding byte must carry the padding
	// length.
	padding := int(plain_text[len(plain_text)-1])
	if padding < 1 || padding > block_size {
		return nil, fmt.Errorf("%w: padding error", ErrAuthentication)
	}

	for i := len(plain_text) - padding; i < len(plain_text); i++ {
		if int(plain_text[i]) != padding {
			return nil, fmt.Errorf("%w: padding error", ErrAuthentication)
		}
	}

	return plain_text[:len(plain_text)-padding], nil
}

// constantTimeEqual inspects every byte regardless of where the first
// difference is. Only the length check may return early.
func constantTimeEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}

	var result byte
	for i := 0; i < len(a); i++ {
		result |= a[i] ^ b[i]
	}
	return result == 0
}
