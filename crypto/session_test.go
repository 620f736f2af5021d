package crypto

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateSessionKey(t *testing.T) {
	session_key, err := GenerateSessionKey(32)
	require.NoError(t, err)

	raw, err := base64.StdEncoding.DecodeString(string(session_key))
	require.NoError(t, err)
	assert.Equal(t, 64, len(raw))

	keys, err := ParseSessionKey(session_key, 32)
	require.NoError(t, err)
	assert.Equal(t, raw[:32], keys.AESKey)
	assert.Equal(t, raw[32:], keys.HMACKey)

	other, err := GenerateSessionKey(32)
	require.NoError(t, err)
	assert.NotEqual(t, session_key, other)

	_, err = GenerateSessionKey(20)
	assert.ErrorIs(t, err, ErrInvalidKeySize)
}

func TestParseSessionKeyErrors(t *testing.T) {
	_, err := ParseSessionKey([]byte("not base64!"), 32)
	assert.ErrorIs(t, err, ErrInvalidKeySize)

	short := base64.StdEncoding.EncodeToString(make([]byte, 32))
	_, err = ParseSessionKey([]byte(short), 32)
	assert.ErrorIs(t, err, ErrInvalidKeySize)

	// The first 20 bytes can not be an AES key.
	odd := base64.StdEncoding.EncodeToString(make([]byte, 52))
	_, err = ParseSessionKey([]byte(odd), 20)
	assert.ErrorIs(t, err, ErrInvalidKeySize)
}

func TestSessionCipher(t *testing.T) {
	session_key, err := GenerateSessionKey(32)
	require.NoError(t, err)

	sender, err := NewSessionCipher(session_key, 32)
	require.NoError(t, err)

	receiver, err := NewSessionCipher(session_key, 32)
	require.NoError(t, err)

	envelope, err := sender.Encrypt([]byte(`{"fun": "test.ping"}`))
	require.NoError(t, err)

	result, err := receiver.Decrypt(envelope)
	require.NoError(t, err)
	assert.Equal(t, `{"fun": "test.ping"}`, string(result))

	// A different session can not read the traffic.
	other_key, err := GenerateSessionKey(32)
	require.NoError(t, err)
	other, err := NewSessionCipher(other_key, 32)
	require.NoError(t, err)

	_, err = other.Decrypt(envelope)
	assert.ErrorIs(t, err, ErrAuthentication)

	// A closed cipher is unusable.
	receiver.Close()
	_, err = receiver.Decrypt(envelope)
	assert.Error(t, err)
}
