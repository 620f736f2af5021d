package crypto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protowire"
)

func TestSessionKeyBlobOptionalFields(t *testing.T) {
	blob := &SessionKeyBlob{AES: []byte("wrapped")}

	decoded, err := UnmarshalSessionKeyBlob(blob.Marshal())
	require.NoError(t, err)
	assert.Equal(t, []byte("wrapped"), decoded.AES)
	assert.False(t, decoded.HasSig())
	assert.False(t, decoded.HasToken())

	// Present but empty is not the same as absent.
	blob = &SessionKeyBlob{
		AES:   []byte("wrapped"),
		Sig:   []byte("signature"),
		Token: []byte{},
	}

	decoded, err = UnmarshalSessionKeyBlob(blob.Marshal())
	require.NoError(t, err)
	assert.True(t, decoded.HasSig())
	assert.Equal(t, []byte("signature"), decoded.Sig)
	assert.True(t, decoded.HasToken())
	assert.Equal(t, 0, len(decoded.Token))
}

func TestSessionKeyBlobUnknownFields(t *testing.T) {
	var data []byte
	data = protowire.AppendTag(data, 7, protowire.VarintType)
	data = protowire.AppendVarint(data, 42)
	data = protowire.AppendTag(data, 9, protowire.BytesType)
	data = protowire.AppendBytes(data, []byte("future"))
	data = append(data, (&SessionKeyBlob{AES: []byte("wrapped")}).Marshal()...)

	decoded, err := UnmarshalSessionKeyBlob(data)
	require.NoError(t, err)
	assert.Equal(t, []byte("wrapped"), decoded.AES)
}

func TestSessionKeyBlobErrors(t *testing.T) {
	// aes is required.
	_, err := UnmarshalSessionKeyBlob((&SessionKeyBlob{Sig: []byte("x")}).Marshal())
	assert.Error(t, err)

	_, err = UnmarshalSessionKeyBlob(nil)
	assert.Error(t, err)

	// Truncated
	data := (&SessionKeyBlob{AES: []byte("wrapped")}).Marshal()
	_, err = UnmarshalSessionKeyBlob(data[:len(data)-2])
	assert.Error(t, err)
}
