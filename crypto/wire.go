package crypto

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

const (
	sessionKeyBlobAESField   protowire.Number = 1
	sessionKeyBlobSigField   protowire.Number = 2
	sessionKeyBlobTokenField protowire.Number = 3
)

// SessionKeyBlob is the handshake payload. A nil Sig or Token means
// the field is absent. An empty non-nil slice is present but empty.
type SessionKeyBlob struct {
	// RSA-OAEP wrapped key material. Required.
	AES []byte

	// Raw PKCS#1 signature over the hex SHA-256 digest of the key
	// material.
	Sig []byte

	// RSA-OAEP wrapped auxiliary token.
	Token []byte
}

func (self *SessionKeyBlob) HasSig() bool {
	return self.Sig != nil
}

func (self *SessionKeyBlob) HasToken() bool {
	return self.Token != nil
}

// Marshal encodes the blob in protobuf wire format.
func (self *SessionKeyBlob) Marshal() []byte {
	var b []byte
	b = protowire.AppendTag(b, sessionKeyBlobAESField, protowire.BytesType)
	b = protowire.AppendBytes(b, self.AES)

	if self.Sig != nil {
		b = protowire.AppendTag(b, sessionKeyBlobSigField, protowire.BytesType)
		b = protowire.AppendBytes(b, self.Sig)
	}

	if self.Token != nil {
		b = protowire.AppendTag(b, sessionKeyBlobTokenField, protowire.BytesType)
		b = protowire.AppendBytes(b, self.Token)
	}
	return b
}

func UnmarshalSessionKeyBlob(data []byte) (*SessionKeyBlob, error) {
	result := &SessionKeyBlob{}

	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return nil, fmt.Errorf("SessionKeyBlob: %w", protowire.ParseError(n))
		}
		data = data[n:]

		var field *[]byte
		switch num {
		case sessionKeyBlobAESField:
			field = &result.AES
		case sessionKeyBlobSigField:
			field = &result.Sig
		case sessionKeyBlobTokenField:
			field = &result.Token
		}

		if field == nil || typ != protowire.BytesType {
			n = protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return nil, fmt.Errorf("SessionKeyBlob: %w", protowire.ParseError(n))
			}
			data = data[n:]
			continue
		}

		value, n := protowire.ConsumeBytes(data)
		if n < 0 {
			return nil, fmt.Errorf("SessionKeyBlob: %w", protowire.ParseError(n))
		}
		data = data[n:]

		// Copy so the blob does not alias the caller's buffer.
		*field = append([]byte{}, value...)
	}

	if len(result.AES) == 0 {
		return nil, fmt.Errorf("SessionKeyBlob: aes field is required")
	}

	return result, nil
}
