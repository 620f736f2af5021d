/*
   Velociraptor - Dig Deeper
   Copyright (C) 2019-2025 Rapid7 Inc.

   This program is free software: you can redistribute it and/or modify
   it under the terms of the GNU Affero General Public License as published
   by the Free Software Foundation, either version 3 of the License, or
   (at your option) any later version.

   This program is distributed in the hope that it will be useful,
   but WITHOUT ANY WARRANTY; without even the implied warranty of
   MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
   GNU Affero General Public License for more details.

   You should have received a copy of the GNU Affero General Public License
   along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/
package crypto

import (
	"bytes"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	errors "github.com/go-errors/errors"
	config_types "www.velocidex.com/golang/minioncrypt/config/types"
	"www.velocidex.com/golang/minioncrypt/constants"
	"www.velocidex.com/golang/minioncrypt/logging"
	"www.velocidex.com/golang/minioncrypt/utils"
)

type TokenSource int

const (
	// No token was delivered. This is distinct from an empty token.
	TokenAbsent TokenSource = iota

	// The token followed the delimiter inside the key material.
	TokenFromDelimiter

	// The token was wrapped separately in the payload's token field.
	TokenFromPayload
)

func (self TokenSource) String() string {
	switch self {
	case TokenFromDelimiter:
		return "delimiter"
	case TokenFromPayload:
		return "payload"
	default:
		return "absent"
	}
}

// Reasons a handshake is rejected. Used for logging and metrics only.
const (
	RejectDecrypt        = "decrypt"
	RejectNoSignature    = "no_signature"
	RejectInvalidSender  = "invalid_sender"
	RejectSenderKey      = "sender_key"
	RejectSignature      = "signature"
	RejectDigestMismatch = "digest_mismatch"
	RejectToken          = "token"
	RejectIncomplete     = "incomplete"
)

// HandshakeResult is either accepted with a session key or rejected.
// A rejected result never carries key material.
type HandshakeResult struct {
	Accepted    bool
	SessionKey  []byte
	Token       []byte
	TokenSource TokenSource

	// Why the handshake was rejected.
	Reason string
}

func (self *HandshakeResult) Err() error {
	if self.Accepted {
		return nil
	}
	return fmt.Errorf("%w: %v", ErrHandshakeRejected, self.Reason)
}

// Exchange delivers session keys between master and minion.
type Exchange struct {
	resolver PublicKeyResolver
	backend  Backend
	logger   *logging.LogContext
}

// NewExchange resolves sender keys from the configured pki
// directory. Keys are reloaded on each handshake unless
// public_key_cache_ttl is set.
func NewExchange(config_obj *config_types.Config) *Exchange {
	var resolver PublicKeyResolver
	if config_obj.PublicKeyCacheTTL > 0 {
		resolver = NewCachingFilePublicKeyResolver(config_obj.PkiDir,
			time.Duration(config_obj.PublicKeyCacheTTL)*time.Second, 1000)
	} else {
		resolver = NewFilePublicKeyResolver(config_obj.PkiDir)
	}

	return NewExchangeWithResolver(config_obj, resolver, RSABackend{})
}

func NewExchangeWithResolver(
	config_obj *config_types.Config,
	resolver PublicKeyResolver, backend Backend) *Exchange {
	return &Exchange{
		resolver: resolver,
		backend:  backend,
		logger:   logging.GetLogger(config_obj, &logging.HandshakeComponent),
	}
}

func (self *Exchange) Resolver() PublicKeyResolver {
	return self.resolver
}

func (self *Exchange) Close() {
	self.resolver.Close()
}

// DecryptSessionPayload unwraps and authenticates the session key in
// payload. It never fails: any problem produces a rejected result.
func (self *Exchange) DecryptSessionPayload(
	payload *SessionKeyBlob,
	receiver_private_key *rsa.PrivateKey,
	sender_identity string,
	trust_master bool) *HandshakeResult {

	if payload == nil || len(payload.AES) == 0 {
		return self.reject(sender_identity, RejectDecrypt, nil)
	}

	key_material, err := self.backend.Unwrap(receiver_private_key, payload.AES)
	if err != nil {
		return self.reject(sender_identity, RejectDecrypt, err)
	}

	// From here on every rejection scrubs the unwrapped key.
	reject := func(reason string, err error) *HandshakeResult {
		zero(key_material)
		return self.reject(sender_identity, reason, err)
	}

	if !payload.HasSig() {
		return reject(RejectNoSignature, nil)
	}

	err = ValidateIdentity(sender_identity)
	if err != nil {
		return reject(RejectInvalidSender, err)
	}

	sender_key, err := self.getSenderKey(sender_identity)
	if err != nil {
		return reject(RejectSenderKey, err)
	}

	digest := keyMaterialDigest(key_material)
	claimed_digest, err := self.backend.PublicDecrypt(sender_key, payload.Sig)
	if err != nil {
		return reject(RejectSignature, err)
	}

	if !constantTimeEqual(digest, claimed_digest) {
		return reject(RejectDigestMismatch, nil)
	}

	delimiter := []byte(constants.SESSION_TOKEN_DELIMITER)
	idx := bytes.Index(key_material, delimiter)
	if idx >= 0 {
		return self.accept(sender_identity, &HandshakeResult{
			Accepted:    true,
			SessionKey:  key_material[:idx:idx],
			Token:       key_material[idx+len(delimiter):],
			TokenSource: TokenFromDelimiter,
		})
	}

	if payload.HasToken() {
		token, err := self.backend.Unwrap(receiver_private_key, payload.Token)
		if err != nil {
			return reject(RejectToken, err)
		}

		return self.accept(sender_identity, &HandshakeResult{
			Accepted:    true,
			SessionKey:  key_material,
			Token:       token,
			TokenSource: TokenFromPayload,
		})
	}

	if !trust_master {
		return self.accept(sender_identity, &HandshakeResult{
			Accepted:    true,
			SessionKey:  key_material,
			TokenSource: TokenAbsent,
		})
	}

	return reject(RejectIncomplete, nil)
}

// A missing or corrupt sender key, or a misbehaving resolver, must
// only ever reject the handshake.
func (self *Exchange) getSenderKey(identity string) (
	key *rsa.PublicKey, err error) {
	defer utils.RecoverToError(&err, ErrKeyLoad)

	key, err = self.resolver.GetPublicKey(identity)
	if err != nil {
		return nil, err
	}
	if key == nil {
		return nil, fmt.Errorf("%w: no key for %v", ErrKeyLoad, identity)
	}
	return key, nil
}

func (self *Exchange) accept(
	sender_identity string, result *HandshakeResult) *HandshakeResult {
	handshakeAcceptedCounter.Inc()
	self.logger.Debug("DecryptSessionPayload: accepted session key from %v (token %v)",
		sender_identity, result.TokenSource)
	return result
}

func (self *Exchange) reject(
	sender_identity, reason string, err error) *HandshakeResult {
	handshakeRejectedCounter.WithLabelValues(reason).Inc()
	if err != nil {
		self.logger.Warn("DecryptSessionPayload: rejected session key from %q: %v: %v",
			sender_identity, reason, err)
	} else {
		self.logger.Warn("DecryptSessionPayload: rejected session key from %q: %v",
			sender_identity, reason)
	}
	return &HandshakeResult{Reason: reason}
}

// EncryptOptions control how the sender packages the token.
type EncryptOptions struct {
	// Append the token to the key material after the delimiter
	// instead of wrapping it in the separate token field.
	EmbedToken bool

	// Leave out the signature. Receivers always reject such
	// payloads so this is only useful for testing.
	Unsigned bool
}

// EncryptSessionPayload is the sender side of the handshake. A nil
// token sends a bare session key.
func (self *Exchange) EncryptSessionPayload(
	session_key, token []byte,
	receiver_public_key *rsa.PublicKey,
	sender_private_key *rsa.PrivateKey,
	options EncryptOptions) (*SessionKeyBlob, error) {

	if bytes.Contains(session_key, []byte(constants.SESSION_TOKEN_DELIMITER)) {
		return nil, errors.New(
			"EncryptSessionPayload: session key contains the token delimiter")
	}

	key_material := session_key
	if token != nil && options.EmbedToken {
		key_material = make([]byte, 0, len(session_key)+
			len(constants.SESSION_TOKEN_DELIMITER)+len(token))
		key_material = append(key_material, session_key...)
		key_material = append(key_material, constants.SESSION_TOKEN_DELIMITER...)
		key_material = append(key_material, token...)
		defer zero(key_material)
	}

	if receiver_public_key == nil {
		return nil, errors.New("EncryptSessionPayload: no receiver key")
	}

	capacity := receiver_public_key.Size() - constants.OAEP_SHA1_OVERHEAD
	if len(key_material) > capacity {
		return nil, fmt.Errorf(
			"%w: %d bytes of key material do not fit a %d bit receiver key (max %d)",
			ErrInvalidKeySize, len(key_material),
			receiver_public_key.N.BitLen(), capacity)
	}

	if token != nil && !options.EmbedToken && len(token) > capacity {
		return nil, fmt.Errorf(
			"%w: %d byte token does not fit a %d bit receiver key (max %d)",
			ErrInvalidKeySize, len(token),
			receiver_public_key.N.BitLen(), capacity)
	}

	result := &SessionKeyBlob{}

	var err error
	result.AES, err = self.backend.Wrap(receiver_public_key, key_material)
	if err != nil {
		return nil, err
	}

	if !options.Unsigned {
		result.Sig, err = self.backend.PrivateEncrypt(
			sender_private_key, keyMaterialDigest(key_material))
		if err != nil {
			return nil, err
		}
	}

	if token != nil && !options.EmbedToken {
		result.Token, err = self.backend.Wrap(receiver_public_key, token)
		if err != nil {
			return nil, err
		}
	}

	return result, nil
}

// The signed digest is the lower case hex SHA-256 of the full key
// material, including any embedded token.
func keyMaterialDigest(key_material []byte) []byte {
	hashed := sha256.Sum256(key_material)
	result := make([]byte, hex.EncodedLen(len(hashed)))
	hex.Encode(result, hashed[:])
	return result
}
