package crypto

import errors "github.com/go-errors/errors"

var (
	// Writing a key file failed. Fatal to the GenKeys call.
	ErrKeyGeneration = errors.New("KeyGenerationError")

	// The envelope MAC did not verify. The message must be dropped
	// and the identical envelope never retried.
	ErrAuthentication = errors.New("AuthenticationError")

	// The session key handshake was rejected. The peer is
	// unauthenticated for this attempt.
	ErrHandshakeRejected = errors.New("HandshakeRejected")

	// A key file is missing or corrupt.
	ErrKeyLoad = errors.New("KeyLoadError")

	ErrInvalidKeySize   = errors.New("Invalid key size")
	ErrInvalidBlockSize = errors.New("Invalid block size")
)
