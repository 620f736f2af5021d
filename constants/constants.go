package constants

var (
	VERSION = "0.1.0"

	// Set at build time with -ldflags -X.
	BUILD_TIME  = ""
	COMMIT_HASH = ""

	// The key names used by the two sides of the protocol.
	MASTER_KEY_NAME = "master"
	MINION_KEY_NAME = "minion"
)

const (
	PRIVATE_KEY_SUFFIX = ".pem"
	PUBLIC_KEY_SUFFIX  = ".pub"

	DEFAULT_KEY_SIZE = 2048

	// Umask applied while the private key is written (0o277 leaves
	// only owner read) and the final mode of the private key.
	PRIVATE_KEY_UMASK = 0o277
	PRIVATE_KEY_MODE  = 0o400

	// Public keys get default permissions: this mode less the
	// process umask.
	PUBLIC_KEY_MODE = 0o666

	AES_BLOCK_SIZE       = 16
	DEFAULT_AES_KEY_SIZE = 24
	HMAC_SHA256_SIZE     = 32

	// RSA-OAEP with SHA-1 can wrap at most key_bytes - 42 bytes.
	OAEP_SHA1_OVERHEAD = 2*20 + 2

	// Separates the session key from an auxiliary token when both
	// are wrapped in the same RSA blob.
	SESSION_TOKEN_DELIMITER = "_|-"

	// Environment variables consulted by the config loader.
	MINIONCRYPT_CONFIG         = "MINIONCRYPT_CONFIG"
	MINIONCRYPT_LITERAL_CONFIG = "MINIONCRYPT_LITERAL_CONFIG"
)
