// Package types holds the configuration structures shared by the
// config loader and the packages that consume the configuration.
package types

type LoggingConfig struct {
	// One of debug, info, warn, error.
	Level string `json:"level,omitempty"`

	// If set, log entries are also appended to this file.
	File string `json:"file,omitempty"`
}

type Config struct {
	// Directory holding this node's keypair and the public keys of
	// its peers.
	PkiDir string `json:"pki_dir,omitempty"`

	// The identity of this node, e.g. master or minion.
	KeyName  string `json:"key_name,omitempty"`
	KeySize  int    `json:"key_size,omitempty"`
	KeyOwner string `json:"key_owner,omitempty"`

	AesKeySize int `json:"aes_key_size,omitempty"`
	BlockSize  int `json:"block_size,omitempty"`
	MacSize    int `json:"mac_size,omitempty"`

	// When false a handshake may complete with a bare session key
	// and no token.
	TrustMaster *bool `json:"trust_master,omitempty"`

	// Seconds to cache peer public keys. 0 reloads on every use.
	PublicKeyCacheTTL int `json:"public_key_cache_ttl,omitempty"`

	Logging *LoggingConfig `json:"logging,omitempty"`

	// Not serialized: set by the command line.
	Verbose bool `json:"-"`
}

func (self *Config) RequireMasterTrust() bool {
	if self == nil || self.TrustMaster == nil {
		return true
	}
	return *self.TrustMaster
}
