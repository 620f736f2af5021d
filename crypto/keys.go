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
	"crypto/rand"
	"crypto/rsa"
	"fmt"
	"os"
	"sync"

	errors "github.com/go-errors/errors"
	config_types "www.velocidex.com/golang/minioncrypt/config/types"
	"www.velocidex.com/golang/minioncrypt/constants"
	"www.velocidex.com/golang/minioncrypt/logging"
	"www.velocidex.com/golang/minioncrypt/utils"
)

var (
	// The umask is process wide so concurrent generators in this
	// process must not interleave their set/restore calls.
	umask_mu sync.Mutex
)

type KeyPair struct {
	PrivatePath string
	PublicPath  string
	Bits        int
	Owner       string

	// Another generator persisted its key first and we returned its
	// path instead of ours.
	Reused bool

	// Set when the owner could not be applied. Key generation still
	// succeeded.
	OwnerError error
}

type KeyStore struct {
	logger *logging.LogContext
}

func NewKeyStore(config_obj *config_types.Config) *KeyStore {
	return &KeyStore{
		logger: logging.GetLogger(config_obj, &logging.KeyStoreComponent),
	}
}

// GenKeys creates {keydir}/{keyname}.pem and {keydir}/{keyname}.pub.
//
// Generation is not locked. If another process or goroutine manages
// to persist its private key first, our fresh key is discarded and
// the path to the winner's key is returned.
func (self *KeyStore) GenKeys(
	keydir, keyname string, bits int, owner string) (*KeyPair, error) {

	result := &KeyPair{
		PrivatePath: constants.GetPrivateKeyPath(keydir, keyname),
		PublicPath:  constants.GetPublicKeyPath(keydir, keyname),
		Bits:        bits,
		Owner:       owner,
	}

	// Another generator may be holding the private key umask.
	umask_mu.Lock()
	err := os.MkdirAll(keydir, 0700)
	umask_mu.Unlock()
	if err != nil {
		keygenCounter.WithLabelValues("failed").Inc()
		return nil, fmt.Errorf("%w: creating %v: %v", ErrKeyGeneration, keydir, err)
	}

	private_key, err := rsa.GenerateKey(rand.Reader, bits)
	if err != nil {
		keygenCounter.WithLabelValues("failed").Inc()
		return nil, fmt.Errorf("%w: %d bits: %v", ErrInvalidKeySize, bits, err)
	}

	// Between deciding to generate and now another process may
	// have made a key. Use the winner's key.
	if utils.FileExists(result.PrivatePath) {
		return self.reuse(result), nil
	}

	created, err := writePrivateKey(result.PrivatePath, PrivateKeyToPem(private_key))
	if err != nil {
		keygenCounter.WithLabelValues("failed").Inc()
		return nil, fmt.Errorf("%w: writing %v: %v",
			ErrKeyGeneration, result.PrivatePath, err)
	}

	if !created {
		return self.reuse(result), nil
	}

	// The file was created read only already but make sure in case
	// the link target was changed under us.
	err = os.Chmod(result.PrivatePath, constants.PRIVATE_KEY_MODE)
	if err != nil {
		keygenCounter.WithLabelValues("failed").Inc()
		return nil, fmt.Errorf("%w: chmod %v: %v",
			ErrKeyGeneration, result.PrivatePath, err)
	}

	err = utils.WriteFileAtomic(result.PublicPath,
		PublicKeyToPem(&private_key.PublicKey),
		defaultMode(constants.PUBLIC_KEY_MODE))
	if err != nil {
		keygenCounter.WithLabelValues("failed").Inc()
		return nil, fmt.Errorf("%w: writing %v: %v",
			ErrKeyGeneration, result.PublicPath, err)
	}

	if owner != "" {
		err = chownKeys(owner, result.PrivatePath, result.PublicPath)
		if err != nil {
			// Not fatal - the caller decides what to do about it.
			result.OwnerError = err
			self.logger.Warn("GenKeys: unable to set owner of %v to %v: %v",
				result.PrivatePath, owner, err)
		}
	}

	keygenCounter.WithLabelValues("written").Inc()
	self.logger.Info("GenKeys: Wrote %d bit key %v (%v)", bits,
		result.PrivatePath, ClientIDFromPublicKey(&private_key.PublicKey))

	return result, nil
}

func (self *KeyStore) reuse(result *KeyPair) *KeyPair {
	keygenCounter.WithLabelValues("reused").Inc()
	self.logger.Debug("GenKeys: %v was created concurrently, using it",
		result.PrivatePath)
	result.Reused = true
	return result
}

// defaultMode is the mode a plain create with mode would give under
// the current umask.
func defaultMode(mode os.FileMode) os.FileMode {
	umask_mu.Lock()
	defer umask_mu.Unlock()

	current := setUmask(0)
	setUmask(current)
	return mode &^ os.FileMode(current)
}

func writePrivateKey(path string, serialized []byte) (bool, error) {
	umask_mu.Lock()
	defer umask_mu.Unlock()

	old_umask := setUmask(constants.PRIVATE_KEY_UMASK)
	defer setUmask(old_umask)

	return utils.WriteFileExclusive(path, serialized, constants.PRIVATE_KEY_MODE)
}

// LoadPrivateKey reads the key from disk on every call.
func LoadPrivateKey(path string) (*rsa.PrivateKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKeyLoad, err)
	}
	return ParseRsaPrivateKeyFromPemStr(data)
}

func LoadPublicKey(path string) (*rsa.PublicKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKeyLoad, err)
	}
	return PemToPublicKey(data)
}

func wrapKeyLoadError(err error) error {
	if errors.Is(err, ErrKeyLoad) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrKeyLoad, err)
}
