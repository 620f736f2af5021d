package crypto

import (
	"crypto/rsa"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/Velocidex/ttlcache/v2"
	"www.velocidex.com/golang/minioncrypt/constants"
	"www.velocidex.com/golang/minioncrypt/utils"
)

// PublicKeyResolver maps a sender identity to its public key. We use
// the key to verify the signature over the session key material.
type PublicKeyResolver interface {
	GetPublicKey(identity string) (*rsa.PublicKey, error)
	SetPublicKey(identity string, key *rsa.PublicKey) error
	Clear() // Flush all internal caches.
	Close()
}

// ValidateIdentity rejects identities that would escape the pki
// directory.
func ValidateIdentity(identity string) error {
	if identity == "" ||
		strings.ContainsAny(identity, `/\`) ||
		strings.Contains(identity, "..") ||
		strings.ContainsRune(identity, 0) {
		return fmt.Errorf("%w: invalid identity %q", ErrKeyLoad, identity)
	}
	return nil
}

type inMemoryPublicKeyResolver struct {
	mu          sync.Mutex
	public_keys map[string]*rsa.PublicKey
}

func NewInMemoryPublicKeyResolver() PublicKeyResolver {
	return &inMemoryPublicKeyResolver{
		public_keys: make(map[string]*rsa.PublicKey),
	}
}

func (self *inMemoryPublicKeyResolver) GetPublicKey(
	identity string) (*rsa.PublicKey, error) {
	self.mu.Lock()
	defer self.mu.Unlock()

	result, pres := self.public_keys[identity]
	if !pres {
		return nil, fmt.Errorf("%w: no key for %v", ErrKeyLoad, identity)
	}
	return result, nil
}

func (self *inMemoryPublicKeyResolver) SetPublicKey(
	identity string, key *rsa.PublicKey) error {
	self.mu.Lock()
	defer self.mu.Unlock()

	self.public_keys[identity] = key
	return nil
}

func (self *inMemoryPublicKeyResolver) Clear() {
	self.mu.Lock()
	defer self.mu.Unlock()

	self.public_keys = make(map[string]*rsa.PublicKey)
}

func (self *inMemoryPublicKeyResolver) Close() {}

type cachedPublicKey struct {
	key   *rsa.PublicKey
	mtime time.Time
	size  int64
}

// filePublicKeyResolver reads {pki_dir}/{identity}.pub. Without a
// cache the file is read on every call. With a cache, entries are
// only used while the file's mtime and size are unchanged so a
// rotated key is picked up immediately.
type filePublicKeyResolver struct {
	pki_dir string
	lru     *ttlcache.Cache
}

func NewFilePublicKeyResolver(pki_dir string) PublicKeyResolver {
	return &filePublicKeyResolver{pki_dir: pki_dir}
}

func NewCachingFilePublicKeyResolver(
	pki_dir string, ttl time.Duration, size int) PublicKeyResolver {
	result := &filePublicKeyResolver{
		pki_dir: pki_dir,
		lru:     ttlcache.NewCache(),
	}

	_ = result.lru.SetTTL(ttl)
	result.lru.SetCacheSizeLimit(size)
	result.lru.SkipTTLExtensionOnHit(true)

	return result
}

func (self *filePublicKeyResolver) GetPublicKey(
	identity string) (*rsa.PublicKey, error) {
	err := ValidateIdentity(identity)
	if err != nil {
		return nil, err
	}

	path := constants.GetPublicKeyPath(self.pki_dir, identity)
	stat, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKeyLoad, err)
	}

	if self.lru != nil {
		item, err := self.lru.Get(identity)
		if err == nil {
			cached, ok := item.(*cachedPublicKey)
			if ok && cached.mtime.Equal(stat.ModTime()) &&
				cached.size == stat.Size() {
				return cached.key, nil
			}
		}
	}

	key, err := LoadPublicKey(path)
	if err != nil {
		if self.lru != nil {
			_ = self.lru.Remove(identity)
		}
		return nil, wrapKeyLoadError(err)
	}

	if self.lru != nil {
		_ = self.lru.Set(identity, &cachedPublicKey{
			key:   key,
			mtime: stat.ModTime(),
			size:  stat.Size(),
		})
	}

	return key, nil
}

// SetPublicKey accepts a key for the identity by writing it into the
// pki directory.
func (self *filePublicKeyResolver) SetPublicKey(
	identity string, key *rsa.PublicKey) error {
	err := ValidateIdentity(identity)
	if err != nil {
		return err
	}

	if self.lru != nil {
		_ = self.lru.Remove(identity)
	}

	err = os.MkdirAll(self.pki_dir, 0700)
	if err != nil {
		return err
	}

	return utils.WriteFileAtomic(
		constants.GetPublicKeyPath(self.pki_dir, identity),
		PublicKeyToPem(key), defaultMode(constants.PUBLIC_KEY_MODE))
}

func (self *filePublicKeyResolver) Clear() {
	if self.lru != nil {
		_ = self.lru.Purge()
	}
}

func (self *filePublicKeyResolver) Close() {
	if self.lru != nil {
		self.lru.Close()
	}
}
