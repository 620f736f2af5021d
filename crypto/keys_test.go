package crypto

import (
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	config_types "www.velocidex.com/golang/minioncrypt/config/types"
	"www.velocidex.com/golang/minioncrypt/vtesting"
)

type KeyStoreTestSuite struct {
	suite.Suite
	config_obj *config_types.Config
	store      *KeyStore
}

func (self *KeyStoreTestSuite) SetupTest() {
	self.config_obj = vtesting.GetTestConfig(self.T())
	self.store = NewKeyStore(self.config_obj)
}

func (self *KeyStoreTestSuite) TestGenKeys() {
	t := self.T()
	pki_dir := self.config_obj.PkiDir

	old_umask := setUmask(0o022)
	defer setUmask(old_umask)

	key_pair, err := self.store.GenKeys(pki_dir, "master", 2048, "")
	require.NoError(t, err)

	assert.False(t, key_pair.Reused)
	assert.Nil(t, key_pair.OwnerError)
	assert.Equal(t, filepath.Join(pki_dir, "master.pem"), key_pair.PrivatePath)
	assert.Equal(t, filepath.Join(pki_dir, "master.pub"), key_pair.PublicPath)

	if runtime.GOOS != "windows" {
		stat, err := os.Stat(key_pair.PrivatePath)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0400), stat.Mode().Perm())

		stat, err = os.Stat(key_pair.PublicPath)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0644), stat.Mode().Perm())
	}

	private_key, err := LoadPrivateKey(key_pair.PrivatePath)
	require.NoError(t, err)
	assert.Equal(t, 2048, private_key.N.BitLen())
	assert.Equal(t, 65537, private_key.E)

	public_key, err := LoadPublicKey(key_pair.PublicPath)
	require.NoError(t, err)
	assert.True(t, private_key.PublicKey.Equal(public_key))
}

// The public key follows the process umask. The private key is always
// owner read only.
func (self *KeyStoreTestSuite) TestGenKeysHonorsUmask() {
	t := self.T()
	if runtime.GOOS == "windows" {
		t.Skip("No umask on windows")
	}

	old_umask := setUmask(0o027)
	defer setUmask(old_umask)

	key_pair, err := self.store.GenKeys(self.config_obj.PkiDir, "minion", 1024, "")
	require.NoError(t, err)

	stat, err := os.Stat(key_pair.PrivatePath)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0400), stat.Mode().Perm())

	stat, err = os.Stat(key_pair.PublicPath)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0640), stat.Mode().Perm())

	// The umask in force before the call is restored.
	assert.Equal(t, 0o027, setUmask(0o027))
}

func (self *KeyStoreTestSuite) TestGenKeysKeepsExistingKey() {
	t := self.T()
	pki_dir := self.config_obj.PkiDir

	first, err := self.store.GenKeys(pki_dir, "minion", 1024, "")
	require.NoError(t, err)
	original := vtesting.ReadFile(t, first.PrivatePath)

	second, err := self.store.GenKeys(pki_dir, "minion", 1024, "")
	require.NoError(t, err)

	assert.True(t, second.Reused)
	assert.Equal(t, first.PrivatePath, second.PrivatePath)
	assert.Equal(t, original, vtesting.ReadFile(t, second.PrivatePath))
}

func (self *KeyStoreTestSuite) TestGenKeysCreatesKeyDir() {
	t := self.T()
	key_dir := filepath.Join(self.config_obj.PkiDir, "nested", "minion")

	key_pair, err := self.store.GenKeys(key_dir, "minion", 1024, "")
	require.NoError(t, err)

	_, err = LoadPrivateKey(key_pair.PrivatePath)
	require.NoError(t, err)
}

func (self *KeyStoreTestSuite) TestGenKeysWriteFailure() {
	t := self.T()

	// A regular file can not be used as a directory, even by root.
	blocker := filepath.Join(self.config_obj.PkiDir, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0600))

	_, err := self.store.GenKeys(filepath.Join(blocker, "keys"), "minion", 1024, "")
	assert.ErrorIs(t, err, ErrKeyGeneration)
}

func (self *KeyStoreTestSuite) TestGenKeysInvalidSize() {
	_, err := self.store.GenKeys(self.config_obj.PkiDir, "minion", 1, "")
	assert.ErrorIs(self.T(), err, ErrInvalidKeySize)
}

func (self *KeyStoreTestSuite) TestGenKeysUnknownOwner() {
	t := self.T()
	if runtime.GOOS == "windows" {
		t.Skip("ownership is not supported on windows")
	}

	key_pair, err := self.store.GenKeys(self.config_obj.PkiDir, "minion", 1024,
		"no_such_user_minioncrypt")

	// A bad owner is reported but the keys are still usable.
	require.NoError(t, err)
	assert.Error(t, key_pair.OwnerError)

	_, err = LoadPrivateKey(key_pair.PrivatePath)
	require.NoError(t, err)
}

// Many generators racing for the same name must leave exactly one
// keypair behind and all agree on it.
func (self *KeyStoreTestSuite) TestConcurrentGenKeys() {
	t := self.T()
	pki_dir := self.config_obj.PkiDir

	count := 8
	results := make([]*KeyPair, count)
	errs := make([]error, count)

	wg := &sync.WaitGroup{}
	for i := 0; i < count; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = self.store.GenKeys(pki_dir, "minion", 1024, "")
		}(i)
	}
	wg.Wait()

	winners := 0
	for i := 0; i < count; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, filepath.Join(pki_dir, "minion.pem"), results[i].PrivatePath)
		if !results[i].Reused {
			winners++
		}
	}
	assert.Equal(t, 1, winners)

	// No temp files left over.
	entries, err := os.ReadDir(pki_dir)
	require.NoError(t, err)

	names := []string{}
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.ElementsMatch(t, []string{"minion.pem", "minion.pub"}, names)

	// The public key belongs to the retained private key.
	private_key, err := LoadPrivateKey(results[0].PrivatePath)
	require.NoError(t, err)

	public_key, err := LoadPublicKey(results[0].PublicPath)
	require.NoError(t, err)
	assert.True(t, private_key.PublicKey.Equal(public_key))
}

func (self *KeyStoreTestSuite) TestLoadErrors() {
	t := self.T()
	pki_dir := self.config_obj.PkiDir

	_, err := LoadPrivateKey(filepath.Join(pki_dir, "missing.pem"))
	assert.ErrorIs(t, err, ErrKeyLoad)

	_, err = LoadPublicKey(filepath.Join(pki_dir, "missing.pub"))
	assert.ErrorIs(t, err, ErrKeyLoad)

	corrupt := filepath.Join(pki_dir, "corrupt.pem")
	require.NoError(t, os.WriteFile(corrupt, []byte("not a key"), 0600))

	_, err = LoadPrivateKey(corrupt)
	assert.ErrorIs(t, err, ErrKeyLoad)

	_, err = LoadPublicKey(corrupt)
	assert.ErrorIs(t, err, ErrKeyLoad)
}

func TestKeyStore(t *testing.T) {
	suite.Run(t, &KeyStoreTestSuite{})
}
