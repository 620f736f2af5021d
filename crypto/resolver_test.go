package crypto

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"www.velocidex.com/golang/minioncrypt/vtesting"
)

func TestValidateIdentity(t *testing.T) {
	for _, identity := range []string{"master", "minion_master", "web01.example.com"} {
		assert.NoError(t, ValidateIdentity(identity), identity)
	}

	for _, identity := range []string{"", "../master", "keys/master",
		`keys\master`, "..", "a..b", "master\x00"} {
		assert.ErrorIs(t, ValidateIdentity(identity), ErrKeyLoad, identity)
	}
}

func TestFilePublicKeyResolver(t *testing.T) {
	pki_dir := t.TempDir()
	vtesting.InstallPublicKey(t, pki_dir, "master")

	resolver := NewFilePublicKeyResolver(pki_dir)
	defer resolver.Close()

	key, err := resolver.GetPublicKey("master")
	require.NoError(t, err)
	assert.True(t, vtesting.GetTestKey(t, "master").PublicKey.Equal(key))

	_, err = resolver.GetPublicKey("minion")
	assert.ErrorIs(t, err, ErrKeyLoad)

	_, err = resolver.GetPublicKey("../master")
	assert.ErrorIs(t, err, ErrKeyLoad)

	// Corrupt keys are a load error.
	require.NoError(t, os.WriteFile(filepath.Join(pki_dir, "broken.pub"),
		[]byte("-----BEGIN PUBLIC KEY-----\nAAAA\n-----END PUBLIC KEY-----\n"), 0644))
	_, err = resolver.GetPublicKey("broken")
	assert.ErrorIs(t, err, ErrKeyLoad)

	// Accepting a key makes it resolvable.
	minion_key := vtesting.GetTestKey(t, "minion")
	require.NoError(t, resolver.SetPublicKey("minion", &minion_key.PublicKey))

	key, err = resolver.GetPublicKey("minion")
	require.NoError(t, err)
	assert.True(t, minion_key.PublicKey.Equal(key))

	assert.Error(t, resolver.SetPublicKey("../minion", &minion_key.PublicKey))
}

func TestCachingFilePublicKeyResolver(t *testing.T) {
	pki_dir := t.TempDir()
	path := vtesting.InstallPublicKey(t, pki_dir, "master")

	resolver := NewCachingFilePublicKeyResolver(pki_dir, time.Minute, 10)
	defer resolver.Close()

	key, err := resolver.GetPublicKey("master")
	require.NoError(t, err)
	assert.True(t, vtesting.GetTestKey(t, "master").PublicKey.Equal(key))

	stat, err := os.Stat(path)
	require.NoError(t, err)

	// Overwrite the file in place keeping the size and mtime. The
	// cached key is still served.
	garbage := bytes.Repeat([]byte{'x'}, int(stat.Size()))
	require.NoError(t, os.WriteFile(path, garbage, 0644))
	require.NoError(t, os.Chtimes(path, stat.ModTime(), stat.ModTime()))

	key, err = resolver.GetPublicKey("master")
	require.NoError(t, err)
	assert.True(t, vtesting.GetTestKey(t, "master").PublicKey.Equal(key))

	// An uncached resolver sees the garbage.
	_, err = NewFilePublicKeyResolver(pki_dir).GetPublicKey("master")
	assert.ErrorIs(t, err, ErrKeyLoad)

	// Rotating the key changes the mtime and is picked up at once.
	rotated := vtesting.GetTestKey(t, "rotated")
	require.NoError(t, os.WriteFile(path, PublicKeyToPem(&rotated.PublicKey), 0644))
	new_time := stat.ModTime().Add(time.Second)
	require.NoError(t, os.Chtimes(path, new_time, new_time))

	key, err = resolver.GetPublicKey("master")
	require.NoError(t, err)
	assert.True(t, rotated.PublicKey.Equal(key))

	// Removing the key is noticed too.
	require.NoError(t, os.Remove(path))
	_, err = resolver.GetPublicKey("master")
	assert.ErrorIs(t, err, ErrKeyLoad)

	resolver.Clear()
}

func TestInMemoryPublicKeyResolver(t *testing.T) {
	resolver := NewInMemoryPublicKeyResolver()
	defer resolver.Close()

	_, err := resolver.GetPublicKey("master")
	assert.ErrorIs(t, err, ErrKeyLoad)

	key := vtesting.GetTestKey(t, "master")
	require.NoError(t, resolver.SetPublicKey("master", &key.PublicKey))

	result, err := resolver.GetPublicKey("master")
	require.NoError(t, err)
	assert.Equal(t, &key.PublicKey, result)

	resolver.Clear()
	_, err = resolver.GetPublicKey("master")
	assert.ErrorIs(t, err, ErrKeyLoad)
}
