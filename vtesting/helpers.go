/* An internal package with test utilities.
 */

package vtesting

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"www.velocidex.com/golang/minioncrypt/constants"
)

var (
	mu        sync.Mutex
	test_keys = make(map[string]*rsa.PrivateKey)
)

func ReadFile(t *testing.T, filename string) []byte {
	result, err := os.ReadFile(filename)
	if err != nil {
		t.Fatalf("Failed reading file: %v", err)
	}
	return result
}

// GetTestKey returns a 2048 bit key for the name. The same name
// always gets the same key within a test binary since generating
// keys is slow.
func GetTestKey(t testing.TB, name string) *rsa.PrivateKey {
	mu.Lock()
	defer mu.Unlock()

	key, pres := test_keys[name]
	if pres {
		return key
	}

	key, err := rsa.GenerateKey(rand.Reader, constants.DEFAULT_KEY_SIZE)
	require.NoError(t, err)

	test_keys[name] = key
	return key
}

// InstallPublicKey writes the named test key's public half into
// pki_dir as {name}.pub.
func InstallPublicKey(t testing.TB, pki_dir, name string) string {
	key := GetTestKey(t, name)
	path := constants.GetPublicKeyPath(pki_dir, name)

	der, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0700))
	require.NoError(t, os.WriteFile(path, pem.EncodeToMemory(&pem.Block{
		Type:  "PUBLIC KEY",
		Bytes: der,
	}), 0644))
	return path
}
