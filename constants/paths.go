package constants

import "path/filepath"

func GetPrivateKeyPath(keydir, keyname string) string {
	return filepath.Join(keydir, keyname+PRIVATE_KEY_SUFFIX)
}

func GetPublicKeyPath(keydir, keyname string) string {
	return filepath.Join(keydir, keyname+PUBLIC_KEY_SUFFIX)
}
