package config

import (
	"encoding/base64"
	"fmt"
	"io/ioutil"
	"path/filepath"
	"strings"

	"github.com/Velocidex/yaml/v2"
	errors "github.com/go-errors/errors"
	config_types "www.velocidex.com/golang/minioncrypt/config/types"
	"www.velocidex.com/golang/minioncrypt/constants"
)

func GetDefaultConfig() *config_types.Config {
	trust_master := true
	return &config_types.Config{
		PkiDir:      "/etc/minioncrypt/pki",
		KeyName:     constants.MINION_KEY_NAME,
		KeySize:     constants.DEFAULT_KEY_SIZE,
		AesKeySize:  constants.DEFAULT_AES_KEY_SIZE,
		BlockSize:   constants.AES_BLOCK_SIZE,
		MacSize:     constants.HMAC_SHA256_SIZE,
		TrustMaster: &trust_master,
		Logging: &config_types.LoggingConfig{
			Level: "info",
		},
	}
}

// Load the config stored in the YAML file and returns a config
// object. Fields missing from the file keep their default values.
func LoadConfig(filename string) (*config_types.Config, error) {
	data, err := ioutil.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrap(err, 0)
	}

	return ParseConfigFromString(data)
}

func ParseConfigFromString(config_string []byte) (*config_types.Config, error) {
	result := GetDefaultConfig()
	err := yaml.UnmarshalStrict(config_string, result)
	if err != nil {
		return nil, errors.Wrap(err, 0)
	}

	return result, nil
}

func Encode(config_obj *config_types.Config) ([]byte, error) {
	res, err := yaml.Marshal(config_obj)
	if err != nil {
		return nil, errors.Wrap(err, 0)
	}
	return res, nil
}

func WriteConfigToFile(filename string, config_obj *config_types.Config) error {
	bytes, err := Encode(config_obj)
	if err != nil {
		return err
	}

	// The config names the key owner and pki dir so keep it private.
	err = ioutil.WriteFile(filename, bytes, 0600)
	if err != nil {
		return errors.Wrap(err, 0)
	}

	return nil
}

func ValidateConfig(config_obj *config_types.Config) error {
	if config_obj.PkiDir == "" {
		return errors.New("pki_dir must be set")
	}

	if config_obj.KeyName == "" {
		return errors.New("key_name must be set")
	}

	if strings.ContainsAny(config_obj.KeyName, `/\`) ||
		config_obj.KeyName != filepath.Base(config_obj.KeyName) {
		return fmt.Errorf("key_name %q may not contain a path", config_obj.KeyName)
	}

	if config_obj.KeySize < 1024 {
		return fmt.Errorf("key_size %v is too small", config_obj.KeySize)
	}

	switch config_obj.AesKeySize {
	case 16, 24, 32:
	default:
		return fmt.Errorf("aes_key_size must be 16, 24 or 32 (got %v)",
			config_obj.AesKeySize)
	}

	if config_obj.BlockSize != constants.AES_BLOCK_SIZE {
		return fmt.Errorf("block_size must be %v (got %v)",
			constants.AES_BLOCK_SIZE, config_obj.BlockSize)
	}

	if config_obj.MacSize != constants.HMAC_SHA256_SIZE {
		return fmt.Errorf("mac_size must be %v (got %v)",
			constants.HMAC_SHA256_SIZE, config_obj.MacSize)
	}

	// The session key string is base64(aes_key || hmac_key) and must
	// fit in a single RSA-OAEP block of the node's key.
	session_key_len := base64.StdEncoding.EncodedLen(
		config_obj.AesKeySize + constants.HMAC_SHA256_SIZE)
	capacity := config_obj.KeySize/8 - constants.OAEP_SHA1_OVERHEAD
	if session_key_len > capacity {
		return fmt.Errorf(
			"aes_key_size %v needs a %v byte session key but a %v bit key wraps at most %v bytes",
			config_obj.AesKeySize, session_key_len, config_obj.KeySize, capacity)
	}

	if config_obj.PublicKeyCacheTTL < 0 {
		return errors.New("public_key_cache_ttl may not be negative")
	}

	return nil
}
