package vtesting

import (
	"testing"

	"github.com/stretchr/testify/require"
	"www.velocidex.com/golang/minioncrypt/config"
	config_types "www.velocidex.com/golang/minioncrypt/config/types"
)

// GetTestConfig returns a valid config with a fresh pki directory.
func GetTestConfig(t *testing.T) *config_types.Config {
	config_obj := config.GetDefaultConfig()
	config_obj.PkiDir = t.TempDir()
	config_obj.Verbose = true

	require.NoError(t, config.ValidateConfig(config_obj))

	return config_obj
}
