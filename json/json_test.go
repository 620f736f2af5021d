package json

import (
	"testing"

	"github.com/Velocidex/ordereddict"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDictKeepsKeyOrder(t *testing.T) {
	result := ordereddict.NewDict().
		Set("Zeta", 1).
		Set("Alpha", "two").
		Set("Nested", ordereddict.NewDict().Set("b", true).Set("a", nil))

	serialized, err := Marshal(result)
	require.NoError(t, err)
	assert.Equal(t,
		`{"Zeta":1,"Alpha":"two","Nested":{"b":true,"a":null}}`,
		string(serialized))

	indented, err := MarshalIndent(ordereddict.NewDict().Set("Key", "Value"))
	require.NoError(t, err)
	assert.Equal(t, "{\n \"Key\": \"Value\"\n}", string(indented))
}

