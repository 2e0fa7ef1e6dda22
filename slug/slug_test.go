package slug

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMake(t *testing.T) {
	tests := map[string]string{
		"Crème Brûlée T-Shirt":   "creme-brulee-t-shirt",
		"  Summer   Sale!! 2026 ": "summer-sale-2026",
		"already-a-slug":         "already-a-slug",
		"日本":                     "",
		"":                       "",
	}
	for in, want := range tests {
		assert.Equal(t, want, Make(in), in)
	}
}

func TestUnique(t *testing.T) {
	existing := map[string]bool{"tee": true, "tee-2": true}
	got, err := Unique("tee", func(c string) (bool, error) { return existing[c], nil })
	require.NoError(t, err)
	assert.Equal(t, "tee-3", got)

	got, err = Unique("mug", func(c string) (bool, error) { return existing[c], nil })
	require.NoError(t, err)
	assert.Equal(t, "mug", got)

	boom := errors.New("db down")
	_, err = Unique("tee", func(string) (bool, error) { return false, boom })
	assert.ErrorIs(t, err, boom)
}
