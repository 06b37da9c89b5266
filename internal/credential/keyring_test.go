package credential

import (
	"testing"

	"github.com/99designs/keyring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVaultRoundTrip(t *testing.T) {
	v := NewVault(keyring.NewArrayKeyring(nil))

	_, err := v.Token("https://noc.example.com/api")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, v.SetToken("https://noc.example.com/api/", "abc"))
	got, err := v.Token(" https://noc.example.com/api")
	require.NoError(t, err)
	assert.Equal(t, "abc", got, "trailing slash and spaces do not change the key")

	require.NoError(t, v.SetToken("https://noc.example.com/api", "def"))
	got, err = v.Token("https://noc.example.com/api")
	require.NoError(t, err)
	assert.Equal(t, "def", got)

	require.NoError(t, v.DeleteToken("https://noc.example.com/api"))
	require.NoError(t, v.DeleteToken("https://noc.example.com/api"))
	_, err = v.Token("https://noc.example.com/api")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTokensScopedPerBackend(t *testing.T) {
	v := NewVault(keyring.NewArrayKeyring(nil))
	require.NoError(t, v.SetToken("https://a", "one"))

	_, err := v.Token("https://b")
	assert.ErrorIs(t, err, ErrNotFound)
}
