package registry

import (
	"testing"

	"github.com/elysium-stays/bookingledger/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_AuthorizeUser(t *testing.T) {
	r := New()

	ok, err := r.IsUserAuthorized("u1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, r.AuthorizeUser("u1"))
	// Idempotent
	require.NoError(t, r.AuthorizeUser("u1"))

	ok, err = r.IsUserAuthorized("u1")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRegistry_ApproveProvider(t *testing.T) {
	r := New()

	require.NoError(t, r.ApproveProvider("F8WX5LZ"))
	require.NoError(t, r.ApproveProvider("F8WX5LZ"))

	ok, err := r.IsProviderApproved("F8WX5LZ")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = r.IsProviderApproved("ABCDEFG")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRegistry_EmptyIdentifiers(t *testing.T) {
	r := New()

	assert.ErrorIs(t, r.AuthorizeUser(""), domain.ErrInvalidArgument)
	assert.ErrorIs(t, r.ApproveProvider(""), domain.ErrInvalidArgument)

	_, err := r.IsUserAuthorized("")
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	_, err = r.IsProviderApproved("")
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}
