package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBcryptPasswordHasher(t *testing.T) {
	// MinCost keeps the test fast.
	hasher := NewBcryptPasswordHasherWithCost(bcrypt.MinCost)

	hash, err := hasher.Hash("correct horse battery staple")
	require.NoError(t, err)
	require.NotEmpty(t, hash)

	assert.NoError(t, hasher.Compare(hash, "correct horse battery staple"))
	assert.Error(t, hasher.Compare(hash, "wrong password"))
}

func TestBcryptPasswordHasherCostFallback(t *testing.T) {
	for _, cost := range []int{0, -1, bcrypt.MaxCost + 1} {
		hasher := NewBcryptPasswordHasherWithCost(cost)
		assert.Equal(t, bcrypt.DefaultCost, hasher.cost, "cost %d should fall back to the default", cost)
	}
}
