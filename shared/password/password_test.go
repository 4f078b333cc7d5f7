package password_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"busline/shared/password"
)

func TestHash(t *testing.T) {
	tests := []struct {
		name     string
		secret   string
		expected error
	}{
		{name: "admin seed password", secret: "admin12345"},
		{name: "special characters", secret: "P@ssw0rd!#$%^&*()"},
		{name: "exactly the byte limit", secret: strings.Repeat("a", password.MaxBytes)},
		{name: "empty", secret: "", expected: password.ErrEmptyPassword},
		{name: "over the byte limit", secret: strings.Repeat("a", password.MaxBytes+1), expected: password.ErrPasswordTooLong},
		// 40 characters pass the max=72 validator but take 80 bytes.
		{name: "multi-byte over the byte limit", secret: strings.Repeat("п", 40), expected: password.ErrPasswordTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			digest, err := password.Hash(tt.secret)

			if tt.expected != nil {
				require.ErrorIs(t, err, tt.expected)
				assert.Empty(t, digest)

				return
			}

			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(digest, "$2a$"), digest)
			assert.NoError(t, password.Verify(tt.secret, digest))
		})
	}
}

func TestHash_TooLongIsAHashingFailure(t *testing.T) {
	_, err := password.Hash(strings.Repeat("a", 100))

	assert.ErrorIs(t, err, password.ErrHashingPassword)
	assert.ErrorIs(t, err, password.ErrPasswordTooLong)
}

func TestHash_SaltsEveryDigest(t *testing.T) {
	first, err := password.Hash("admin12345")
	require.NoError(t, err)

	second, err := password.Hash("admin12345")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.NoError(t, password.Verify("admin12345", first))
	assert.NoError(t, password.Verify("admin12345", second))
}

func TestVerify(t *testing.T) {
	digest, err := password.Hash("admin12345")
	require.NoError(t, err)

	tests := []struct {
		name     string
		secret   string
		digest   string
		expected error
	}{
		{name: "match", secret: "admin12345", digest: digest},
		{name: "wrong password", secret: "admin54321", digest: digest, expected: password.ErrInvalidPassword},
		{name: "empty password", secret: "", digest: digest, expected: password.ErrInvalidPassword},
		{name: "admin without digest", secret: "admin12345", digest: "", expected: password.ErrInvalidPassword},
		{name: "corrupt digest", secret: "admin12345", digest: "not-a-bcrypt-digest", expected: password.ErrVerifyingPassword},
		{name: "truncated digest", secret: "admin12345", digest: digest[:10], expected: password.ErrVerifyingPassword},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := password.Verify(tt.secret, tt.digest)

			if tt.expected == nil {
				assert.NoError(t, err)

				return
			}

			assert.ErrorIs(t, err, tt.expected)
		})
	}
}
