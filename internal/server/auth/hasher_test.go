package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// low cost parameters keep the tests fast; verification reads the
// parameters back from the encoded hash anyway
func newTestHasher() *Argon2Hasher {
	return &Argon2Hasher{time: 1, memory: 8, threads: 1}
}

func TestArgon2Hasher_HashAndVerify(t *testing.T) {
	t.Parallel()
	h := newTestHasher()

	encoded, err := h.Hash("correct horse battery staple")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(encoded, "$argon2id$"), "must encode in PHC format: %s", encoded)

	assert.True(t, h.Verify("correct horse battery staple", encoded))
	assert.False(t, h.Verify("wrong password", encoded))
	assert.False(t, h.Verify("", encoded))
}

func TestArgon2Hasher_HashNeverExposesPassword(t *testing.T) {
	t.Parallel()
	h := newTestHasher()

	encoded, err := h.Hash("pw1")
	require.NoError(t, err)
	assert.NotContains(t, encoded, "pw1")
	assert.NotEqual(t, "pw1", encoded)
}

func TestArgon2Hasher_SaltsAreRandom(t *testing.T) {
	t.Parallel()
	h := newTestHasher()

	first, err := h.Hash("same password")
	require.NoError(t, err)
	second, err := h.Hash("same password")
	require.NoError(t, err)

	assert.NotEqual(t, first, second, "two hashes of the same password must differ by salt")
	assert.True(t, h.Verify("same password", first))
	assert.True(t, h.Verify("same password", second))
}

func TestArgon2Hasher_HashEmptyPassword(t *testing.T) {
	t.Parallel()
	h := newTestHasher()

	_, err := h.Hash("")
	require.ErrorIs(t, err, ErrEmptyPassword)
}

func TestArgon2Hasher_VerifyMalformedHash(t *testing.T) {
	t.Parallel()
	h := newTestHasher()

	tests := []struct {
		name    string
		encoded string
	}{
		{"empty", ""},
		{"not a hash", "hunter2"},
		{"wrong algorithm", "$bcrypt$v=19$m=8,t=1,p=1$AAAA$BBBB"},
		{"wrong version", "$argon2id$v=18$m=8,t=1,p=1$AAAA$BBBB"},
		{"missing sections", "$argon2id$v=19$m=8,t=1,p=1"},
		{"bad parameters", "$argon2id$v=19$m=x,t=y,p=z$AAAA$BBBB"},
		{"zero parameters", "$argon2id$v=19$m=0,t=0,p=0$AAAA$BBBB"},
		{"invalid base64 salt", "$argon2id$v=19$m=8,t=1,p=1$!!!$BBBB"},
		{"invalid base64 key", "$argon2id$v=19$m=8,t=1,p=1$AAAA$!!!"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.False(t, h.Verify("whatever", tc.encoded))
		})
	}
}

func TestArgon2Hasher_VerifyRespectsEncodedParameters(t *testing.T) {
	t.Parallel()

	// hash with one parameter set, verify with a hasher configured differently
	old := &Argon2Hasher{time: 2, memory: 16, threads: 1}
	encoded, err := old.Hash("migrate me")
	require.NoError(t, err)

	current := newTestHasher()
	assert.True(t, current.Verify("migrate me", encoded))
}

func TestNewArgon2Hasher_ZeroValuesGetDefaults(t *testing.T) {
	t.Parallel()

	h := NewArgon2Hasher(0, 0, 0)
	assert.Equal(t, uint32(1), h.time)
	assert.Equal(t, uint32(64*1024), h.memory)
	assert.Equal(t, uint8(4), h.threads)
}
