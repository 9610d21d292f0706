package credentials_test

import (
	"strings"
	"testing"

	"github.com/forumgate/forumgate/credentials"
	"github.com/stretchr/testify/require"
)

// testParams keeps the KDF cheap so the suite stays fast. Production defaults
// are exercised once in TestDefaultParamsEncoding.
var testParams = credentials.Params{
	Memory:      64,
	Time:        1,
	Parallelism: 1,
	SaltLength:  16,
	KeyLength:   32,
}

func TestHashVerifyRoundTrip(t *testing.T) {
	for _, password := range []string{"Correctpass1", "pässword÷unicode", "x"} {
		hash, err := testParams.Hash(password)
		require.NoError(t, err)

		ok, err := credentials.Verify(hash, password)
		require.NoError(t, err)
		require.True(t, ok, "password %q should verify against its own hash", password)
	}
}

func TestVerifyRejectsWrongPassword(t *testing.T) {
	hash, err := testParams.Hash("Correctpass1")
	require.NoError(t, err)

	ok, err := credentials.Verify(hash, "Wrongpass1")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestHashesAreSalted(t *testing.T) {
	first, err := testParams.Hash("Correctpass1")
	require.NoError(t, err)
	second, err := testParams.Hash("Correctpass1")
	require.NoError(t, err)
	require.NotEqual(t, first, second)
}

func TestVerifyCorruptHash(t *testing.T) {
	cases := []string{
		"",
		"not-a-hash",
		"$argon2id$v=19$m=64,t=1,p=1$only-four-parts",
		"$bcrypt$v=19$m=64,t=1,p=1$c2FsdA$a2V5",
		"$argon2id$v=99$m=64,t=1,p=1$c2FsdA$a2V5",
		"$argon2id$v=19$m=64,t=1,p=1$!!!$a2V5",
		"$argon2id$v=19$m=64,t=1,p=1$c2FsdA$!!!",
		"$argon2id$v=19$m=64,t=0,p=1$c2FsdA$a2V5",
		"$argon2id$v=19$m=64,t=1,p=0$c2FsdA$a2V5",
		"$argon2id$v=19$m=0,t=1,p=1$c2FsdA$a2V5",
		"$argon2id$v=19$m=4294967295,t=1,p=1$c2FsdA$a2V5",
	}
	for _, hash := range cases {
		_, err := credentials.Verify(hash, "anything")
		require.ErrorIs(t, err, credentials.ErrCorruptHash, "hash %q", hash)
	}
}

func TestDefaultParamsEncoding(t *testing.T) {
	hash, err := credentials.DefaultParams().Hash("Correctpass1")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(hash, "$argon2id$v=19$m=19456,t=2,p=1$"), hash)

	ok, err := credentials.Verify(hash, "Correctpass1")
	require.NoError(t, err)
	require.True(t, ok)
}

func TestVerifyDummyDoesNotPanic(t *testing.T) {
	credentials.VerifyDummy("anything")
}
