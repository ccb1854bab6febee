package cryptox

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type codecPayload struct {
	MemberID string `json:"member_id"`
	Nonce    string `json:"nonce"`
}

func TestCodec_RoundTrip(t *testing.T) {
	codec, err := NewCodec("unit-test-secret")
	require.NoError(t, err)

	in := codecPayload{MemberID: "member-1", Nonce: "abc123"}

	encoded, err := codec.EncryptJSON(in)
	require.NoError(t, err)
	require.NotEmpty(t, encoded)

	var out codecPayload
	require.NoError(t, codec.DecryptJSON(encoded, &out))
	assert.Equal(t, in, out)
}

func TestCodec_NonDeterministic(t *testing.T) {
	codec, err := NewCodec("unit-test-secret")
	require.NoError(t, err)

	in := codecPayload{MemberID: "member-1"}

	first, err := codec.EncryptJSON(in)
	require.NoError(t, err)
	second, err := codec.EncryptJSON(in)
	require.NoError(t, err)

	// Random nonce per call: same payload must never produce the same string.
	assert.NotEqual(t, first, second)
}

func TestCodec_DecodeFailures(t *testing.T) {
	codec, err := NewCodec("unit-test-secret")
	require.NoError(t, err)
	foreign, err := NewCodec("a-different-secret")
	require.NoError(t, err)

	valid, err := codec.EncryptJSON(codecPayload{MemberID: "member-1"})
	require.NoError(t, err)

	tests := []struct {
		name    string
		encoded string
	}{
		{name: "not base64", encoded: "%%%not-base64%%%"},
		{name: "too short", encoded: "YWJj"},
		{name: "tampered ciphertext", encoded: valid[:len(valid)-4] + "AAAA"},
		{name: "empty string", encoded: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out codecPayload
			err := codec.DecryptJSON(tt.encoded, &out)
			assert.ErrorIs(t, err, ErrDecodeFailure)
		})
	}

	t.Run("foreign codec cannot decode", func(t *testing.T) {
		var out codecPayload
		err := foreign.DecryptJSON(valid, &out)
		assert.ErrorIs(t, err, ErrDecodeFailure)
	})
}

func TestNewCodec_EmptySecret(t *testing.T) {
	_, err := NewCodec("")
	require.Error(t, err)
}
