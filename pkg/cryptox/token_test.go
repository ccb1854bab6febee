package cryptox

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateToken(t *testing.T) {
	tests := []struct {
		name    string
		size    int
		wantLen int
		wantErr bool
	}{
		{name: "128-bit token", size: TokenSize128, wantLen: 22},
		{name: "256-bit token", size: TokenSize256, wantLen: 43},
		{name: "512-bit token", size: TokenSize512, wantLen: 86},
		{name: "zero size", size: 0, wantErr: true},
		{name: "negative size", size: -1, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := GenerateToken(tt.size)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Len(t, token, tt.wantLen)
		})
	}
}

func TestGenerateToken_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for range 100 {
		token, err := GenerateToken(TokenSize256)
		require.NoError(t, err)
		require.False(t, seen[token], "duplicate token generated")
		seen[token] = true
	}
}

func TestGenerateAlphanumeric(t *testing.T) {
	tests := []struct {
		name    string
		length  int
		wantErr bool
	}{
		{name: "passport length", length: 64},
		{name: "code length", length: 32},
		{name: "single char", length: 1},
		{name: "zero length", length: 0, wantErr: true},
		{name: "negative length", length: -5, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, err := GenerateAlphanumeric(tt.length)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Len(t, key, tt.length)
			for _, c := range key {
				assert.True(t,
					(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9'),
					"unexpected character %q in key", c)
			}
		})
	}
}

func TestFingerprintToken(t *testing.T) {
	fp1 := FingerprintToken("some-token")
	fp2 := FingerprintToken("some-token")
	fp3 := FingerprintToken("other-token")

	assert.Equal(t, fp1, fp2, "fingerprint should be deterministic")
	assert.NotEqual(t, fp1, fp3)
	assert.Len(t, fp1, 43) // SHA-256 as base64url
}
