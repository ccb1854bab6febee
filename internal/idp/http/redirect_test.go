package http

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedirect_URL(t *testing.T) {
	tests := []struct {
		name     string
		redirect Redirect
		want     string
	}{
		{
			name:     "code and state",
			redirect: Redirect{Base: "https://app.example.com/cb", Code: "abc", State: "xyz"},
			want:     "https://app.example.com/cb?code=abc&state=xyz",
		},
		{
			name:     "code only",
			redirect: Redirect{Base: "https://app.example.com/cb", Code: "abc"},
			want:     "https://app.example.com/cb?code=abc",
		},
		{
			name:     "error fields",
			redirect: Redirect{Base: "https://app.example.com/cb", ErrorCode: "access_denied", ErrorDescription: "nope", State: "xyz"},
			want:     "https://app.example.com/cb?error=access_denied&error_description=nope&state=xyz",
		},
		{
			name:     "preserves existing query",
			redirect: Redirect{Base: "https://app.example.com/cb?tenant=t1", Code: "abc"},
			want:     "https://app.example.com/cb?code=abc&tenant=t1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.redirect.URL()
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRedirect_InvalidBase(t *testing.T) {
	_, err := Redirect{Base: "://not-a-url", Code: "abc"}.URL()
	assert.Error(t, err)
}
