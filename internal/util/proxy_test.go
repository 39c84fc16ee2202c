package util

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProxyFunc(t *testing.T) {
	proxy := NewProxyFunc("http://proxy.local:3128", "http://secure.local:3129", "internal.example")

	tests := []struct {
		name   string
		target string
		want   string
	}{
		{"http uses http proxy", "http://api.brain-map.org/api/v2/data/query.xml", "http://proxy.local:3128"},
		{"https uses https proxy", "https://api.brain-map.org/api/v2/data/query.xml", "http://secure.local:3129"},
		{"no_proxy bypasses", "https://internal.example/x", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := http.NewRequest(http.MethodGet, tt.target, nil)
			require.NoError(t, err)

			got, err := proxy(req)
			require.NoError(t, err)
			if tt.want == "" {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestNewProxyFunc_Environment(t *testing.T) {
	proxy := NewProxyFunc("", "", "")
	req, err := http.NewRequest(http.MethodGet, "http://example.com", nil)
	require.NoError(t, err)
	_, err = proxy(req)
	assert.NoError(t, err)
}
