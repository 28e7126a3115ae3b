package gateway

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newScanner(t *testing.T, endpoint string) *HTTPMalwareScanner {
	t.Helper()
	s, err := NewHTTPMalwareScanner(&ScannerConfig{
		Endpoint: endpoint,
		Timeout:  5 * time.Second,
	}, zap.NewNop())
	require.NoError(t, err)
	return s
}

func TestNewHTTPMalwareScanner_Validation(t *testing.T) {
	t.Run("nil config", func(t *testing.T) {
		_, err := NewHTTPMalwareScanner(nil, zap.NewNop())
		require.Error(t, err)
	})

	t.Run("missing endpoint", func(t *testing.T) {
		_, err := NewHTTPMalwareScanner(&ScannerConfig{}, zap.NewNop())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "endpoint is required")
	})
}

func TestHTTPMalwareScanner_Scan(t *testing.T) {
	t.Run("clean content", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/v1/scan", r.URL.Path)
			body, _ := io.ReadAll(r.Body)
			assert.Equal(t, []byte("%PDF-1.7 content"), body)
			json.NewEncoder(w).Encode(scanResponse{Infected: false})
		}))
		defer server.Close()

		s := newScanner(t, server.URL)
		infected, signature, err := s.Scan(context.Background(), []byte("%PDF-1.7 content"))

		require.NoError(t, err)
		assert.False(t, infected)
		assert.Empty(t, signature)
	})

	t.Run("infected content", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(scanResponse{Infected: true, Signature: "Eicar-Test-Signature"})
		}))
		defer server.Close()

		s := newScanner(t, server.URL)
		infected, signature, err := s.Scan(context.Background(), []byte("suspicious"))

		require.NoError(t, err)
		assert.True(t, infected)
		assert.Equal(t, "Eicar-Test-Signature", signature)
	})

	t.Run("scanner error status", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer server.Close()

		s := newScanner(t, server.URL)
		_, _, err := s.Scan(context.Background(), []byte("data"))

		require.Error(t, err)
		assert.Contains(t, err.Error(), "status 503")
	})

	t.Run("context deadline is honored", func(t *testing.T) {
		block := make(chan struct{})
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			<-block
		}))
		defer server.Close()
		defer close(block)

		s := newScanner(t, server.URL)
		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		_, _, err := s.Scan(ctx, []byte("data"))
		require.Error(t, err)
	})
}
