package rulecheck

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheck(t *testing.T) {
	t.Run("valid document", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "application/xml", r.Header.Get("Content-Type"))
			body, err := io.ReadAll(r.Body)
			require.NoError(t, err)
			assert.Contains(t, string(body), "<xbrl")
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"valid": true, "messages": []}`))
		}))
		defer srv.Close()

		result, err := New(srv.URL).Check(context.Background(), []byte(`<xbrl/>`))
		require.NoError(t, err)
		assert.True(t, result.Valid)
		assert.Empty(t, result.Messages)
	})

	t.Run("failing document with messages", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"valid": false, "messages": [{"severity": "error", "message": "B2 must equal A1 + A2"}]}`))
		}))
		defer srv.Close()

		result, err := New(srv.URL).Check(context.Background(), []byte(`<xbrl/>`))
		require.NoError(t, err)
		assert.False(t, result.Valid)
		require.Len(t, result.Messages, 1)
		assert.Equal(t, "error", result.Messages[0].Severity)
	})

	t.Run("non-2xx status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		}))
		defer srv.Close()

		_, err := New(srv.URL).Check(context.Background(), []byte(`<xbrl/>`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "500")
	})

	t.Run("context cancellation", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			time.Sleep(200 * time.Millisecond)
		}))
		defer srv.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()
		_, err := New(srv.URL).Check(ctx, []byte(`<xbrl/>`))
		assert.Error(t, err)
	})
}
