package pathstore

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_PutGetDelete(t *testing.T) {
	stored := map[string]json.RawMessage{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		key := strings.TrimPrefix(r.URL.Path, "/kv/")
		switch r.Method {
		case http.MethodPut:
			var req struct {
				Value json.RawMessage `json:"value"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			stored[key] = req.Value
			w.WriteHeader(http.StatusCreated)
		case http.MethodGet:
			v, ok := stored[key]
			if !ok {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			json.NewEncoder(w).Encode(map[string]any{"key_path": key, "value": v})
		case http.MethodDelete:
			assert.Equal(t, "true", r.URL.Query().Get("children"))
			delete(stored, key)
			w.WriteHeader(http.StatusNoContent)
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "secret")
	defer c.Close()
	ctx := context.Background()
	key := DocumentKey("alice", "doc-1")

	require.NoError(t, c.PutNode(ctx, key, NodeRequest{Value: map[string]string{"output": "see [Figure 1](#fig-a)"}}))

	node, err := c.GetNode(ctx, key)
	require.NoError(t, err)
	require.NotNil(t, node)
	assert.Equal(t, "documents/alice/doc-1", node.Key)
	assert.JSONEq(t, `{"output":"see [Figure 1](#fig-a)"}`, string(node.Value))

	require.NoError(t, c.DeleteNode(ctx, key, true))
	node, err = c.GetNode(ctx, key)
	require.NoError(t, err)
	assert.Nil(t, node)
}

func TestClient_RetryableStatus(t *testing.T) {
	tests := []struct {
		status    int
		retryable bool
	}{
		{http.StatusTooManyRequests, true},
		{http.StatusServiceUnavailable, true},
		{http.StatusInternalServerError, true},
		{http.StatusBadRequest, false},
		{http.StatusForbidden, false},
	}
	for _, tt := range tests {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "nope", tt.status)
		}))
		c := NewClient(srv.URL, "k")
		err := c.PutNode(context.Background(), "a", NodeRequest{Value: 1})
		srv.Close()

		require.Error(t, err, "status %d", tt.status)
		var re *RetryableError
		assert.Equal(t, tt.retryable, errors.As(err, &re), "status %d", tt.status)
		if tt.retryable {
			assert.Equal(t, tt.status, re.StatusCode)
		}
	}
}

func TestClient_ListChildren(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/kv/documents/alice/*", r.URL.Path)
		assert.Equal(t, "5", r.URL.Query().Get("limit"))
		w.Write([]byte(`{"nodes":[{"key_path":"documents/alice/a","value":{}},{"key_path":"documents/alice/b","value":{}}]}`))
	}))
	defer srv.Close()

	nodes, err := NewClient(srv.URL, "k").ListChildren(context.Background(), "documents/alice", 5)
	require.NoError(t, err)
	require.Len(t, nodes, 2)
	assert.Equal(t, "documents/alice/b", nodes[1].Key)
}

func TestRetryableError_Truncates(t *testing.T) {
	err := &RetryableError{StatusCode: 503, Message: strings.Repeat("x", 300)}
	assert.True(t, strings.HasSuffix(err.Error(), "..."))
	assert.Contains(t, err.Error(), "status 503")
}
