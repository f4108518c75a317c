package mgmt

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bridgeHandler(t *testing.T, values map[string]interface{}) http.HandlerFunc {
	t.Helper()

	return func(w http.ResponseWriter, r *http.Request) {
		var req readRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "read", req.Type)

		key := req.MBean + "/" + req.Attribute

		value, ok := values[key]
		if !ok {
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"status": 404,
				"error":  "javax.management.AttributeNotFoundException",
			})

			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"status": 200,
			"value":  value,
		})
	}
}

func TestHTTPReader_NumberValue(t *testing.T) {
	srv := httptest.NewServer(bridgeHandler(t, map[string]interface{}{
		"java.lang:type=Runtime/Uptime": 987654,
	}))
	defer srv.Close()

	reader := NewHTTPReader(srv.URL)

	value, err := reader.ReadAttribute(context.Background(), "java.lang:type=Runtime", "Uptime")
	require.NoError(t, err)

	assert.Equal(t, KindNumber, value.Kind)

	num, ok := value.Number()
	require.True(t, ok)
	assert.InDelta(t, 987654, num, 0.001)
}

func TestHTTPReader_CompositeValueByName(t *testing.T) {
	srv := httptest.NewServer(bridgeHandler(t, map[string]interface{}{
		"java.lang:type=Memory/HeapMemoryUsage": map[string]interface{}{
			"init":      1048576,
			"used":      734003200,
			"committed": 1073741824,
			"max":       2147483648,
		},
	}))
	defer srv.Close()

	reader := NewHTTPReader(srv.URL)

	value, err := reader.ReadAttribute(context.Background(), "java.lang:type=Memory", "HeapMemoryUsage")
	require.NoError(t, err)

	assert.Equal(t, KindComposite, value.Kind)

	used, ok := value.Field("used")
	require.True(t, ok)
	assert.InDelta(t, 734003200, used, 0.001)

	max, ok := value.Field("max")
	require.True(t, ok)
	assert.InDelta(t, 2147483648, max, 0.001)

	_, ok = value.Field("no_such_field")
	assert.False(t, ok)
}

func TestHTTPReader_NonOKStatus(t *testing.T) {
	srv := httptest.NewServer(bridgeHandler(t, nil))
	defer srv.Close()

	reader := NewHTTPReader(srv.URL)

	_, err := reader.ReadAttribute(context.Background(), "java.lang:type=Missing", "Nope")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAttributeStatus)

	var readErr *ReadError
	require.ErrorAs(t, err, &readErr)
	assert.Equal(t, "java.lang:type=Missing", readErr.Object)
}

func TestHTTPReader_ContextCancellation(t *testing.T) {
	blocked := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		<-blocked
	}))
	defer srv.Close()
	defer close(blocked)

	reader := NewHTTPReader(srv.URL)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := reader.ReadAttribute(ctx, "java.lang:type=Runtime", "Uptime")
	assert.Error(t, err)
}

func TestDecodeValue_Shapes(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		wantKind ValueKind
		wantErr  bool
	}{
		{name: "integer", raw: `42`, wantKind: KindNumber},
		{name: "float", raw: `0.853`, wantKind: KindNumber},
		{name: "large long", raw: `9007199254740993`, wantKind: KindNumber},
		{name: "composite", raw: `{"used": 1, "max": 2}`, wantKind: KindComposite},
		{name: "composite with metadata", raw: `{"used": 1, "desc": "heap"}`, wantKind: KindComposite},
		{name: "null", raw: `null`, wantErr: true},
		{name: "string", raw: `"oops"`, wantErr: true},
		{name: "empty composite", raw: `{}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			value, err := decodeValue(json.RawMessage(tt.raw))

			if tt.wantErr {
				assert.Error(t, err)
				assert.Equal(t, KindAbsent, value.Kind)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantKind, value.Kind)
		})
	}
}
