package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func getJSON(t *testing.T, engine http.Handler, path string) (int, map[string]any) {
	t.Helper()
	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, path, http.NoBody)
	engine.ServeHTTP(recorder, request)
	var body map[string]any
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	return recorder.Code, body
}

func TestIntrospectionEndpoints(t *testing.T) {
	t.Run("Should report health with model metadata", func(t *testing.T) {
		engine := newTestRouter(t, &stubEmbedder{dims: 384}, nil)
		code, body := getJSON(t, engine, "/")
		require.Equal(t, http.StatusOK, code)
		assert.Equal(t, "ok", body["status"])
		assert.Equal(t, "BAAI/bge-small-en-v1.5", body["model"])
		assert.Equal(t, float64(384), body["dimensions"])
		assert.Equal(t, float64(512), body["max_tokens"])
	})
	t.Run("Should return the raw model info record", func(t *testing.T) {
		engine := newTestRouter(t, &stubEmbedder{dims: 384}, nil)
		code, body := getJSON(t, engine, "/model_info")
		require.Equal(t, http.StatusOK, code)
		assert.Equal(t, "BAAI/bge-small-en-v1.5", body["name"])
		assert.Equal(t, float64(384), body["dimensions"])
		assert.Equal(t, float64(512), body["max_tokens"])
	})
	t.Run("Should be unaffected by prior embed traffic", func(t *testing.T) {
		engine := newTestRouter(t, &stubEmbedder{dims: 384}, nil)
		for range 3 {
			recorder := postEmbed(engine, `{"texts": ["warm up"]}`)
			require.Equal(t, http.StatusOK, recorder.Code)
		}
		code, body := getJSON(t, engine, "/")
		require.Equal(t, http.StatusOK, code)
		assert.Equal(t, float64(384), body["dimensions"])
		assert.Equal(t, float64(512), body["max_tokens"])
	})
}
