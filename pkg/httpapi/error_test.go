package httpapi

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteError_OmitsEmptyMeta(t *testing.T) {
	rec := httptest.NewRecorder()
	require.NoError(t, WriteError(rec, http.StatusBadRequest, "No file uploaded", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"error":"No file uploaded"}`, rec.Body.String())
}

func TestWriteMessage(t *testing.T) {
	rec := httptest.NewRecorder()
	require.NoError(t, WriteMessage(rec, http.StatusOK, "done"))
	assert.JSONEq(t, `{"message":"done"}`, rec.Body.String())
}

func TestNotFound(t *testing.T) {
	rec := httptest.NewRecorder()
	NotFound().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"Not found","meta":{"path":"/nope"}}`, rec.Body.String())
}

func TestWriteJSON_NilWriter(t *testing.T) {
	require.NoError(t, WriteJSON(nil, http.StatusOK, map[string]string{"a": "b"}))
}
