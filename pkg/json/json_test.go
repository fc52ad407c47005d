package json

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseJSON(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{"name":"standup"}`))

	var payload struct {
		Name string `json:"name"`
	}
	require.NoError(t, ParseJSON(r, &payload))
	assert.Equal(t, "standup", payload.Name)
}

func TestParseJSONMissingBody(t *testing.T) {
	r := &http.Request{}
	var payload map[string]string
	assert.Error(t, ParseJSON(r, &payload))
}

func TestWriteJSON(t *testing.T) {
	w := httptest.NewRecorder()
	require.NoError(t, WriteJSON(w, http.StatusCreated, map[string]int{"id": 7}))

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"id":7}`, w.Body.String())
}

func TestWriteError(t *testing.T) {
	w := httptest.NewRecorder()
	WriteError(w, http.StatusNotFound, errors.New("Meeting not found"))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"Meeting not found"}`, w.Body.String())
}
