package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"elibro/apierr"
)

func TestWriteErrorSurfacesDetail(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, zap.NewNop(), apierr.Unauthorized("token expired"))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	resp := decodeEnvelope(t, rec)
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, "token expired", resp.Message)
	require.NotNil(t, resp.Error)
	assert.Equal(t, http.StatusUnauthorized, resp.Error.Code)
	assert.Equal(t, "token expired", resp.Error.Details)
}

func TestWriteErrorWithoutDetail(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, zap.NewNop(), apierr.NotFound(""))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	resp := decodeEnvelope(t, rec)
	assert.Equal(t, "Not Found", resp.Message)
}

func TestWriteErrorCollapsesUnknownErrors(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, zap.NewNop(), errors.New("pq: connection refused"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	resp := decodeEnvelope(t, rec)
	assert.Equal(t, "Internal Server Error", resp.Message)
	assert.NotContains(t, rec.Body.String(), "connection refused")
}
