package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestR2ConfigConfigured(t *testing.T) {
	full := R2Config{
		Bucket:    "reports",
		AccountID: "abc123",
		PublicURL: "https://reports.abc123.r2.cloudflarestorage.com",
	}
	assert.True(t, full.Configured())

	assert.False(t, R2Config{}.Configured())
	assert.False(t, R2Config{Bucket: "reports", AccountID: "abc123"}.Configured())
	assert.False(t, R2Config{Bucket: "reports", PublicURL: "https://x"}.Configured())
}

func TestNewR2UploaderRejectsIncompleteConfig(t *testing.T) {
	_, err := NewR2Uploader(R2Config{Bucket: "reports"})
	assert.Error(t, err)
}

func TestObjectURL(t *testing.T) {
	u := &R2Uploader{publicBase: "https://reports.abc123.r2.cloudflarestorage.com"}
	assert.Equal(t,
		"https://reports.abc123.r2.cloudflarestorage.com/top_books_1693400000.pdf",
		u.objectURL("top_books_1693400000.pdf"),
	)
}
