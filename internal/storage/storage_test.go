package storage

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"

	"referensi/internal/config"
)

func TestObjectKey(t *testing.T) {
	tests := []struct {
		name           string
		prefix, folder string
		file, want     string
	}{
		{name: "plain", prefix: "referensi", folder: "f1", file: "a1.pdf", want: "referensi/f1/a1.pdf"},
		{name: "prefix slashes trimmed", prefix: "/referensi/", folder: "f1", file: "a1", want: "referensi/f1/a1"},
		{name: "no prefix", folder: "f1", file: "a1", want: "f1/a1"},
		{name: "dot refs replaced", prefix: "referensi", folder: "..", file: "", want: "referensi/_/_"},
		{name: "refs cannot traverse", prefix: "referensi", folder: "../..", file: "etc/passwd", want: "referensi/.._../etc_passwd"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ObjectKey(tt.prefix, tt.folder, tt.file))
		})
	}
}

func TestNewMinIO_Validation(t *testing.T) {
	_, err := NewMinIO(config.MinIOConfig{})
	assert.EqualError(t, err, "minio endpoint is required")

	_, err = NewMinIO(config.MinIOConfig{Endpoint: "localhost:9000"})
	assert.EqualError(t, err, "minio credentials are required")

	_, err = NewMinIO(config.MinIOConfig{Endpoint: "localhost:9000", AccessKey: "a", SecretKey: "s"})
	assert.EqualError(t, err, "minio bucket is required")
}

func TestTranslateError(t *testing.T) {
	notFound := minio.ErrorResponse{Code: "NoSuchKey", Key: "referensi/f1/a1", StatusCode: http.StatusNotFound}
	assert.ErrorIs(t, translateError(notFound), ErrObjectNotFound)

	denied := minio.ErrorResponse{Code: "AccessDenied", StatusCode: http.StatusForbidden}
	err := translateError(denied)
	assert.False(t, errors.Is(err, ErrObjectNotFound))

	plain := fmt.Errorf("dial tcp: connection refused")
	assert.Equal(t, plain, translateError(plain))
}
