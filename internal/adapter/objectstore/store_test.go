package objectstore

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/power-curve-service/internal/config"
)

func TestNewStore(t *testing.T) {
	tests := []struct {
		name     string
		endpoint string
	}{
		{"bare host", "localhost:9000"},
		{"http scheme stripped", "http://localhost:9000"},
		{"https scheme stripped", "https://minio.example.com"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewStore(&config.Config{
				ArchiveBucket:  "curves",
				MinioEndpoint:  tt.endpoint,
				MinioAccessKey: "key",
				MinioSecretKey: "secret",
			}, slog.Default())
			require.NoError(t, err)
			assert.Equal(t, "curves", s.Bucket())
		})
	}
}

func TestNewStore_RequiresBucket(t *testing.T) {
	_, err := NewStore(&config.Config{MinioEndpoint: "localhost:9000"}, slog.Default())
	assert.Error(t, err)
}

func TestNewStore_InvalidEndpoint(t *testing.T) {
	_, err := NewStore(&config.Config{ArchiveBucket: "curves", MinioEndpoint: "local host:9000"}, slog.Default())
	assert.Error(t, err)
}
