package s3_test

import (
	"testing"

	"lodge/infras/s3"

	"github.com/stretchr/testify/assert"
)

func TestParseURL(t *testing.T) {
	tests := []struct {
		name       string
		location   string
		wantBucket string
		wantKey    string
		wantErr    bool
	}{
		{name: "bucket and key", location: "s3://lodge-seed/catalog/rooms.json", wantBucket: "lodge-seed", wantKey: "catalog/rooms.json"},
		{name: "missing key", location: "s3://lodge-seed", wantErr: true},
		{name: "empty key", location: "s3://lodge-seed/", wantErr: true},
		{name: "not s3", location: "./rooms.json", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bucket, key, err := s3.ParseURL(tt.location)

			if tt.wantErr {
				assert.ErrorIs(t, err, s3.ErrInvalidURL)

				return
			}

			assert.NoError(t, err)
			assert.Equal(t, tt.wantBucket, bucket)
			assert.Equal(t, tt.wantKey, key)
		})
	}
}

func TestIsURL(t *testing.T) {
	assert.True(t, s3.IsURL("s3://b/k"))
	assert.False(t, s3.IsURL("rooms.json"))
}
