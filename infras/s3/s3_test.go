package s3_test

import (
	"testing"

	"busline/config"
	"busline/infras/otel/mocks"
	"busline/infras/s3"

	"github.com/stretchr/testify/assert"
)

func TestGetObjectNameFromURL(t *testing.T) {
	cfg := &config.Config{}
	cfg.External.S3.PublicDomain = "https://cdn.busline.io/"
	cfg.External.S3.APIEndpoint = "https://s3.local"
	cfg.External.S3.BucketName = "busline"

	client := s3.New(cfg, mocks.NewOtel())

	tests := []struct {
		name string
		url  string
		want string
	}{
		{name: "public domain", url: "https://cdn.busline.io/bus/abc.png", want: "bus/abc.png"},
		{name: "api endpoint", url: "https://s3.local/busline/bus/abc.png", want: "bus/abc.png"},
		{name: "foreign url", url: "https://example.com/bus/abc.png", want: ""},
		{name: "empty", url: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, client.GetObjectNameFromURL("busline", tt.url))
		})
	}
}
