package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0o600)
}

func TestParseFlags_Overrides(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	os.Args = []string{"testbin",
		"-a", ":9000",
		"-m", "mongodb://db:27017",
		"-n", "relay",
		"-d", "/data/dl",
		"-i", "/data/img",
		"-u", "https://dl.example.com",
	}

	cfg := &Config{}
	cfg.LoadDefaults()
	parseFlags(cfg)

	assert.Equal(t, ":9000", cfg.EndpointAddrHTTP)
	assert.Equal(t, "mongodb://db:27017", cfg.MongoURI)
	assert.Equal(t, "relay", cfg.MongoDBName)
	assert.Equal(t, "/data/dl", cfg.DownloadRoot)
	assert.Equal(t, "/data/img", cfg.ThumbnailRoot)
	assert.Equal(t, "https://dl.example.com", cfg.PublicBaseURL)
}

func TestParseFlags_IgnoresUnknownFlags(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	os.Args = []string{"testbin", "-test.v", "-a", ":7000", "-zz", "1"}

	cfg := &Config{}
	cfg.LoadDefaults()
	parseFlags(cfg)

	assert.Equal(t, ":7000", cfg.EndpointAddrHTTP)
}
