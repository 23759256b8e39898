package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.LoadDefaults()

	assert.Equal(t, ":8000", cfg.EndpointAddrHTTP)
	assert.Equal(t, "http://api.premium.to/api/2/getfile.php", cfg.BrokerEndpoint)
	assert.Equal(t, 30*time.Second, cfg.BrokerTimeout)
	assert.Equal(t, "mongodb://localhost:27017", cfg.MongoURI)
	assert.Equal(t, "premrelay", cfg.MongoDBName)
	assert.Equal(t, "./downloads", cfg.DownloadRoot)
	assert.Equal(t, "./images", cfg.ThumbnailRoot)
	assert.Equal(t, int64(50*1024*1024), cfg.InlineSizeLimit)
	assert.Equal(t, 60*time.Second, cfg.SendTimeout)
	assert.Equal(t, 2, cfg.ThumbnailWorkers)
	assert.Equal(t, 12, cfg.ThumbnailFrames)
	assert.Equal(t, 480, cfg.ThumbnailFrameWidth)

	// Credentials must not have defaults.
	assert.Empty(t, cfg.BotToken)
	assert.Empty(t, cfg.BrokerUserID)
	assert.Empty(t, cfg.BrokerAPIKey)
	assert.Empty(t, cfg.PublicBaseURL)
}

func TestParseEnv_Overlay(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "tok-123")
	t.Setenv("API_KEY", "key-456")
	t.Setenv("USER_ID", "acc-789")
	t.Setenv("DOWNLOAD_DIR", "/srv/dl")
	t.Setenv("FILE_HOST_BASE_URL", "https://files.example.com")
	t.Setenv("INLINE_SIZE_LIMIT", "1048576")
	t.Setenv("BROKER_TIMEOUT", "10s")
	t.Setenv("THUMBNAIL_FRAMES", "9")

	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)

	assert.Equal(t, "tok-123", cfg.BotToken)
	assert.Equal(t, "key-456", cfg.BrokerAPIKey)
	assert.Equal(t, "acc-789", cfg.BrokerUserID)
	assert.Equal(t, "/srv/dl", cfg.DownloadRoot)
	assert.Equal(t, "https://files.example.com", cfg.PublicBaseURL)
	assert.Equal(t, int64(1048576), cfg.InlineSizeLimit)
	assert.Equal(t, 10*time.Second, cfg.BrokerTimeout)
	assert.Equal(t, 9, cfg.ThumbnailFrames)

	// Unset variables keep defaults.
	assert.Equal(t, ":8000", cfg.EndpointAddrHTTP)
	assert.Equal(t, "premrelay", cfg.MongoDBName)
}

func TestParseEnv_DotEnvFile(t *testing.T) {
	tmp := t.TempDir()
	t.Chdir(tmp)

	err := writeFile(tmp+"/.env", "MONGO_DB_NAME=fromdotenv\n")
	require.NoError(t, err)

	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)

	assert.Equal(t, "fromdotenv", cfg.MongoDBName)
}

func TestParseEnv_EnvironmentWinsOverDotEnv(t *testing.T) {
	tmp := t.TempDir()
	t.Chdir(tmp)

	err := writeFile(tmp+"/.env", "MONGO_DB_NAME=fromdotenv\n")
	require.NoError(t, err)

	t.Setenv("MONGO_DB_NAME", "fromenv")

	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)

	assert.Equal(t, "fromenv", cfg.MongoDBName)
}
