package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Environment variable names. The deployment-facing ones (bot token, broker
// credentials, storage roots, Mongo) keep their historical names.
const (
	envHTTPAddress         = "HTTP_ADDRESS"
	envBotToken            = "TELEGRAM_BOT_TOKEN"
	envBrokerEndpoint      = "BROKER_ENDPOINT"
	envBrokerUserID        = "USER_ID"
	envBrokerAPIKey        = "API_KEY"
	envBrokerTimeout       = "BROKER_TIMEOUT"
	envMongoURI            = "MONGO_URI"
	envMongoDBName         = "MONGO_DB_NAME"
	envDownloadRoot        = "DOWNLOAD_DIR"
	envThumbnailRoot       = "IMAGES_DIR"
	envPublicBaseURL       = "FILE_HOST_BASE_URL"
	envInlineSizeLimit     = "INLINE_SIZE_LIMIT"
	envSendTimeout         = "SEND_TIMEOUT"
	envThumbnailWorkers    = "THUMBNAIL_WORKERS"
	envThumbnailFrames     = "THUMBNAIL_FRAMES"
	envThumbnailFrameWidth = "THUMBNAIL_FRAME_WIDTH"
)

// parseEnv overlays Config fields from environment variables. A .env file in
// the working directory, if present, is loaded first (existing environment
// variables win). Unset variables leave the current values untouched.
func parseEnv(config *Config) {
	if _, err := os.Stat(".env"); err == nil {
		_ = godotenv.Load(".env")
	}

	v := viper.New()
	v.AutomaticEnv()

	keys := []string{
		envHTTPAddress, envBotToken,
		envBrokerEndpoint, envBrokerUserID, envBrokerAPIKey, envBrokerTimeout,
		envMongoURI, envMongoDBName,
		envDownloadRoot, envThumbnailRoot, envPublicBaseURL,
		envInlineSizeLimit, envSendTimeout,
		envThumbnailWorkers, envThumbnailFrames, envThumbnailFrameWidth,
	}
	for _, k := range keys {
		_ = v.BindEnv(k)
	}

	setString := func(key string, dst *string) {
		if v.IsSet(key) {
			*dst = v.GetString(key)
		}
	}
	setInt := func(key string, dst *int) {
		if v.IsSet(key) {
			*dst = v.GetInt(key)
		}
	}
	setDuration := func(key string, dst *time.Duration) {
		if v.IsSet(key) {
			*dst = v.GetDuration(key)
		}
	}

	setString(envHTTPAddress, &config.EndpointAddrHTTP)
	setString(envBotToken, &config.BotToken)
	setString(envBrokerEndpoint, &config.BrokerEndpoint)
	setString(envBrokerUserID, &config.BrokerUserID)
	setString(envBrokerAPIKey, &config.BrokerAPIKey)
	setDuration(envBrokerTimeout, &config.BrokerTimeout)
	setString(envMongoURI, &config.MongoURI)
	setString(envMongoDBName, &config.MongoDBName)
	setString(envDownloadRoot, &config.DownloadRoot)
	setString(envThumbnailRoot, &config.ThumbnailRoot)
	setString(envPublicBaseURL, &config.PublicBaseURL)
	if v.IsSet(envInlineSizeLimit) {
		config.InlineSizeLimit = v.GetInt64(envInlineSizeLimit)
	}
	setDuration(envSendTimeout, &config.SendTimeout)
	setInt(envThumbnailWorkers, &config.ThumbnailWorkers)
	setInt(envThumbnailFrames, &config.ThumbnailFrames)
	setInt(envThumbnailFrameWidth, &config.ThumbnailFrameWidth)
}
