// Package config handles configuration for the premrelay server,
// including defaults, an environment/.env overlay, and command-line flags.
package config

import "time"

// Config holds runtime settings for the premrelay server.
//
// Fields:
//   - EndpointAddrHTTP: bind address for the hosted-download HTTP endpoint.
//   - BotToken: Telegram bot token.
//   - BrokerEndpoint / BrokerUserID / BrokerAPIKey: premium-download broker
//     endpoint and credentials.
//   - BrokerTimeout: limit on the time to the broker's first response header.
//     Body streaming is not bounded by it.
//   - MongoURI / MongoDBName: persistence settings.
//   - DownloadRoot / ThumbnailRoot: local storage roots. Finalized files live
//     at <DownloadRoot>/<requester_id>/<hash>, contact sheets at
//     <ThumbnailRoot>/<requester_id>/<hash>.jpg.
//   - PublicBaseURL: base for hosted download links
//     (<PublicBaseURL>/download/<hash>). Required for files at or above
//     InlineSizeLimit.
//   - InlineSizeLimit: byte threshold below which files are sent inline.
//   - SendTimeout: limit on an inline file transmission.
//   - ThumbnailWorkers / ThumbnailFrames / ThumbnailFrameWidth: contact-sheet
//     generation settings.
type Config struct {
	EndpointAddrHTTP    string
	BotToken            string
	BrokerEndpoint      string
	BrokerUserID        string
	BrokerAPIKey        string
	BrokerTimeout       time.Duration
	MongoURI            string
	MongoDBName         string
	DownloadRoot        string
	ThumbnailRoot       string
	PublicBaseURL       string
	InlineSizeLimit     int64
	SendTimeout         time.Duration
	ThumbnailWorkers    int
	ThumbnailFrames     int
	ThumbnailFrameWidth int
}

// LoadDefaults populates Config with sensible development defaults.
// NOTE: Credentials are empty and must be provided via the environment.
func (c *Config) LoadDefaults() {
	c.EndpointAddrHTTP = ":8000"
	c.BrokerEndpoint = "http://api.premium.to/api/2/getfile.php"
	c.BrokerTimeout = 30 * time.Second
	c.MongoURI = "mongodb://localhost:27017"
	c.MongoDBName = "premrelay"
	c.DownloadRoot = "./downloads"
	c.ThumbnailRoot = "./images"
	c.InlineSizeLimit = 50 * 1024 * 1024
	c.SendTimeout = 60 * time.Second
	c.ThumbnailWorkers = 2
	c.ThumbnailFrames = 12
	c.ThumbnailFrameWidth = 480
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from the environment (including an optional .env file) and finally from
// command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}
