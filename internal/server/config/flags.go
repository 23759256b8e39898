package config

import (
	"flag"
	"os"

	"github.com/dmitrijs2005/premrelay/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8000")
//	-m string   MongoDB URI
//	-n string   MongoDB database name
//	-d string   download root directory
//	-i string   thumbnail root directory
//	-u string   public base URL for hosted downloads
//
// The function first filters os.Args to only the flags it recognizes using
// flagx.FilterArgs, avoiding collisions with other components.
func parseFlags(config *Config) {
	// Filter args to include only the flags handled here.
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-m", "-n", "-d", "-i", "-u"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to run the HTTP server")
	fs.StringVar(&config.MongoURI, "m", config.MongoURI, "MongoDB URI")
	fs.StringVar(&config.MongoDBName, "n", config.MongoDBName, "MongoDB database name")
	fs.StringVar(&config.DownloadRoot, "d", config.DownloadRoot, "download root directory")
	fs.StringVar(&config.ThumbnailRoot, "i", config.ThumbnailRoot, "thumbnail root directory")
	fs.StringVar(&config.PublicBaseURL, "u", config.PublicBaseURL, "public base URL for hosted downloads")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
