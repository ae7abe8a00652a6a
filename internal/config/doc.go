// Package config manages camsync settings.
//
// Settings are stored as JSON and control device matching, transfer
// behavior, and the output layout:
//
//	settings, err := config.Load("/home/user/.config/camsync.json")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	settings.BasePath = "/photos"
//
// DefaultSettings returns the built-in defaults; Load falls back to
// them when the file does not exist, so a config file is optional.
//
// The base output path is normally supplied on the command line and
// overrides any value from the file.
package config
