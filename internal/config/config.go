// Package config loads the gateway credentials from a TOML file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

// Credentials are the ingestion gateway settings. The core never reads
// them; they are handed to the IRC client only.
type Credentials struct {
	Channel    string `toml:"channel"`
	Nickname   string `toml:"nickname"`
	OAuthToken string `toml:"oauth_token"`
}

const placeholderMarker = "your_token_here"

func defaultCredentials() Credentials {
	return Credentials{
		Channel:    "yourchannel",
		Nickname:   "your_bot_username",
		OAuthToken: "oauth:" + placeholderMarker,
	}
}

// Load reads the credentials file at path, creating it with placeholder
// values when missing. The second return reports whether the file was
// created on this call.
func Load(path string) (Credentials, bool, error) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		creds := defaultCredentials()
		if err := write(path, creds); err != nil {
			return Credentials{}, false, fmt.Errorf("create config %s: %w", path, err)
		}
		return creds, true, nil
	}
	var creds Credentials
	if _, err := toml.DecodeFile(path, &creds); err != nil {
		return Credentials{}, false, fmt.Errorf("read config %s: %w", path, err)
	}
	return creds, false, nil
}

func write(path string, creds Credentials) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := toml.NewEncoder(f).Encode(creds); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Incomplete reports whether the credentials are missing or still the
// generated placeholders, in which case the gateway must not be started.
func (c Credentials) Incomplete() bool {
	return c.Nickname == "" || c.OAuthToken == "" ||
		strings.Contains(c.OAuthToken, placeholderMarker)
}
