package configs

import (
	"errors"
	"flag"
	"os"

	"github.com/hilthontt/devtea/internal/infrastructure/env"
)

var ErrConfigNotFound = errors.New("config file not found: use --config or DEVTEA_CONFIG")

var configCandidates = []string{
	"./config.yaml",
	"./config.yml",
	"../../config.yaml",
	"/etc/devtea/config.yaml",
	"/app/config.yaml",
}

// DetermineConfigPath resolves the config file from the --config flag, then
// DEVTEA_CONFIG, then a list of well-known locations.
func DetermineConfigPath(fs *flag.FlagSet, args []string) (string, error) {
	var configPath string

	fs.StringVar(&configPath, "config", "", "path to config file")
	if err := fs.Parse(args); err != nil {
		return "", err
	}

	if configPath == "" {
		configPath = env.GetString("DEVTEA_CONFIG", "")
	}

	if configPath == "" {
		for _, p := range configCandidates {
			if _, err := os.Stat(p); err == nil {
				configPath = p
				break
			}
		}
	}

	if configPath == "" {
		return "", ErrConfigNotFound
	}

	return configPath, nil
}
