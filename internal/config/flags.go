package config

import (
	"os"

	"github.com/spf13/pflag"
)

// PathFromArgs returns the --config value for a command, falling back to OMS_CONFIG.
func PathFromArgs(name string, args []string) (string, error) {
	flagSet := pflag.NewFlagSet(name, pflag.ContinueOnError)
	path := flagSet.StringP("config", "c", os.Getenv("OMS_CONFIG"), "path to the yaml config file")
	if err := flagSet.Parse(args); err != nil {
		return "", err
	}
	return *path, nil
}
