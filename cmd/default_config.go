package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/inference-sim/warehouse-sim/sim"
)

// defaultConfigPath is read when --config is not given and the file exists.
const defaultConfigPath = "warehouse.yaml"

// resolveConfig loads the warehouse parameters. An explicitly requested file
// must exist; the implicit default file is optional, and built-in defaults
// apply when it is missing.
func resolveConfig(path string, explicit bool) (sim.Config, error) {
	if !explicit {
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			logrus.Debugf("no %s found, using built-in defaults", path)
			return sim.DefaultConfig(), nil
		}
	}
	cfg, err := sim.LoadConfig(path)
	if err != nil {
		return sim.Config{}, err
	}
	logrus.Infof("Loaded warehouse config from %s", path)
	return *cfg, nil
}

// configYAML renders cfg in parameter-file form, as stored in the episode
// index.
func configYAML(cfg sim.Config) (string, error) {
	b, err := yaml.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("encoding warehouse config: %w", err)
	}
	return string(b), nil
}
