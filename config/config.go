package config

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

type Config struct {
	Engine  *EngineConfig `yaml:"engine"`
	LogFile string        `yaml:"logFile"`
}

// NewConfig reads a yaml config file. Fields absent from the file keep their
// default values.
func NewConfig(configPath string) (*Config, error) {
	file, err := os.Open(configPath)
	if err != nil {
		return nil, err
	}

	defer file.Close()

	d := yaml.NewDecoder(file)
	config := DefaultConfig()

	if err := d.Decode(config); err != nil && !errors.Is(err, io.EOF) {
		return nil, errors.Wrap(err, "new config")
	}

	if config.Engine == nil {
		config.Engine = DefaultEngineConfig()
	}

	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(err, "new config")
	}

	return config, nil
}

func DefaultConfig() *Config {
	return &Config{
		Engine: DefaultEngineConfig(),
	}
}

// LoadConfig reads config.yml from the configPath directory, creating the
// directory and a default config file when they do not exist.
func LoadConfig(configPath string) (*Config, error) {
	info, err := os.Stat(configPath)
	if os.IsNotExist(err) {
		fmt.Println("Creating config directory " + configPath)
		if err = os.Mkdir(configPath, fs.FileMode(0700)); err != nil {
			return nil, errors.Wrap(err, "load config")
		}
	} else {
		if err != nil {
			return nil, errors.Wrap(err, "load config")
		}

		if !info.IsDir() {
			return nil, errors.Wrap(
				errors.New(configPath+" is not a directory"),
				"load config",
			)
		}
	}

	path := filepath.Join(configPath, "config.yml")
	_, err = os.Stat(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, errors.Wrap(err, "load config")
		}

		fmt.Println("Generating default config...")
		config := DefaultConfig()
		if err = SaveConfig(configPath, config); err != nil {
			return nil, errors.Wrap(err, "load config")
		}

		return config, nil
	}

	return NewConfig(path)
}

func SaveConfig(configPath string, config *Config) error {
	file, err := os.OpenFile(
		filepath.Join(configPath, "config.yml"),
		os.O_CREATE|os.O_RDWR|os.O_TRUNC,
		os.FileMode(0600),
	)
	if err != nil {
		return err
	}

	defer file.Close()

	d := yaml.NewEncoder(file)

	if err := d.Encode(config); err != nil {
		return err
	}

	return d.Close()
}

func (c *Config) Validate() error {
	if c.Engine == nil {
		return errors.New("missing engine config")
	}

	return c.Engine.Validate()
}
