package config

import (
	"io"
	"os"
	"strings"

	"github.com/op/go-logging"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

var log = logging.MustGetLogger("huff/config")

const (
	defaultCompressExtension   = ".hf"
	defaultDecompressExtension = ".uhf"
	defaultLogLevel            = "INFO"
)

type CompressConfig struct {
	Extension string `yaml:"extension"`
}

type DecompressConfig struct {
	Extension string `yaml:"extension"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

type Config struct {
	CompressConfig   `yaml:"compress"`
	DecompressConfig `yaml:"decompress"`
	LoggingConfig    `yaml:"logging"`
}

// Default returns the configuration used when no config file is given.
func Default() Config {
	var c Config
	c.setDefaults()
	return c
}

// Load reads the configuration from the YAML file at path.
// An empty path, a missing or an empty file yield the default configuration.
func Load(path string) (Config, error) {
	var c Config
	if path == "" {
		c.setDefaults()
		return c, nil
	}

	f, err := os.Open(path)
	if os.IsNotExist(err) {
		log.Infof("config file %s not found, using defaults", path)
		c.setDefaults()
		return c, nil
	}
	if err != nil {
		return c, errors.Wrap(err, "config: opening")
	}
	defer f.Close()

	if err = yaml.NewDecoder(f).Decode(&c); err != nil && err != io.EOF {
		return c, errors.Wrapf(err, "config: decoding %s", path)
	}

	c.setDefaults()
	return c, nil
}

// Save writes the configuration as YAML to the file at path.
func (c *Config) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "config: creating")
	}

	enc := yaml.NewEncoder(f)
	if err = enc.Encode(c); err == nil {
		err = enc.Close()
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return errors.Wrapf(err, "config: saving %s", path)
}

// setDefaults will fill empty and incorrect values with default ones
func (c *Config) setDefaults() {
	cc := &c.CompressConfig
	if !validExtension(cc.Extension) {
		if cc.Extension != "" {
			log.Warningf("invalid compress extension %q, set to default: %s", cc.Extension, defaultCompressExtension)
		}
		cc.Extension = defaultCompressExtension
	}

	dc := &c.DecompressConfig
	if !validExtension(dc.Extension) || dc.Extension == cc.Extension {
		if dc.Extension != "" {
			log.Warningf("invalid decompress extension %q, set to default: %s", dc.Extension, defaultDecompressExtension)
		}
		dc.Extension = defaultDecompressExtension
		if dc.Extension == cc.Extension {
			cc.Extension = defaultCompressExtension
		}
	}

	lc := &c.LoggingConfig
	if _, err := logging.LogLevel(lc.Level); err != nil {
		if lc.Level != "" {
			log.Warningf("invalid log level %q, set to default: %s", lc.Level, defaultLogLevel)
		}
		lc.Level = defaultLogLevel
	}
	lc.Level = strings.ToUpper(lc.Level)
}

func validExtension(ext string) bool {
	return len(ext) > 1 && ext[0] == '.' && !strings.ContainsAny(ext, `/\`)
}

// LogLevel returns the configured logging level.
func (c *Config) LogLevel() logging.Level {
	level, err := logging.LogLevel(c.LoggingConfig.Level)
	if err != nil {
		return logging.INFO
	}
	return level
}

// CompressedName returns the default name of the compressed file of name:
// the decompress extension is replaced by the compress extension, else it is appended.
func (c *Config) CompressedName(name string) string {
	return strings.TrimSuffix(name, c.DecompressConfig.Extension) + c.CompressConfig.Extension
}

// DecompressedName returns the default name of the decompressed file of name:
// the compress extension is replaced by the decompress extension, else it is appended.
func (c *Config) DecompressedName(name string) string {
	return strings.TrimSuffix(name, c.CompressConfig.Extension) + c.DecompressConfig.Extension
}
