// Package config defines the command line flags of qjson and loads them from
// arguments, environment variables and JSON configuration files.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/mazrean/qjson/log"
)

// FileName is the configuration file looked up in the working and home directories
const FileName = ".qjson.json"

type Config struct {
	Version     kong.VersionFlag `kong:"short='v',help='Show version and exit.'"`
	File        string           `kong:"arg,optional,default='-',help='Input file. Reads stdin when omitted or -.'"`
	Indent      int              `kong:"short='i',default='0',help='Spaces per indentation level, 0 for compact output',env='QJSON_INDENT'"`
	FloatDigits int              `kong:"default='15',help='Significant digits of floats',env='QJSON_FLOAT_DIGITS'"`
	MaxDepth    int              `kong:"default='200',help='Maximum nesting depth',env='QJSON_MAX_DEPTH'"`
	BufferSize  int              `kong:"default='65536',help='Output buffer size per document in bytes',env='QJSON_BUFFER_SIZE'"`
	Format      string           `kong:"short='f',default='json',enum='json,events',help='Output format',env='QJSON_FORMAT'"`
	Lines       bool             `kong:"help='Treat every input line as a separate document',env='QJSON_LINES'"`
	Workers     int              `kong:"short='w',default='0',help='Documents processed concurrently, 0 for the number of CPUs',env='QJSON_WORKERS'"`
	Zstd        bool             `kong:"short='z',help='Input is zstd compressed. Implied by a .zst file suffix.',env='QJSON_ZSTD'"`
	LogLevel    string           `kong:"short='l',default='info',enum='debug,info,warn,error,silent',help='Log level',env='QJSON_LOG_LEVEL'"`
	Dev         DevFlag          `kong:"group='dev',embed,prefix='dev.'"`
}

type Version struct {
	Version  string
	Revision string
}

// Paths returns the configuration files to load, lowest priority last
func Paths(logger log.Logger) []string {
	var configPaths []string
	wd, err := os.Getwd()
	if err == nil {
		configPaths = append(configPaths, filepath.Join(wd, FileName))
	} else {
		logger.Warnf("failed to get working directory. ignoring config file in working directory")
	}

	userHomeDir, err := os.UserHomeDir()
	if err == nil {
		configPaths = append(configPaths, filepath.Join(userHomeDir, FileName))
	} else {
		logger.Warnf("failed to get user home directory. ignoring config file in user home directory")
	}

	return configPaths
}

// Load parses args, falling back to environment variables and then to the
// given configuration files
func Load(version Version, args []string, configPaths []string, options ...kong.Option) (*Config, error) {
	config := &Config{}
	parser, err := kong.New(config, append([]kong.Option{
		kong.Name("qjson"),
		kong.Description("Re-encode JSON documents through a fixed-buffer streaming encoder"),
		kong.Configuration(kong.JSON, configPaths...),
		kong.Vars{"version": fmt.Sprintf("%s (%s)", version.Version, version.Revision)},
		kong.UsageOnError(),
	}, options...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create parser: %w", err)
	}

	_, err = parser.Parse(args)
	if err != nil {
		return nil, fmt.Errorf("failed to parse arguments: %w", err)
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	// a .zst input implies --zstd
	if strings.HasSuffix(config.File, ".zst") {
		config.Zstd = true
	}

	return config, nil
}

func (c *Config) validate() error {
	if c.Indent < 0 {
		return fmt.Errorf("indent must not be negative: %d", c.Indent)
	}
	if c.FloatDigits < 1 || c.FloatDigits > 17 {
		return fmt.Errorf("float digits must be between 1 and 17: %d", c.FloatDigits)
	}
	if c.MaxDepth < 1 {
		return fmt.Errorf("max depth must be positive: %d", c.MaxDepth)
	}
	if c.BufferSize < 1 {
		return fmt.Errorf("buffer size must be positive: %d", c.BufferSize)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative: %d", c.Workers)
	}

	return nil
}
