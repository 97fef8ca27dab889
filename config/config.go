package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the onefilellm service
type Config struct {
	General GeneralConfig `mapstructure:"general"`
	Server  ServerConfig  `mapstructure:"server"`
	Output  OutputConfig  `mapstructure:"output"`
	Fetch   FetchConfig   `mapstructure:"fetch"`
	Crawl   CrawlConfig   `mapstructure:"crawl"`
	Token   TokenConfig   `mapstructure:"token"`
}

// GeneralConfig contains general application settings
type GeneralConfig struct {
	Debug    bool   `mapstructure:"debug"`
	LogLevel string `mapstructure:"log_level"`
}

// ServerConfig contains HTTP server settings. The default address binds
// loopback only; exposing the service beyond localhost is a deliberate
// deployment decision, not a config accident.
type ServerConfig struct {
	Address string `mapstructure:"address"`
}

func (s ServerConfig) Normalize() ServerConfig {
	s.Address = strings.TrimSpace(s.Address)
	if s.Address == "" {
		s.Address = "127.0.0.1:5000"
	}
	return s
}

// OutputConfig fixes the artifact directory and filenames. The filenames
// double as the download allow-list, so they are not request-scoped.
type OutputConfig struct {
	Dir              string `mapstructure:"dir"`
	UncompressedFile string `mapstructure:"uncompressed_file"`
	CompressedFile   string `mapstructure:"compressed_file"`
	URLListFile      string `mapstructure:"url_list_file"`
}

func (o OutputConfig) Normalize() OutputConfig {
	o.Dir = strings.TrimSpace(o.Dir)
	if o.Dir == "" {
		o.Dir = "."
	}
	if o.UncompressedFile == "" {
		o.UncompressedFile = "uncompressed_output.txt"
	}
	if o.CompressedFile == "" {
		o.CompressedFile = "compressed_output.txt"
	}
	if o.URLListFile == "" {
		o.URLListFile = "processed_urls.txt"
	}
	return o
}

func (o OutputConfig) Validate() error {
	for _, name := range []string{o.UncompressedFile, o.CompressedFile, o.URLListFile} {
		if filepath.Base(name) != name {
			return fmt.Errorf("output filename %q must not contain path separators", name)
		}
	}
	return nil
}

// FetchConfig controls outbound HTTP behaviour for all retrieval backends.
// Timeout zero means no deadline at all: a backend call runs until it
// completes or fails. That matches the upstream behaviour and is the
// documented default, not an omission.
type FetchConfig struct {
	Timeout     time.Duration `mapstructure:"timeout"`
	UserAgent   string        `mapstructure:"user_agent"`
	GithubToken string        `mapstructure:"github_token"`
}

func (f FetchConfig) Normalize() FetchConfig {
	if strings.TrimSpace(f.UserAgent) == "" {
		f.UserAgent = "onefilellm/1.0"
	}
	return f
}

func (f FetchConfig) Validate() error {
	if f.Timeout < 0 {
		return fmt.Errorf("fetch.timeout cannot be negative")
	}
	return nil
}

// CrawlConfig bounds generic web traversal.
type CrawlConfig struct {
	MaxDepth    int  `mapstructure:"max_depth"`
	MaxPages    int  `mapstructure:"max_pages"`
	IncludePDFs bool `mapstructure:"include_pdfs"`
	IgnoreEPUBs bool `mapstructure:"ignore_epubs"`
}

func (c CrawlConfig) Normalize() CrawlConfig {
	if c.MaxDepth <= 0 {
		c.MaxDepth = 2
	}
	if c.MaxPages <= 0 {
		c.MaxPages = 100
	}
	return c
}

// TokenConfig selects the tokenizer encoding used for artifact token counts.
type TokenConfig struct {
	Encoding string `mapstructure:"encoding"`
}

func (t TokenConfig) Normalize() TokenConfig {
	if strings.TrimSpace(t.Encoding) == "" {
		t.Encoding = "cl100k_base"
	}
	return t
}

// LoadConfig loads config from file
func LoadConfig(path string) *Config {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.SetDefault("server.address", "127.0.0.1:5000")
	viper.SetDefault("output.dir", ".")
	viper.SetDefault("crawl.max_depth", 2)
	viper.SetDefault("crawl.max_pages", 100)
	viper.SetDefault("crawl.include_pdfs", true)
	viper.SetDefault("crawl.ignore_epubs", true)
	viper.SetDefault("token.encoding", "cl100k_base")

	if path == "" {
		viper.AddConfigPath("./config")
		viper.AddConfigPath(".")
		exe, _ := os.Executable()
		exeDir := filepath.Dir(exe)
		viper.AddConfigPath(exeDir)
		viper.AddConfigPath(filepath.Join(exeDir, ".."))
	} else {
		viper.SetConfigFile(path)
	}

	viper.SetEnvPrefix("ONEFILE")
	replacer := strings.NewReplacer(".", "_")
	viper.SetEnvKeyReplacer(replacer)

	viper.AutomaticEnv() // read in environment variables that match (ONEFILE_*)

	// A missing config file is fine: defaults plus env cover everything.
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			panic(fmt.Errorf("fatal error config file: %w", err))
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		panic(fmt.Errorf("fatal error config file: %w", err))
	}
	config.Server = config.Server.Normalize()
	config.Output = config.Output.Normalize()
	config.Fetch = config.Fetch.Normalize()
	config.Crawl = config.Crawl.Normalize()
	config.Token = config.Token.Normalize()

	if err := config.Output.Validate(); err != nil {
		panic(err)
	}
	if err := config.Fetch.Validate(); err != nil {
		panic(err)
	}
	return &config
}
