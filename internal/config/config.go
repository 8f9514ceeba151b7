// Package config handles loading and validating the taalquest configuration.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Config is the root configuration.
type Config struct {
	LLM     LLMConfig     `mapstructure:"llm"`
	TTS     TTSConfig     `mapstructure:"tts"`
	Player  PlayerConfig  `mapstructure:"player"`
	Server  ServerConfig  `mapstructure:"server"`
	Data    DataConfig    `mapstructure:"data"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// LLMConfig selects and configures the language-model backend.
type LLMConfig struct {
	Backend  string `mapstructure:"backend"` // "ollama", "openai" or "mock"
	Model    string `mapstructure:"model"`
	Endpoint string `mapstructure:"endpoint"` // ollama only
	APIKey   string `mapstructure:"api_key"`  // openai only
}

// TTSConfig selects and configures the speech backend and its cache.
type TTSConfig struct {
	Backend  string `mapstructure:"backend"` // "openai", "google", "say" or "mock"
	Model    string `mapstructure:"model"`   // openai only
	APIKey   string `mapstructure:"api_key"` // openai only
	CacheDir string `mapstructure:"cache_dir"`
}

// PlayerConfig configures local playback.
type PlayerConfig struct {
	Backend string `mapstructure:"backend"` // "exec" or "beep"
	PauseMs int    `mapstructure:"pause_ms"`
}

// ServerConfig holds the API listener settings.
type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

// DataConfig points at the reference data files. Characters may be empty
// for the no-roster variant.
type DataConfig struct {
	Locations  string `mapstructure:"locations"`
	Characters string `mapstructure:"characters"`
}

// LoggingConfig holds logrus settings.
type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("llm.backend", "ollama")
	v.SetDefault("llm.model", "gpt-oss:20b")
	v.SetDefault("llm.endpoint", "http://localhost:11434")
	v.SetDefault("llm.api_key", "${OPENAI_API_KEY}")
	v.SetDefault("tts.backend", "say")
	v.SetDefault("tts.model", "gpt-4o-mini-tts")
	v.SetDefault("tts.api_key", "${OPENAI_API_KEY}")
	v.SetDefault("tts.cache_dir", "generated/audio")
	v.SetDefault("player.backend", "exec")
	v.SetDefault("player.pause_ms", 500)
	v.SetDefault("server.addr", ":5000")
	v.SetDefault("data.locations", "data/locations.json")
	v.SetDefault("data.characters", "data/characters.json")
	v.SetDefault("logging.level", "info")
}

// Load reads configuration from file, environment variables and defaults.
// The search order is ./taalquest.yaml then $HOME/.taalquest/taalquest.yaml.
func Load(configFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("taalquest")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.taalquest")
	}

	// TAALQUEST_TTS_BACKEND, TAALQUEST_SERVER_ADDR, etc.
	v.SetEnvPrefix("TAALQUEST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	} else {
		logrus.WithField("path", v.ConfigFileUsed()).Info("loaded config file")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	cfg.LLM.APIKey = resolveEnvRef(cfg.LLM.APIKey)
	cfg.TTS.APIKey = resolveEnvRef(cfg.TTS.APIKey)

	return &cfg, nil
}

// resolveEnvRef replaces "${VAR_NAME}" with the env var value, so API keys
// stay out of config files.
func resolveEnvRef(val string) string {
	if strings.HasPrefix(val, "${") && strings.HasSuffix(val, "}") {
		return os.Getenv(val[2 : len(val)-1])
	}
	return val
}

// SetupLogging configures the global logrus level.
func SetupLogging(cfg LoggingConfig) {
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
}
