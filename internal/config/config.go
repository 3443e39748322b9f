package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// DefaultPostTime is when the daily question goes out (UTC).
const DefaultPostTime = "20:00:10"

// DefaultHistoryDBPath is where the question audit log lives unless
// overridden. Set QOTD_HISTORY_DB to "off" to disable history entirely.
const DefaultHistoryDBPath = "qotd_history.db"

type Config struct {
	DiscordToken    string
	AuthorizedUsers []string
	ChannelID       string
	RoleID          string
	PostTime        string
	HistoryDBPath   string
}

// fileConfig is the optional YAML config file (QOTD_CONFIG). Environment
// variables win over file values.
type fileConfig struct {
	DiscordToken    string   `yaml:"discord_token"`
	AuthorizedUsers []string `yaml:"authorized_users"`
	ChannelID       string   `yaml:"channel_id"`
	RoleID          string   `yaml:"role_id"`
	PostTime        string   `yaml:"post_time"`
	HistoryDB       string   `yaml:"history_db"`
}

// Load reads config from an env map. For production use LoadFromEnv.
func Load(env map[string]string) (*Config, error) {
	cfg := &Config{
		DiscordToken:  env["DISCORD_TOKEN"],
		ChannelID:     env["QOTD_CHANNEL_ID"],
		RoleID:        env["QOTD_ROLE_ID"],
		PostTime:      env["QOTD_POST_TIME"],
		HistoryDBPath: env["QOTD_HISTORY_DB"],
	}
	if users := env["QOTD_AUTHORIZED_USERS"]; users != "" {
		cfg.AuthorizedUsers = splitAndTrim(users)
	}

	if path := env["QOTD_CONFIG"]; path != "" {
		if err := mergeFile(cfg, path); err != nil {
			return nil, err
		}
	}

	if cfg.PostTime == "" {
		cfg.PostTime = DefaultPostTime
	}
	if cfg.HistoryDBPath == "" {
		cfg.HistoryDBPath = DefaultHistoryDBPath
	}
	if cfg.HistoryDBPath == "off" {
		cfg.HistoryDBPath = ""
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromEnv loads config from os environment variables.
func LoadFromEnv() (*Config, error) {
	env := map[string]string{
		"DISCORD_TOKEN":         os.Getenv("DISCORD_TOKEN"),
		"QOTD_AUTHORIZED_USERS": os.Getenv("QOTD_AUTHORIZED_USERS"),
		"QOTD_CHANNEL_ID":       os.Getenv("QOTD_CHANNEL_ID"),
		"QOTD_ROLE_ID":          os.Getenv("QOTD_ROLE_ID"),
		"QOTD_POST_TIME":        os.Getenv("QOTD_POST_TIME"),
		"QOTD_HISTORY_DB":       os.Getenv("QOTD_HISTORY_DB"),
		"QOTD_CONFIG":           os.Getenv("QOTD_CONFIG"),
	}
	return Load(env)
}

// mergeFile fills in fields the environment left empty from a YAML file.
func mergeFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "reading config file")
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return errors.Wrap(err, "parsing config file")
	}

	if cfg.DiscordToken == "" {
		cfg.DiscordToken = fc.DiscordToken
	}
	if len(cfg.AuthorizedUsers) == 0 {
		cfg.AuthorizedUsers = fc.AuthorizedUsers
	}
	if cfg.ChannelID == "" {
		cfg.ChannelID = fc.ChannelID
	}
	if cfg.RoleID == "" {
		cfg.RoleID = fc.RoleID
	}
	if cfg.PostTime == "" {
		cfg.PostTime = fc.PostTime
	}
	if cfg.HistoryDBPath == "" {
		cfg.HistoryDBPath = fc.HistoryDB
	}
	return nil
}

func validate(cfg *Config) error {
	if cfg.DiscordToken == "" {
		return errors.New("DISCORD_TOKEN required")
	}
	if len(cfg.AuthorizedUsers) == 0 {
		return errors.New("QOTD_AUTHORIZED_USERS required")
	}
	for _, u := range cfg.AuthorizedUsers {
		if _, err := strconv.ParseUint(u, 10, 64); err != nil {
			return errors.Errorf("invalid user ID %q: must be numeric", u)
		}
	}
	if cfg.ChannelID == "" {
		return errors.New("QOTD_CHANNEL_ID required")
	}
	if _, err := strconv.ParseUint(cfg.ChannelID, 10, 64); err != nil {
		return errors.Errorf("invalid channel ID %q: must be numeric", cfg.ChannelID)
	}
	if cfg.RoleID == "" {
		return errors.New("QOTD_ROLE_ID required")
	}
	if _, err := strconv.ParseUint(cfg.RoleID, 10, 64); err != nil {
		return errors.Errorf("invalid role ID %q: must be numeric", cfg.RoleID)
	}
	if _, err := time.Parse("15:04:05", cfg.PostTime); err != nil {
		return errors.Errorf("invalid post time %q: want HH:MM:SS", cfg.PostTime)
	}
	return nil
}

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
