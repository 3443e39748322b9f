package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validEnv() map[string]string {
	return map[string]string{
		"DISCORD_TOKEN":         "mytoken",
		"QOTD_AUTHORIZED_USERS": "905564480082153543",
		"QOTD_CHANNEL_ID":       "1198507295538151434",
		"QOTD_ROLE_ID":          "1215105959815553096",
	}
}

func TestLoad_Success(t *testing.T) {
	cfg, err := Load(validEnv())
	require.NoError(t, err)
	assert.Equal(t, "mytoken", cfg.DiscordToken)
	assert.Equal(t, []string{"905564480082153543"}, cfg.AuthorizedUsers)
	assert.Equal(t, "1198507295538151434", cfg.ChannelID)
	assert.Equal(t, "1215105959815553096", cfg.RoleID)
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(validEnv())
	require.NoError(t, err)
	assert.Equal(t, DefaultPostTime, cfg.PostTime)
	assert.Equal(t, DefaultHistoryDBPath, cfg.HistoryDBPath)
}

func TestLoad_RequiresToken(t *testing.T) {
	env := validEnv()
	delete(env, "DISCORD_TOKEN")
	_, err := Load(env)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DISCORD_TOKEN")
}

func TestLoad_RequiresAuthorizedUsers(t *testing.T) {
	env := validEnv()
	delete(env, "QOTD_AUTHORIZED_USERS")
	_, err := Load(env)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "QOTD_AUTHORIZED_USERS")
}

func TestLoad_MultipleAuthorizedUsers(t *testing.T) {
	env := validEnv()
	env["QOTD_AUTHORIZED_USERS"] = "123, 456 ,789"
	cfg, err := Load(env)
	require.NoError(t, err)
	assert.Equal(t, []string{"123", "456", "789"}, cfg.AuthorizedUsers)
}

func TestLoad_RejectsNonNumericUserID(t *testing.T) {
	env := validEnv()
	env["QOTD_AUTHORIZED_USERS"] = "123,not-a-snowflake"
	_, err := Load(env)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not-a-snowflake")
}

func TestLoad_RejectsNonNumericChannelID(t *testing.T) {
	env := validEnv()
	env["QOTD_CHANNEL_ID"] = "general"
	_, err := Load(env)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "channel ID")
}

func TestLoad_RejectsNonNumericRoleID(t *testing.T) {
	env := validEnv()
	env["QOTD_ROLE_ID"] = "@everyone"
	_, err := Load(env)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "role ID")
}

func TestLoad_RejectsBadPostTime(t *testing.T) {
	env := validEnv()
	env["QOTD_POST_TIME"] = "8pm"
	_, err := Load(env)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "post time")
}

func TestLoad_HistoryOff(t *testing.T) {
	env := validEnv()
	env["QOTD_HISTORY_DB"] = "off"
	cfg, err := Load(env)
	require.NoError(t, err)
	assert.Empty(t, cfg.HistoryDBPath)
}

// --- Config file tests ---

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "qotd.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_FileFillsMissingFields(t *testing.T) {
	path := writeConfigFile(t, `
discord_token: filetoken
authorized_users: ["111", "222"]
channel_id: "333"
role_id: "444"
post_time: "08:30:00"
`)

	cfg, err := Load(map[string]string{"QOTD_CONFIG": path})
	require.NoError(t, err)
	assert.Equal(t, "filetoken", cfg.DiscordToken)
	assert.Equal(t, []string{"111", "222"}, cfg.AuthorizedUsers)
	assert.Equal(t, "333", cfg.ChannelID)
	assert.Equal(t, "444", cfg.RoleID)
	assert.Equal(t, "08:30:00", cfg.PostTime)
}

func TestLoad_EnvWinsOverFile(t *testing.T) {
	path := writeConfigFile(t, `
discord_token: filetoken
channel_id: "333"
`)

	env := validEnv()
	env["QOTD_CONFIG"] = path
	cfg, err := Load(env)
	require.NoError(t, err)
	assert.Equal(t, "mytoken", cfg.DiscordToken)
	assert.Equal(t, "1198507295538151434", cfg.ChannelID)
}

func TestLoad_MissingFile(t *testing.T) {
	env := validEnv()
	env["QOTD_CONFIG"] = filepath.Join(t.TempDir(), "nope.yml")
	_, err := Load(env)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading config file")
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfigFile(t, "discord_token: [unclosed")
	env := validEnv()
	env["QOTD_CONFIG"] = path
	_, err := Load(env)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing config file")
}
