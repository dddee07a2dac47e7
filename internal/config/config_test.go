package config

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
)

func TestCheckConfigValidityValid(t *testing.T) {
	v := viper.New()
	applyDefaults(v)
	v.Set("data_dir", "/tmp/notecards")

	require.NoError(t, CheckConfigValidity(v))
}

func TestCheckConfigValidityInvalid(t *testing.T) {
	v := viper.New()
	v.Set("data_dir", "")
	v.Set("output", "xml")
	v.Set("remote.url", "not a url")
	v.Set("remote.timeout", "soon")
	v.Set("render.word_wrap", -1)
	v.Set("log.level", "loud")
	v.Set("server.db", "postgres://x")

	err := CheckConfigValidity(v)
	require.Error(t, err)
	assert.Len(t, multierr.Errors(err), 7)

	msg := err.Error()
	for _, want := range []string{
		"data_dir is required",
		`output "xml"`,
		`remote.url "not a url" is not a valid url`,
		"remote.timeout must be a positive duration",
		"render.word_wrap must not be negative",
		`log.level "loud" is unknown`,
		"server.db must start with mem:// or sqlite://",
	} {
		assert.Contains(t, msg, want)
	}
}

func TestLoadPrecedence(t *testing.T) {
	dir := t.TempDir()
	cfgFile := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(cfgFile, []byte("output = \"json\"\n[remote]\nurl = \"http://file:1\"\ntimeout = \"5s\"\n"), 0o600))
	t.Setenv("NOTECARDS_REMOTE_URL", "http://env:2")
	t.Setenv("NOTECARDS_DEFAULT_TAGS", "a, b,,c")

	v := viper.New()
	v.SetConfigFile(cfgFile)
	require.NoError(t, Load(context.Background(), v))

	assert.Equal(t, "json", v.GetString("output"))
	assert.Equal(t, "http://env:2", v.GetString("remote.url"))
	assert.Equal(t, 5*time.Second, RemoteTimeout(v))
	assert.Equal(t, "dracula", v.GetString("render.style"))
	assert.Equal(t, []string{"a", "b", "c"}, v.GetStringSlice("default_tags"))
}

func TestResolveServerDB(t *testing.T) {
	v := viper.New()
	v.Set("data_dir", "/srv/notes")
	assert.Equal(t, "sqlite:///srv/notes/notecards.db", ResolveServerDB(v))
	v.Set("server.db", "mem://")
	assert.Equal(t, "mem://", ResolveServerDB(v))
}

func TestRemoteTimeoutFallback(t *testing.T) {
	v := viper.New()
	v.Set("remote.timeout", "-1s")
	assert.Equal(t, 20*time.Second, RemoteTimeout(v))
}

func TestRenderDefaultTOMLHasEveryKey(t *testing.T) {
	out := RenderDefaultTOML()
	assert.True(t, strings.HasPrefix(out, "# notecards configuration"))
	assert.Contains(t, out, "[remote]\n")
	assert.Contains(t, out, "url = \"http://localhost:8080\"")
	assert.Contains(t, out, "word_wrap = 80")
	assert.Contains(t, out, "default_tags = []")

	v := viper.New()
	v.SetConfigType("toml")
	require.NoError(t, v.ReadConfig(strings.NewReader(out)))
	for _, o := range GetConfigOptions() {
		assert.True(t, v.IsSet(o.Key), o.Key)
	}
}

func TestUpdateTOML(t *testing.T) {
	existing := "output = \"json\"\nlegacy = 1\n[remote]\nurl = \"http://x\"\n"
	out, changed := UpdateTOML(existing)
	require.True(t, changed)
	assert.Contains(t, out, "output = \"json\"")
	assert.Contains(t, out, "# OUTDATED: option removed from config schema\n# legacy = 1")
	assert.Contains(t, out, "# Added by config update")
	assert.Contains(t, out, "token = \"\"")
	assert.Equal(t, 1, strings.Count(out, "url = "), "existing keys are not re-added")

	again, changed := UpdateTOML(out)
	assert.False(t, changed)
	assert.Equal(t, out, again)
}
