package opts

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestFromFile covers the per-extension loaders
func TestFromFile(t *testing.T) {
	tmpDir := t.TempDir()

	write := func(name, content string) string {
		path := filepath.Join(tmpDir, name)
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
		return path
	}

	t.Run("YAML", func(t *testing.T) {
		path := write("conf.yaml", `
name: demo
port: 8080
db:
  host: localhost
features:
  - fast
  - cache
`)

		o, err := FromFile(path)
		require.NoError(t, err)

		assert.Equal(t, "demo", o.GetString("name"))
		assert.Equal(t, 8080, o.GetInt("port"))
		assert.Equal(t, "localhost", o.Sub("db").GetString("host"))
		assert.True(t, o.Sub("features").GetBool("fast"))
	})

	t.Run("JSON", func(t *testing.T) {
		path := write("conf.json", `{"name": "demo", "port": 8080, "db": {"host": "x"}}`)

		o, err := FromFile(path)
		require.NoError(t, err)

		assert.Equal(t, "demo", o.GetString("name"))
		// Whole numbers stay whole through the YAML decoder.
		assert.Equal(t, 8080, o.Get("port"))
		assert.Equal(t, "x", o.Sub("db").GetString("host"))
	})

	t.Run("TOML", func(t *testing.T) {
		path := write("conf.toml", `
name = "demo"

[server]
host = "localhost"
port = 9000
`)

		o, err := FromFile(path)
		require.NoError(t, err)

		assert.Equal(t, "demo", o.GetString("name"))
		assert.Equal(t, "localhost", o.Sub("server").GetString("host"))
		assert.Equal(t, 9000, o.Sub("server").GetInt("port"))
	})

	t.Run("INI", func(t *testing.T) {
		path := write("conf.ini", `
top = level

[server]
Host = localhost
port = 8000

[logging]
level = INFO
`)

		o, err := FromFile(path)
		require.NoError(t, err)

		// Flat section_key keys, keys lowercased, values raw strings.
		assert.Equal(t, "level", o.Get("top"))
		assert.Equal(t, "localhost", o.Get("server_host"))
		assert.Equal(t, "8000", o.Get("server_port"))
		assert.Equal(t, "INFO", o.Get("logging_level"))
	})

	t.Run("Missing", func(t *testing.T) {
		// A missing file is just empty options.
		o, err := FromFile(filepath.Join(tmpDir, "nope.yaml"))
		require.NoError(t, err)
		assert.Equal(t, 0, o.Len())

		// Even with an extension nobody supports.
		o, err = FromFile(filepath.Join(tmpDir, "nope.xyz"))
		require.NoError(t, err)
		assert.Equal(t, 0, o.Len())
	})

	t.Run("UnknownExtension", func(t *testing.T) {
		path := write("conf.xyz", "whatever")

		_, err := FromFile(path)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "Unsupported config format")
	})

	t.Run("BadSyntax", func(t *testing.T) {
		path := write("broken.yaml", "a: [unclosed")

		_, err := FromFile(path)
		assert.Error(t, err)
	})
}

// TestFromEnv covers the environment snapshot
func TestFromEnv(t *testing.T) {
	t.Setenv("OPTSTEST_SERVER_HOST", "envhost")
	t.Setenv("OPTSTEST_DEBUG", "true")
	t.Setenv("OPTSTEST_EMPTY", "")
	t.Setenv("OTHER_VAR", "ignored")

	// The prefix uppercases on the way in.
	o := FromEnv("optstest")

	assert.Equal(t, 3, o.Len())
	assert.Equal(t, "envhost", o.Get("server_host"))

	// Values are raw strings, no coercion here.
	assert.Equal(t, "true", o.Get("debug"))
	assert.Equal(t, "", o.Get("empty"))

	assert.False(t, o.Has("var"))
	assert.False(t, o.Has("other_var"))
}

// TestFromArgs covers the CLI argument forms
func TestFromArgs(t *testing.T) {
	t.Run("Forms", func(t *testing.T) {
		o := FromArgs([]string{
			"--host=localhost",
			"--port", "8080",
			"--debug",
			"--log-level", "warn",
		})

		assert.Equal(t, "localhost", o.Get("host"))
		assert.Equal(t, "8080", o.Get("port"), "values stay raw strings")
		assert.Equal(t, true, o.Get("debug"))
		assert.Equal(t, "warn", o.Get("log_level"))
	})

	t.Run("FlagBeforeFlag", func(t *testing.T) {
		o := FromArgs([]string{"--verbose", "--host", "x"})

		assert.Equal(t, true, o.Get("verbose"))
		assert.Equal(t, "x", o.Get("host"))
	})

	t.Run("TrailingFlag", func(t *testing.T) {
		o := FromArgs([]string{"--host", "x", "--debug"})

		assert.Equal(t, true, o.Get("debug"))
	})

	t.Run("Skipped", func(t *testing.T) {
		o := FromArgs([]string{"positional", "--", "--=bad", "--a", "1"})

		assert.Equal(t, 1, o.Len())
		assert.Equal(t, "1", o.Get("a"))
	})

	t.Run("EqualsInValue", func(t *testing.T) {
		o := FromArgs([]string{"--dsn=host=x port=5"})

		// Only the first = splits.
		assert.Equal(t, "host=x port=5", o.Get("dsn"))
	})

	t.Run("Empty", func(t *testing.T) {
		assert.Equal(t, 0, FromArgs(nil).Len())
	})
}

// TestParse covers the spec dispatch
func TestParse(t *testing.T) {
	t.Setenv("PARSETEST_KEY", "val")

	o, err := Parse("ENV:parsetest")
	require.NoError(t, err)
	assert.Equal(t, "val", o.Get("key"))

	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "c.yaml")
	require.NoError(t, os.WriteFile(path, []byte("a: 1\n"), 0644))

	o, err = Parse(path)
	require.NoError(t, err)
	assert.Equal(t, 1, o.GetInt("a"))
}
