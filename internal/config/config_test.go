package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv unsets every FILEINDEX_* variable for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"FILEINDEX_ROOT", "FILEINDEX_DOMAINS", "FILEINDEX_EXTENSIONS",
		"FILEINDEX_OUTPUT", "FILEINDEX_RESPECT_IGNORE", "FILEINDEX_LOG_LEVEL",
	} {
		t.Setenv(key, "")
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestNewConfig_ReturnsDefaults(t *testing.T) {
	cfg := NewConfig()

	assert.Equal(t, 1, cfg.Version)
	assert.Equal(t, []string{"tracon", "enroute"}, cfg.Domains)
	assert.Equal(t, []string{".json", ".geojson"}, cfg.Extensions)
	assert.Equal(t, "file-index.json", cfg.Output)
	assert.False(t, cfg.RespectIgnoreFiles)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_NoFileUsesDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(t.TempDir())

	require.NoError(t, err)
	assert.Equal(t, NewConfig(), cfg)
}

func TestLoad_ProjectFileOverridesDefaults(t *testing.T) {
	// Given: a project config in the root
	clearEnv(t)
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ".fileindex.yaml"), `
domains: [tracon, enroute, oceanic]
output: index/files.json
respect_ignore_files: true
`)

	// When: loading
	cfg, err := Load(root)

	// Then: file values win, unset values keep defaults
	require.NoError(t, err)
	assert.Equal(t, []string{"tracon", "enroute", "oceanic"}, cfg.Domains)
	assert.Equal(t, []string{".json", ".geojson"}, cfg.Extensions)
	assert.Equal(t, "index/files.json", cfg.Output)
	assert.True(t, cfg.RespectIgnoreFiles)
}

func TestLoad_YmlFallback(t *testing.T) {
	clearEnv(t)
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ".fileindex.yml"), "extensions: [.geojson]\n")

	cfg, err := Load(root)

	require.NoError(t, err)
	assert.Equal(t, []string{".geojson"}, cfg.Extensions)
}

func TestLoad_YamlTakesPrecedenceOverYml(t *testing.T) {
	clearEnv(t)
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ".fileindex.yaml"), "output: a.json\n")
	writeFile(t, filepath.Join(root, ".fileindex.yml"), "output: b.json\n")

	cfg, err := Load(root)

	require.NoError(t, err)
	assert.Equal(t, "a.json", cfg.Output)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	clearEnv(t)
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ".fileindex.yaml"), "domains: [tracon]\nrespect_ignore_files: true\n")
	t.Setenv("FILEINDEX_DOMAINS", " enroute , ,tracon")
	t.Setenv("FILEINDEX_RESPECT_IGNORE", "false")
	t.Setenv("FILEINDEX_LOG_LEVEL", "debug")

	cfg, err := Load(root)

	require.NoError(t, err)
	assert.Equal(t, []string{"enroute", "tracon"}, cfg.Domains)
	assert.False(t, cfg.RespectIgnoreFiles)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoad_InvalidYAML(t *testing.T) {
	clearEnv(t)
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ".fileindex.yaml"), "domains: [unclosed\n")

	_, err := Load(root)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config file")
}

func TestLoad_InvalidValues(t *testing.T) {
	clearEnv(t)
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ".fileindex.yaml"), "extensions: [geojson]\n")

	_, err := Load(root)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "defaults ok", mutate: func(c *Config) {}},
		{name: "no domains", mutate: func(c *Config) { c.Domains = nil }, wantErr: "domains must not be empty"},
		{name: "nested domain", mutate: func(c *Config) { c.Domains = []string{"a/b"} }, wantErr: "plain directory name"},
		{name: "dot domain", mutate: func(c *Config) { c.Domains = []string{".."} }, wantErr: "plain directory name"},
		{name: "duplicate domain", mutate: func(c *Config) { c.Domains = []string{"tracon", "tracon"} }, wantErr: "listed twice"},
		{name: "no extensions", mutate: func(c *Config) { c.Extensions = []string{} }, wantErr: "extensions must not be empty"},
		{name: "bare dot", mutate: func(c *Config) { c.Extensions = []string{"."} }, wantErr: "must start with '.'"},
		{name: "empty output", mutate: func(c *Config) { c.Output = " " }, wantErr: "output must not be empty"},
		{name: "bad level", mutate: func(c *Config) { c.LogLevel = "loud" }, wantErr: "log_level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestResolveRoot(t *testing.T) {
	clearEnv(t)
	assert.Equal(t, DefaultRoot, ResolveRoot(""))

	t.Setenv("FILEINDEX_ROOT", "/srv/data")
	assert.Equal(t, "/srv/data", ResolveRoot(""))
	assert.Equal(t, "explicit", ResolveRoot("explicit"))
}

func TestLoadDotEnv_DoesNotOverrideEnvironment(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	writeFile(t, envPath, "FILEINDEX_OUTPUT=from-dotenv.json\nFILEINDEX_LOG_LEVEL=error\n")
	t.Setenv("FILEINDEX_LOG_LEVEL", "info")
	// godotenv only fills variables that are unset, so drop the empty one.
	require.NoError(t, os.Unsetenv("FILEINDEX_OUTPUT"))

	require.NoError(t, LoadDotEnv(envPath))
	t.Cleanup(func() { _ = os.Unsetenv("FILEINDEX_OUTPUT") })

	assert.Equal(t, "from-dotenv.json", os.Getenv("FILEINDEX_OUTPUT"))
	assert.Equal(t, "info", os.Getenv("FILEINDEX_LOG_LEVEL"))
}

func TestLoadDotEnv_MissingFileIsFine(t *testing.T) {
	assert.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), ".env")))
	assert.NoError(t, LoadDotEnv(""))
}

func TestOutputPath(t *testing.T) {
	cfg := NewConfig()
	assert.Equal(t, filepath.Join("root", "file-index.json"), cfg.OutputPath("root"))

	abs := filepath.Join(t.TempDir(), "out.json")
	cfg.Output = abs
	assert.Equal(t, abs, cfg.OutputPath("root"))
}

func TestWriteYAML_RoundTripsThroughLoad(t *testing.T) {
	clearEnv(t)
	root := t.TempDir()
	cfg := NewConfig()
	cfg.Domains = []string{"enroute"}

	require.NoError(t, cfg.WriteYAML(filepath.Join(root, FileNames[0])))
	loaded, err := Load(root)

	require.NoError(t, err)
	assert.Equal(t, []string{"enroute"}, loaded.Domains)
	assert.Equal(t, FindFile(root), filepath.Join(root, ".fileindex.yaml"))
}
