package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSV(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{in: "", want: nil},
		{in: "a", want: []string{"a"}},
		{in: " a , ,b ", want: []string{"a", "b"}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CSV(tt.in), tt.in)
	}
}

func TestEnvDefaults(t *testing.T) {
	t.Setenv("CFG_TEST_STR", "value")
	t.Setenv("CFG_TEST_INT", "42")
	t.Setenv("CFG_TEST_BAD_INT", "nope")
	t.Setenv("CFG_TEST_DUR", "3s")
	t.Setenv("CFG_TEST_FLOAT", "0.08")

	assert.Equal(t, "value", EnvDefault("CFG_TEST_STR", "def"))
	assert.Equal(t, "def", EnvDefault("CFG_TEST_UNSET", "def"))
	assert.Equal(t, 42, EnvIntDefault("CFG_TEST_INT", 1))
	assert.Equal(t, 1, EnvIntDefault("CFG_TEST_BAD_INT", 1))
	assert.Equal(t, 3*time.Second, EnvDurationDefault("CFG_TEST_DUR", time.Second))
	assert.Equal(t, time.Second, EnvDurationDefault("CFG_TEST_UNSET", time.Second))
	assert.InDelta(t, 0.08, EnvFloatDefault("CFG_TEST_FLOAT", 0), 1e-9)
}

func TestLoadDotEnv_DoesNotOverrideEnvironment(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(file, []byte("CFG_DOTENV_A=from_file\nCFG_DOTENV_B=from_file\n"), 0o600))

	t.Setenv("CFG_DOTENV_A", "from_env")
	t.Setenv("CFG_DOTENV_B", "")
	require.NoError(t, os.Unsetenv("CFG_DOTENV_B"))

	LoadDotEnv(file, filepath.Join(dir, "missing.env"))

	assert.Equal(t, "from_env", os.Getenv("CFG_DOTENV_A"))
	assert.Equal(t, "from_file", os.Getenv("CFG_DOTENV_B"))
}

func TestRequireNonEmpty(t *testing.T) {
	t.Parallel()

	require.NoError(t, RequireNonEmpty("x", "X"))
	err := RequireNonEmpty("", "JWT_SECRET")
	var missing *MissingEnvError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "JWT_SECRET", missing.Name)
	assert.Error(t, RequireNonEmptyBytes(nil, "JWT_SECRET"))
}
