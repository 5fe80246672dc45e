package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultsRoundTrip(t *testing.T) {

	var buf bytes.Buffer
	require.NoError(t, Default().Encode(&buf))

	assert.Contains(t, buf.String(), "zone_width: 14\n")
	assert.Contains(t, buf.String(), "fn_recursion_max: 1000\n")

	cfg, err := Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestEmptyInputGivesDefaults(t *testing.T) {

	cfg, err := Decode(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadOverridesDefaults(t *testing.T) {

	path := filepath.Join(t.TempDir(), "linebasic.yaml")
	data := "zone_width: 10\nprecedence: standard\ntrace:\n  exec: true\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 10, cfg.ZoneWidth)
	assert.Equal(t, Standard, cfg.Precedence)
	assert.True(t, cfg.Trace.Exec)
	assert.Equal(t, 1000, cfg.FnRecursionMax)
}

func TestRejectsBadFiles(t *testing.T) {

	for _, data := range []string{
		"zone_widht: 10\n",
		"zone_width: 0\n",
		"precedence: sideways\n",
		"fn_recursion_max: 0\n",
		"stack_max: -1\n",
		"zones: [1]\n",
	} {
		_, err := Decode(strings.NewReader(data))
		assert.Error(t, err, data)
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
