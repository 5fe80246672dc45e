package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, contents string) string {

	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	return path
}

func invoke(t *testing.T, stdin string, args ...string) (int, string, string) {

	t.Helper()

	var stdout, stderr bytes.Buffer

	code := run(args, strings.NewReader(stdin), &stdout, &stderr)

	return code, stdout.String(), stderr.String()
}

func TestRunProgram(t *testing.T) {

	path := writeFile(t, "hello.bas", "10 PRINT \"hello\"; 1 + 2 * 3")

	code, out, errOut := invoke(t, "", "-q", path)
	assert.Equal(t, 0, code, errOut)
	assert.Equal(t, "hello9\n", out)
	assert.Empty(t, errOut)
}

func TestBannerAndStats(t *testing.T) {

	path := writeFile(t, "x.bas", "10 X = 1\n20 END\n")

	code, _, errOut := invoke(t, "", "-stats", path)
	assert.Equal(t, 0, code)
	assert.Contains(t, errOut, "linebasic "+VERSION)
	assert.Contains(t, errOut, "Statements executed: 2")
}

func TestStandardPrecedenceFlag(t *testing.T) {

	path := writeFile(t, "p.bas", "10 PRINT 1 + 2 * 3\n")

	_, out, _ := invoke(t, "", "-q", "-p", path)
	assert.Equal(t, "7\n", out)
}

func TestInputFromStdin(t *testing.T) {

	path := writeFile(t, "in.bas", "10 INPUT A%\n20 PRINT A% * 2\n")

	code, out, _ := invoke(t, "21\n", "-q", path)
	assert.Equal(t, 0, code)
	assert.Equal(t, "? 42\n", out)
}

func TestMacrosAreExpanded(t *testing.T) {

	path := writeFile(t, "m.bas", "10 DEF SQUARE(X) = \"X * X\"\n20 PRINT SQUARE(4)\n")

	code, out, errOut := invoke(t, "", "-q", path)
	assert.Equal(t, 0, code, errOut)
	assert.Equal(t, "16\n", out)
}

func TestCompileToJSON(t *testing.T) {

	path := writeFile(t, "c.bas", "10 DATA 1\n20 PRINT 2\n")

	code, out, errOut := invoke(t, "", "-q", "-c", "-b", path)
	require.Equal(t, 0, code, errOut)

	var doc map[string][]map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Len(t, doc["SETTINGS"], 1)
	assert.Len(t, doc["PROGRAM"], 1)
	assert.Equal(t, "PRINT 2", doc["PROGRAM"][0]["text"])
}

func TestTraceFlag(t *testing.T) {

	path := writeFile(t, "t.bas", "10 X% = 1\n")

	code, _, errOut := invoke(t, "", "-q", "-v", path)
	assert.Equal(t, 0, code)
	assert.Contains(t, errOut, "[10] LET X% = 1\n")
	assert.NotContains(t, errOut, "Variable X%")

	code, _, errOut = invoke(t, "", "-q", "-v", "-v", path)
	assert.Equal(t, 0, code)
	assert.Contains(t, errOut, "Variable X% changed from 0 to 1\n")
}

func TestErrorsExitOne(t *testing.T) {

	syntax := writeFile(t, "s.bas", "10 PRINT (1\n")
	code, _, errOut := invoke(t, "", "-q", syntax)
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "SyntaxError")

	runtimeErr := writeFile(t, "r.bas", "10 PRINT 1 / 0\n")
	code, _, errOut = invoke(t, "", "-q", runtimeErr)
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "DivideByZeroError")
	assert.Contains(t, errOut, "at line 10")

	code, _, _ = invoke(t, "", "-q")
	assert.Equal(t, 1, code)

	code, _, _ = invoke(t, "", "-q", "-t", "c", syntax)
	assert.Equal(t, 1, code)

	code, _, _ = invoke(t, "", "-nosuchflag")
	assert.Equal(t, 1, code)

	code, _, _ = invoke(t, "", "-q", filepath.Join(t.TempDir(), "missing.bas"))
	assert.Equal(t, 1, code)
}

func TestConfigFile(t *testing.T) {

	cfg := writeFile(t, "linebasic.yaml", "precedence: standard\nzone_width: 5\n")
	path := writeFile(t, "z.bas", "10 PRINT 1 + 2 * 3, 4\n")

	code, out, errOut := invoke(t, "", "-q", "-config", cfg, path)
	assert.Equal(t, 0, code, errOut)
	assert.Equal(t, "7    4\n", out)

	code, out, _ = invoke(t, "", "-config", cfg, "-dump-config")
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "zone_width: 5\n")

	bad := writeFile(t, "bad.yaml", "zone: 5\n")
	code, _, _ = invoke(t, "", "-q", "-config", bad, path)
	assert.Equal(t, 1, code)
}
