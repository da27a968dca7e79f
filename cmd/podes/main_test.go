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

	"github.com/spektr-org/podes/config"
)

const villagesJSON = `[
  {"id_desa":"3579011001","nama_desa":"Oro-Oro Ombo","nama_kecamatan":"BATU","jumlah_tk":3,"jumlah_sd":4,"kekuatan_sinyal":"Kuat"},
  {"id_desa":"3579011002","nama_desa":"Temas","nama_kecamatan":"BATU","jumlah_tk":5,"jumlah_sd":2,"kekuatan_sinyal":"Sangat Kuat"},
  {"id_desa":"3579021001","nama_desa":"Bumiaji","nama_kecamatan":"BUMIAJI","jumlah_tk":0,"jumlah_sd":1,"kekuatan_sinyal":"Kuat"},
  {"id_desa":"3579031001","nama_desa":"Junrejo","nama_kecamatan":"JUNREJO","jumlah_tk":1,"jumlah_sd":0,"kekuatan_sinyal":null}
]`

// run executes the CLI in a scratch directory against villagesJSON.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	dir := t.TempDir()
	chdir(t, dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "villages.json"), []byte(villagesJSON), 0o644))

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--data", "villages.json", "--log-level", "error"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "podes "+version+"\n", out)
}

func TestSummary(t *testing.T) {
	out, err := run(t, "summary", "--indicator", "jumlah_tk", "--format", "text")
	require.NoError(t, err)
	assert.Contains(t, out, "total 9")

	out, err = run(t, "summary", "--indicator", "kekuatan_sinyal", "--kecamatan", "batu", "--format", "json")
	require.NoError(t, err)
	var res struct {
		TotalDesa int    `json:"totalDesa"`
		Area      string `json:"area"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, 2, res.TotalDesa)
	assert.NotEmpty(t, res.Area)

	_, err = run(t, "summary", "--indicator", "jumlah_tk", "--format", "yaml")
	assert.ErrorContains(t, err, "unknown format")
}

func TestCompare(t *testing.T) {
	out, err := run(t, "compare",
		"--desa", "3579011001,3579021001",
		"--indicators", "jumlah_tk", "--indicators", "jumlah_sd",
		"--format", "csv")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\r\n")
	require.Len(t, lines, 3)
	assert.Equal(t, `1,"Oro-Oro Ombo (BATU)",3,4,7`, lines[1])

	_, err = run(t, "compare", "--desa", "3579011001", "--indicators", "jumlah_tk")
	assert.ErrorContains(t, err, "indicators")
}

func TestCompare_XLSXFile(t *testing.T) {
	out := filepath.Join(t.TempDir(), "ringkasan.xlsx")
	_, err := run(t, "compare",
		"--desa", "3579011001,3579011002",
		"--indicators", "jumlah_tk,kekuatan_sinyal",
		"--format", "xlsx", "--out", out)
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("PK")))
}

func TestRender(t *testing.T) {
	dir := t.TempDir()

	png := filepath.Join(dir, "tk.png")
	_, err := run(t, "render", "--indicator", "jumlah_tk", "--kind", "bar", "--out", png)
	require.NoError(t, err)
	data, err := os.ReadFile(png)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("\x89PNG")))

	html := filepath.Join(dir, "dashboard.html")
	_, err = run(t, "render", "--kind", "dashboard", "--category", "pendidikan", "--out", html)
	require.NoError(t, err)
	data, err = os.ReadFile(html)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Pendidikan")

	_, err = run(t, "render", "--kind", "stacked", "--out", png)
	assert.ErrorContains(t, err, "--indicator")
	_, err = run(t, "render", "--indicator", "jumlah_tk", "--kind", "pie", "--out", png)
	assert.ErrorContains(t, err, "unknown kind")
}

func TestDiscover(t *testing.T) {
	csvPath := filepath.Join(t.TempDir(), "podes.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte(
		"Kode Desa,Desa,Kecamatan,jumlah_tk,Status BUMDes\n"+
			"3579011001,Oro-Oro Ombo,BATU,3,Aktif\n"+
			"3579021001,Bumiaji,BUMIAJI,0,Tidak Aktif\n"), 0o644))

	out, err := run(t, "discover", "--file", csvPath)
	require.NoError(t, err)
	var d struct {
		Rows    int `json:"rows"`
		Columns []struct {
			Key string `json:"key"`
		} `json:"columns"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &d))
	assert.Equal(t, 2, d.Rows)
	assert.Len(t, d.Columns, 5)
}

func TestInvalidConfig(t *testing.T) {
	_, err := run(t, "--source", "oracle", "summary", "--indicator", "jumlah_tk")
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
}

func TestNewLogger(t *testing.T) {
	logger, err := newLogger(config.LoggingConfig{Level: "debug", Development: true})
	require.NoError(t, err)
	assert.NotNil(t, logger)

	logFile := filepath.Join(t.TempDir(), "podes.log")
	logger, err = newLogger(config.LoggingConfig{Level: "warn", File: logFile})
	require.NoError(t, err)
	logger.Warn("written")
	_ = logger.Sync()
	data, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "written")

	_, err = newLogger(config.LoggingConfig{Level: "loud"})
	assert.Error(t, err)
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, splitList([]string{"a, b", "", "c"}))
	assert.Nil(t, splitList(nil))
}

// chdir changes the working directory for the duration of the test and
// restores it on cleanup (stand-in for testing.T.Chdir, added in Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}
