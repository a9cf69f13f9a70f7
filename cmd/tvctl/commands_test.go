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

	"github.com/magabrotheeeer/tv-manager/internal/lib/password"
	"github.com/magabrotheeeer/tv-manager/internal/models"
)

const sampleCSV = "ID,Nome,Usuario,WhatsApp,Valor,Meses,Inicio,Vencimento,TotalPago,Ativo\n" +
	"c1,Ana Souza,ana,11988887777,30,1,2099-01-01,2099-02-01,30,SIM\n" +
	"c2,Bruno,bru,21977776666,25,3,2099-01-01,2099-04-01,25,NAO\n"

func writeConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	cfg := "env: local\n" +
		"location: UTC\n" +
		"storage:\n" +
		"  driver: badger\n" +
		"  badger_path: " + filepath.Join(dir, "badger") + "\n"
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0o600))
	return path
}

func run(t *testing.T, cfgPath, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	c := newCLI(strings.NewReader(stdin), &out)
	err := execute(c, append([]string{"--config", cfgPath}, args...))
	return out.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestImportCSV_Prompt(t *testing.T) {
	cfg := writeConfig(t)
	file := writeFile(t, "clients.csv", sampleCSV)

	out, err := run(t, cfg, "n\n", "import", "csv", "--file", file)
	require.NoError(t, err)
	assert.Contains(t, out, "Import 2 client(s), 0 row(s) skipped?")
	assert.Contains(t, out, "import cancelled")

	out, err = run(t, cfg, "", "clients", "list", "--all")
	require.NoError(t, err)
	assert.Contains(t, out, "0 client(s)")

	out, err = run(t, cfg, "s\n", "import", "csv", "--file", file)
	require.NoError(t, err)
	assert.Contains(t, out, "imported 2 client(s), skipped 0 row(s)")

	out, err = run(t, cfg, "", "clients", "list", "--all")
	require.NoError(t, err)
	assert.Contains(t, out, "Ana Souza")
	assert.Contains(t, out, "INACTIVE")
	assert.Contains(t, out, "LAST CONTACT")
	assert.Contains(t, out, "2 client(s)")

	out, err = run(t, cfg, "", "clients", "list", "--query", "bru")
	require.NoError(t, err)
	assert.Contains(t, out, "Bruno")
	assert.NotContains(t, out, "Ana Souza")
}

func TestRenewAndDashboard(t *testing.T) {
	cfg := writeConfig(t)
	file := writeFile(t, "clients.csv", sampleCSV)
	_, err := run(t, cfg, "", "import", "csv", "--file", file, "--yes")
	require.NoError(t, err)

	out, err := run(t, cfg, "", "renew", "c1", "--months", "2", "--value", "55,50")
	require.NoError(t, err)
	assert.Contains(t, out, "Ana Souza renewed until 2099-04-01")

	out, err = run(t, cfg, "", "dashboard")
	require.NoError(t, err)
	assert.Contains(t, out, "Months sold")
	assert.Contains(t, out, "R$ 110,50")

	out, err = run(t, cfg, "", "history", "--group", "month")
	require.NoError(t, err)
	assert.Contains(t, out, "Ana Souza")

	_, err = run(t, cfg, "", "history", "--group", "year")
	assert.Error(t, err)

	_, err = run(t, cfg, "", "renew", "missing", "--value", "10")
	assert.Error(t, err)

	_, err = run(t, cfg, "", "renew", "c1", "--months", "0", "--value", "10")
	assert.Error(t, err)
}

func TestExportImportJSON(t *testing.T) {
	cfg := writeConfig(t)
	file := writeFile(t, "clients.csv", sampleCSV)
	_, err := run(t, cfg, "", "import", "csv", "--file", file, "--yes")
	require.NoError(t, err)

	backupPath := filepath.Join(t.TempDir(), "backup.json")
	out, err := run(t, cfg, "", "export", "json", "--out", backupPath)
	require.NoError(t, err)
	assert.Contains(t, out, "saved "+backupPath)

	raw, err := os.ReadFile(backupPath)
	require.NoError(t, err)
	var b models.Backup
	require.NoError(t, json.Unmarshal(raw, &b))
	require.Len(t, b.Clients, 2)

	out, err = run(t, cfg, "", "export", "csv")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "\ufeffID,Nome"))

	other := writeConfig(t)
	out, err = run(t, other, "yes\n", "import", "json", "--file", backupPath)
	require.NoError(t, err)
	assert.Contains(t, out, "restored 2 client(s)")

	out, err = run(t, other, "", "clients", "list", "--all")
	require.NoError(t, err)
	assert.Contains(t, out, "Bruno")

	bad := writeFile(t, "bad.json", `{"settings":{}}`)
	_, err = run(t, other, "", "import", "json", "--file", bad, "--yes")
	assert.Error(t, err)

	_, err = run(t, other, "", "export", "xml")
	assert.Error(t, err)
}

func TestHashPassword(t *testing.T) {
	var out bytes.Buffer
	c := newCLI(strings.NewReader("s3cret\n"), &out)
	require.NoError(t, execute(c, []string{"hash-password"}))

	hash := strings.TrimSpace(out.String())
	assert.NoError(t, password.CompareHash(hash, "s3cret"))

	c = newCLI(strings.NewReader(""), &out)
	assert.Error(t, execute(c, []string{"hash-password"}))
}
