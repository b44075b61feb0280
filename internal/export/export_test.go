package export

import (
	"bytes"
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/hyperifyio/qkbleads/internal/registry"
)

func sampleSet() registry.ResultSet {
	d := time.Date(2019, 3, 5, 0, 0, 0, 0, time.UTC)
	return registry.ResultSet{
		Rows: []registry.Row{
			{
				NIPT:         registry.StrPtr("K12345678A"),
				Name:         registry.StrPtr("Loja, Shpk"),
				Owners:       []string{"Arben Hoxha", "Elira Hoxha"},
				RegisteredAt: &d,
				Keyword:      "gaming",
				Contact:      registry.Contact{Email: registry.StrPtr("info@loja.al")},
			},
			{Keyword: "bar"},
		},
		Contacts: true,
	}
}

func TestWriteCSV_ColumnsAndValues(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleSet()))
	recs, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.Equal(t, []string{
		"nipt", "name", "trade_name", "sector", "owners", "legal_form", "status",
		"city", "citizenship", "registered_at", "keyword", "email", "telefon",
	}, recs[0])
	assert.Equal(t, "K12345678A", recs[1][0])
	assert.Equal(t, "Loja, Shpk", recs[1][1])
	assert.Equal(t, "Arben Hoxha; Elira Hoxha", recs[1][4])
	assert.Equal(t, "2019-03-05", recs[1][9])
	assert.Equal(t, "info@loja.al", recs[1][11])
	assert.Equal(t, "", recs[1][12])
	assert.Equal(t, "bar", recs[2][10])
}

func TestWriteCSV_ErrorColumnOnlyWhenNeeded(t *testing.T) {
	rs := registry.ResultSet{Rows: []registry.Row{
		{NIPT: registry.StrPtr("A"), Keyword: "a"},
		registry.ErrorRow("b", errors.New("unexpected status: 503 Service Unavailable")),
	}}
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, rs))
	recs, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, "error", recs[0][len(recs[0])-1])
	assert.Equal(t, "unexpected status: 503 Service Unavailable", recs[2][11])

	buf.Reset()
	require.NoError(t, WriteCSV(&buf, registry.ResultSet{Rows: rs.Rows[:1]}))
	assert.NotContains(t, strings.SplitN(buf.String(), "\n", 2)[0], "error")
}

func TestWriteCSVFile_CreatesDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "exports", "out.csv")
	require.NoError(t, WriteCSVFile(path, sampleSet()))
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(b), "nipt,name,"))
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary file left behind")
}

func TestWriteXLSXFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.xlsx")
	require.NoError(t, WriteXLSXFile(path, sampleSet()))
	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(f.GetSheetName(0))
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "nipt", rows[0][0])
	assert.Equal(t, "K12345678A", rows[1][0])
	assert.Equal(t, "gaming", rows[1][10])
}

func TestSlug(t *testing.T) {
	cases := map[string]string{
		"Tiranë":         "Tirane",
		"Durrës":         "Durres",
		"Fier Shegan":    "Fier_Shegan",
		"../../etc":      "etc",
		"  ":             "all",
		"Shkodër/Vau":    "ShkoderVau",
		"Gjirokastër 2 ": "Gjirokaster_2",
	}
	for in, want := range cases {
		assert.Equal(t, want, Slug(in), "input %q", in)
	}
}

func TestFileNames(t *testing.T) {
	at := time.Date(2025, 1, 2, 16, 4, 5, 0, time.FixedZone("CET", 3600))
	assert.Equal(t, "qkb_export_Tirane_20250102_150405.csv", FileName("Tiranë", at, ""))
	assert.Equal(t, "qkb_export_Tirane_20250102_150405_dedup.csv", DedupFileName("Tiranë", at, ".csv"))
	assert.Equal(t, "qkb_export_all_20250102_150405.xlsx", FileName("", at, "xlsx"))
	assert.Equal(t, "exports/a.xlsx", WithExt("exports/a.csv", ".xlsx"))
}

func TestResolveWithin(t *testing.T) {
	dir := t.TempDir()
	inside := filepath.Join(dir, "qkb_export_Tirane_20250102_150405.csv")

	got, err := ResolveWithin(dir, inside)
	require.NoError(t, err)
	assert.Equal(t, inside, got)

	got, err = ResolveWithin(dir, filepath.Join(dir, "sub", "..", "x.csv"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "x.csv"), got)

	bad := []string{
		"",
		dir,
		filepath.Join(dir, "..", "secret.csv"),
		"/etc/passwd",
		dir + "-sibling/x.csv",
		filepath.Join(dir, "a\x00b"),
	}
	for _, p := range bad {
		_, err := ResolveWithin(dir, p)
		assert.ErrorIs(t, err, ErrOutsideExportDir, "path %q", p)
	}
}

func TestResolveWithin_Symlinks(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "exports")
	require.NoError(t, os.Mkdir(dir, 0o755))
	secret := filepath.Join(root, "secret.csv")
	require.NoError(t, os.WriteFile(secret, []byte("x"), 0o600))
	kept := filepath.Join(dir, "kept.csv")
	require.NoError(t, os.WriteFile(kept, []byte("x"), 0o600))

	fileLink := filepath.Join(dir, "leak.csv")
	if err := os.Symlink(secret, fileLink); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}
	_, err := ResolveWithin(dir, fileLink)
	assert.ErrorIs(t, err, ErrOutsideExportDir)

	dirLink := filepath.Join(dir, "up")
	require.NoError(t, os.Symlink(root, dirLink))
	_, err = ResolveWithin(dir, filepath.Join(dirLink, "secret.csv"))
	assert.ErrorIs(t, err, ErrOutsideExportDir)
	_, err = ResolveWithin(dir, filepath.Join(dirLink, "missing.csv"))
	assert.ErrorIs(t, err, ErrOutsideExportDir)

	innerLink := filepath.Join(dir, "alias.csv")
	require.NoError(t, os.Symlink(kept, innerLink))
	got, err := ResolveWithin(dir, innerLink)
	require.NoError(t, err)
	assert.Equal(t, innerLink, got)

	linkedDir := filepath.Join(root, "exports-link")
	require.NoError(t, os.Symlink(dir, linkedDir))
	got, err = ResolveWithin(linkedDir, kept)
	require.NoError(t, err)
	assert.Equal(t, kept, got)
}
