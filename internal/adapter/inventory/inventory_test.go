package inventory

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/couchcryptid/iloc-catalog-etl/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_CSV(t *testing.T) {
	inv, err := Load(filepath.Join("testdata", "stations.csv"))
	require.NoError(t, err)

	assert.Equal(t, 5, inv.Len())
	cnb, ok := inv.Lookup("CNB")
	require.True(t, ok)
	assert.Equal(t, domain.Station{Code: "CNB", NetworkCode: "AU", Latitude: -35.3206, Longitude: 148.9982, Elevation: 595}, cnb)

	qis, ok := inv.Lookup("QIS")
	require.True(t, ok)
	assert.Equal(t, 0.0, qis.Elevation)

	assert.Equal(t, "CNB", inv.Stations()[0].Code)
	assert.Equal(t, "QIS", inv.Stations()[4].Code)
}

func TestLoad_YAML(t *testing.T) {
	inv, err := Load(filepath.Join("testdata", "stations.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 2, inv.Len())
	mun, ok := inv.Lookup("MUN")
	require.True(t, ok)
	assert.Equal(t, "AU", mun.NetworkCode)
	assert.Equal(t, 250.0, mun.Elevation)
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()

	write := func(name, content string) string {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
		return p
	}

	cases := []struct {
		name    string
		path    string
		wantErr string
	}{
		{name: "missing file", path: filepath.Join(dir, "nope.csv"), wantErr: "open inventory"},
		{name: "unsupported ext", path: write("stations.txt", "x"), wantErr: "unsupported format"},
		{name: "missing column", path: write("cols.csv", "station_code,latitude\nCNB,1\n"), wantErr: `missing column "longitude"`},
		{name: "bad latitude", path: write("lat.csv", strings.Join(Columns, ",")+"\nCNB,north,1,1,AU\n"), wantErr: "line 2: latitude"},
		{name: "empty csv", path: write("empty.csv", ""), wantErr: "empty csv"},
		{name: "header only", path: write("header.csv", strings.Join(Columns, ",")+"\n"), wantErr: "no stations"},
		{name: "duplicate", path: write("dup.csv", strings.Join(Columns, ",")+"\nCNB,1,1,1,AU\nCNB,2,2,2,AU\n"), wantErr: "duplicate"},
		{name: "unknown yaml field", path: write("bad.yaml", "stations:\n  - code: CNB\n"), wantErr: "decode yaml"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(tc.path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestWriteCSV_ReadCSV(t *testing.T) {
	stations := []domain.Station{
		{Code: "CNB", NetworkCode: "AU", Latitude: -35.3206, Longitude: 148.9982, Elevation: 595},
		{Code: "WRAB", NetworkCode: "IU", Latitude: -19.9336, Longitude: 134.36, Elevation: 366.5},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, stations))
	assert.True(t, strings.HasPrefix(buf.String(), "station_code,latitude,longitude,elevation,network_code\n"))

	got, err := ReadCSV(&buf)
	require.NoError(t, err)
	assert.Equal(t, stations, got)
}
