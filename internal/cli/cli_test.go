package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path"
	"path/filepath"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/brainmap/internal/rma"
)

// fixtures shared with the lookup tests
const fixtures = "../lookup/testdata"

var routes = map[string]string{
	"[id$eq1018],ontology[id$in1,12]":          "structure_1018.xml",
	"[acronym$eq'AUDv'],ontology[id$in1,12]":   "structure_1018.xml",
	"products[id$eq1],genes[id$eq18376]":       "gene_18376.xml",
	"products[id$eq1],genes[acronym$eq'Pdyn']": "gene_18376.xml",
}

func newServer(t *testing.T) string {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		criteria := r.URL.Query().Get("criteria")
		fixture, ok := routes[criteria]
		switch {
		case path.Ext(r.URL.Path) == ".json" && ok:
			fixture = "experiments_18376.json"
		case !ok:
			fixture = "empty" + path.Ext(r.URL.Path)
		}
		body, err := os.ReadFile(filepath.Join(fixtures, fixture))
		if err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write(body)
	}))
	t.Cleanup(server.Close)
	return server.URL
}

// run executes brainmap with args against a fresh HOME and returns stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())

	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "brainmap v"+Version+"\n", out)
}

func TestStructureInfo_JSON(t *testing.T) {
	base := newServer(t)
	out, err := run(t, "structure", "info", "--base-url", base, "--id", "1018",
		"--attr", "acronym", "--attr", "id", "--attr", "random_string", "--json")
	require.NoError(t, err)

	var got struct {
		Entity     string         `json:"entity"`
		Attributes map[string]any `json:"attributes"`
		Skipped    []string       `json:"skipped"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "structure", got.Entity)
	assert.Equal(t, "AUDv", got.Attributes["acronym"])
	assert.EqualValues(t, 1018, got.Attributes["id"])
	assert.Equal(t, []string{"random_string"}, got.Skipped)
}

func TestStructureInfo_Table(t *testing.T) {
	base := newServer(t)
	out, err := run(t, "structure", "info", "--base-url", base, "--acronym", "AUDv", "--attr", "name")
	require.NoError(t, err)
	assert.Contains(t, out, "Ventral auditory area")
}

func TestStructureCoords(t *testing.T) {
	base := newServer(t)
	out, err := run(t, "structure", "coords", "--base-url", base, "--id", "1018", "--json")
	require.NoError(t, err)

	var got struct {
		Right []map[string]int64 `json:"right"`
		Left  []map[string]int64 `json:"left"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, []map[string]int64{{"x": 7800, "y": 3400, "z": 1050}}, got.Right)
	assert.Equal(t, []map[string]int64{{"x": 7800, "y": 3400, "z": 10350}}, got.Left)
}

func TestStructureInfo_NoIdentifier(t *testing.T) {
	base := newServer(t)
	_, err := run(t, "structure", "info", "--base-url", base)
	require.Error(t, err)
	assert.True(t, errors.Is(err, rma.ErrInvalidInput))
	assert.NotEmpty(t, errors.GetAllHints(err))
}

func TestGeneInfo_SingleValued(t *testing.T) {
	base := newServer(t)
	out, err := run(t, "gene", "info", "--base-url", base, "--id", "18376",
		"--attr", "name", "--attr", "entrez-id", "--json")
	require.NoError(t, err)

	var got struct {
		Attributes map[string]any `json:"attributes"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "prodynorphin", got.Attributes["name"])
	assert.EqualValues(t, 18610, got.Attributes["entrez-id"])
}

func TestAttributes(t *testing.T) {
	out, err := run(t, "structure", "attributes", "--json")
	require.NoError(t, err)

	var got []struct {
		Name string `json:"name"`
		Kind string `json:"kind"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got, 17)
	assert.Equal(t, "acronym", got[0].Name)

	out, err = run(t, "gene", "attributes")
	require.NoError(t, err)
	assert.Contains(t, out, "entrez-id")
	assert.Contains(t, out, "genes/gene/entrez-id")
}

func TestGeneCheck(t *testing.T) {
	base := newServer(t)

	out, err := run(t, "gene", "check", "--base-url", base, "--acronym", "Pdyn")
	require.NoError(t, err)
	assert.Contains(t, out, "is valid")

	_, err = run(t, "gene", "check", "--base-url", base, "--acronym", "random_string")
	require.Error(t, err)
	assert.True(t, errors.Is(err, rma.ErrEntityNotFound))
}

func TestGeneExperiments(t *testing.T) {
	base := newServer(t)
	out, err := run(t, "gene", "experiments", "--base-url", base, "--id", "18376", "--plane", "coronal")
	require.NoError(t, err)
	assert.Equal(t, "79591645\n", out)

	_, err = run(t, "gene", "experiments", "--base-url", base, "--id", "18376", "--plane", "axial")
	assert.True(t, errors.Is(err, rma.ErrInvalidInput))
}

func TestBatch(t *testing.T) {
	base := newServer(t)
	file := filepath.Join(t.TempDir(), "ids.txt")
	require.NoError(t, os.WriteFile(file, []byte("1018\n# comment\nAUDv\nrandom_string\n1018\n"), 0o600))

	out, err := run(t, "batch", "structure", file, "--base-url", base, "--workers", "2", "--json")
	require.NoError(t, err)

	var got struct {
		Results []batchLine `json:"results"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got.Results, 3)
	assert.Equal(t, batchLine{Identifier: "id=1018", Valid: true, Rows: 1}, got.Results[0])
	assert.Equal(t, batchLine{Identifier: "acronym=AUDv", Valid: true, Rows: 1}, got.Results[1])
	assert.Equal(t, batchLine{Identifier: "acronym=random_string"}, got.Results[2])
}

func TestConfigInitAndShow(t *testing.T) {
	file := filepath.Join(t.TempDir(), "config.yaml")

	out, err := run(t, "config", "init", "--path", file)
	require.NoError(t, err)
	assert.Contains(t, out, file)

	_, err = run(t, "config", "init", "--path", file)
	require.Error(t, err)

	t.Setenv("BRAINMAP_API_PRODUCT_ID", "7")
	out, err = run(t, "config", "show", "--config", file, "--base-url", "http://localhost:1234")
	require.NoError(t, err)
	assert.Contains(t, out, "base_url: http://localhost:1234")
	assert.Contains(t, out, "product_id: 7")
	assert.Contains(t, out, "timeout: 30s")
}
