package lookup

import (
	"context"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/brainmap/internal/extract"
	"github.com/ppiankov/brainmap/internal/rma"
)

var geneRoutes = map[string]string{
	"products[id$eq1],genes[id$eq18376]":            "gene_18376.xml",
	"products[id$eq1],genes[acronym$eq'Pdyn']":      "gene_18376.xml",
	"products[id$eq1],genes[name$eq'prodynorphin']": "gene_18376.xml",
}

func TestGenes_CheckValidity(t *testing.T) {
	fake, client, _ := newFake(t, geneRoutes)
	g := NewGenes(client, 1, nil)
	ctx := context.Background()

	tests := []struct {
		name  string
		id    rma.Identifier
		valid bool
	}{
		{"id", rma.ByID(18376), true},
		{"acronym", rma.ByAcronym("Pdyn"), true},
		{"name", rma.ByName("prodynorphin"), true},
		{"unknown id", rma.ByID(-10000000), false},
		{"unknown acronym", rma.ByAcronym("random_string"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, _, err := g.CheckValidity(ctx, tt.id)
			require.NoError(t, err)
			assert.Equal(t, tt.valid, ok)
		})
	}

	r := fake.lastRequest()
	require.NotNil(t, r)
	assert.Equal(t, "/data/SectionDataSet/query.xml", r.URL.Path)
	assert.Equal(t, "genes,plane_of_section", r.URL.Query().Get("include"))
}

func TestGenes_Info(t *testing.T) {
	_, client, _ := newFake(t, geneRoutes)
	g := NewGenes(client, 1, nil)
	ctx := context.Background()

	for _, id := range []rma.Identifier{rma.ByID(18376), rma.ByAcronym("Pdyn")} {
		name, err := g.Attribute(ctx, id, "name")
		require.NoError(t, err)
		assert.Equal(t, extract.Text("prodynorphin"), name)
	}

	// the round trip: acronym -> id -> acronym
	v, err := g.Attribute(ctx, rma.ByAcronym("Pdyn"), "id")
	require.NoError(t, err)
	n, ok := v.Int()
	require.True(t, ok)
	v, err = g.Attribute(ctx, rma.ByID(n), "acronym")
	require.NoError(t, err)
	assert.Equal(t, extract.Text("Pdyn"), v)

	res, err := g.Info(ctx, rma.ByID(18376))
	require.NoError(t, err)
	assert.Len(t, res.Names, len(extract.GeneSchema.Names()))
	// every data set row repeats the gene; one value per attribute
	for _, name := range res.Names {
		assert.Len(t, res.All(name), 1, name)
	}
	assert.Equal(t, []extract.Value{extract.Text("prodynorphin")}, res.All("name"))
	first := res.First()
	assert.Equal(t, extract.Int(18610), first["entrez-id"])
	assert.True(t, first["ensembl-id"].IsNull())
}

func TestGenes_Info_InvalidAttributes(t *testing.T) {
	_, client, _ := newFake(t, geneRoutes)
	g := NewGenes(client, 1, nil)
	ctx := context.Background()

	res, err := g.Info(ctx, rma.ByID(18376), "random_string", "-10000000", "name")
	require.NoError(t, err)
	assert.Equal(t, []string{"name"}, res.Names)
	assert.Equal(t, []string{"random_string", "-10000000"}, res.Skipped)

	_, err = g.Attribute(ctx, rma.ByID(18376), "random_string")
	assert.True(t, errors.Is(err, rma.ErrUnknownAttribute))
}

func TestGenes_NotFound(t *testing.T) {
	_, client, _ := newFake(t, geneRoutes)
	g := NewGenes(client, 1, nil)
	ctx := context.Background()

	_, err := g.Info(ctx, rma.ByAcronym("random_string"))
	assert.True(t, errors.Is(err, rma.ErrEntityNotFound))
	_, err = g.Attribute(ctx, rma.ByID(-10000000), "name")
	assert.True(t, errors.Is(err, rma.ErrEntityNotFound))
	_, err = g.ExperimentIDs(ctx, rma.ByID(-10000000), PlaneSagittal)
	assert.True(t, errors.Is(err, rma.ErrEntityNotFound))
}

func TestGenes_ExperimentIDs(t *testing.T) {
	fake, client, _ := newFake(t, map[string]string{
		"products[id$eq1],genes[id$eq18376]":       "experiments_18376.json",
		"products[id$eq1],genes[acronym$eq'Pdyn']": "experiments_18376.json",
	})
	logger, logs := observed()
	g := NewGenes(client, 1, logger)
	ctx := context.Background()

	ids, err := g.ExperimentIDs(ctx, rma.ByID(18376), PlaneSagittal)
	require.NoError(t, err)
	assert.Equal(t, []int64{71717640, 74881161}, ids)

	r := fake.lastRequest()
	require.NotNil(t, r)
	assert.Equal(t, "/data/SectionDataSet/query.json", r.URL.Path)
	assert.Equal(t, "plane_of_section", r.URL.Query().Get("include"))

	ids, err = g.ExperimentIDs(ctx, rma.ByAcronym("Pdyn"), PlaneCoronal)
	require.NoError(t, err)
	assert.Equal(t, []int64{79591645}, ids)
	assert.Zero(t, logs.FilterMessage("no experiments found").Len())
}

func TestGenes_ExperimentIDs_NoneInPlane(t *testing.T) {
	_, client, _ := newFake(t, map[string]string{
		"products[id$eq1],genes[id$eq18376]": "experiments_sagittal_only.json",
	})
	logger, logs := observed()
	g := NewGenes(client, 1, logger)

	ids, err := g.ExperimentIDs(context.Background(), rma.ByID(18376), PlaneCoronal)
	require.NoError(t, err)
	assert.NotNil(t, ids)
	assert.Empty(t, ids)
	assert.Equal(t, 1, logs.FilterMessage("no experiments found").Len())
}

func TestGenes_ExperimentIDs_InvalidPlane(t *testing.T) {
	fake, client, _ := newFake(t, geneRoutes)
	g := NewGenes(client, 1, nil)

	_, err := g.ExperimentIDs(context.Background(), rma.ByID(18376), Plane("transverse"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, rma.ErrInvalidInput))
	assert.Zero(t, fake.requests.Load())
}

func TestParsePlane(t *testing.T) {
	p, err := ParsePlane(" Sagittal ")
	require.NoError(t, err)
	assert.Equal(t, PlaneSagittal, p)

	p, err = ParsePlane("coronal")
	require.NoError(t, err)
	assert.Equal(t, PlaneCoronal, p)

	_, err = ParsePlane("")
	assert.True(t, errors.Is(err, rma.ErrInvalidInput))
}
