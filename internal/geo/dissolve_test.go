package geo

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"

	"github.com/gehuybre/investeringsuitgaven-gemeenten/internal/resolve"
)

func square(x, y, s float64) *geom.MultiPolygon {
	flat := []float64{x, y, x, y + s, x + s, y + s, x + s, y, x, y}
	mp := geom.NewMultiPolygon(geom.XY)
	if err := mp.Push(geom.NewPolygonFlat(geom.XY, flat, []int{len(flat)})); err != nil {
		panic(err)
	}
	return mp
}

var (
	antwerpen = resolve.Province{Key: "antwerpen", Name: "Antwerpen"}
	limburg   = resolve.Province{Key: "limburg", Name: "Limburg"}
)

func abResolver(t *testing.T) *resolve.Resolver {
	t.Helper()
	r, err := resolve.NewResolver([]resolve.FusionGroup{{Name: "AB", Members: []string{"A", "B"}}}, resolve.Normalizer{})
	require.NoError(t, err)
	return r
}

func TestDissolve_MergesGroup(t *testing.T) {
	records := []Record{
		{ID: "BE_11001", Key: "a", Name: "A", Province: antwerpen, Geometry: square(0, 0, 1)},
		{ID: "BE_11002", Key: "c", Name: "C", Province: antwerpen, Geometry: square(5, 5, 2)},
		{ID: "BE_11003", Key: "b", Name: "B", Province: antwerpen, Geometry: square(1, 0, 1)},
	}
	before := records[0].Area() + records[2].Area()

	out, err := Dissolve(records, abResolver(t))
	require.NoError(t, err)
	require.Len(t, out, 2)

	ab := out[0]
	assert.Equal(t, "ab", ab.Key)
	assert.Equal(t, "AB", ab.Name)
	assert.Equal(t, antwerpen, ab.Province)
	assert.Equal(t, []string{"a", "b"}, ab.Members)
	assert.Equal(t, 2, ab.Geometry.NumPolygons())
	assert.InDelta(t, before, ab.Area(), 1e-9)
	assert.InDelta(t, 2.0, ab.Area(), 1e-9)

	c := out[1]
	assert.Equal(t, "c", c.Key)
	assert.Equal(t, []string{"c"}, c.Members)
	assert.InDelta(t, 4.0, c.Area(), 1e-9)
}

func TestDissolve_ProvinceConflict(t *testing.T) {
	records := []Record{
		{Key: "a", Province: antwerpen, Geometry: square(0, 0, 1)},
		{Key: "b", Province: limburg, Geometry: square(1, 0, 1)},
	}
	_, err := Dissolve(records, abResolver(t))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrProvinceConflict))

	var pc *ProvinceConflictError
	require.True(t, errors.As(err, &pc))
	assert.Equal(t, "ab", pc.Key)
	assert.Equal(t, "b", pc.Member)
	assert.Equal(t, limburg, pc.Other)
}

func TestDissolve_NilResolverKeepsRecords(t *testing.T) {
	records := []Record{
		{Key: "b", Province: antwerpen, Geometry: square(0, 0, 1)},
		{Key: "a", Province: antwerpen},
	}
	out, err := Dissolve(records, nil)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "a", out[0].Key)
	assert.Nil(t, out[0].Geometry)
	assert.Zero(t, out[0].Area())
	assert.Equal(t, "b", out[1].Key)
}
