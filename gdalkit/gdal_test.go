package gdalkit

import (
	"testing"

	"github.com/wgdzlh/jaccard"
	"github.com/wgdzlh/jaccard/utils"

	"github.com/lukeroth/gdal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const areaDelta = 1e-6

func newToolbox() *GdalToolbox {
	return NewGdalToolbox(Options{DissolveOnLoad: true})
}

func square(t *testing.T, g *GdalToolbox, x1, x2, y1, y2 float64) jaccard.Geom {
	t.Helper()
	wkb, err := g.WktToWkb(utils.PointsToWkt(x1, x2, y1, y2))
	require.NoError(t, err)
	return wkb
}

func wkbOf(t *testing.T, g *GdalToolbox, wkt string) jaccard.Geom {
	t.Helper()
	wkb, err := g.WktToWkb(wkt)
	require.NoError(t, err)
	return wkb
}

func area(t *testing.T, g *GdalToolbox, wkb jaccard.Geom) float64 {
	t.Helper()
	a, err := g.Area(wkb)
	require.NoError(t, err)
	return a
}

func compare(t *testing.T, g *GdalToolbox, a, b jaccard.Geom, pixelSize float64) jaccard.ComparisonResult {
	t.Helper()
	res, err := jaccard.NewCalculator(g).Compare(
		jaccard.Delineation{Name: "a", Geom: a},
		jaccard.Delineation{Name: "b", Geom: b},
		pixelSize, pixelSize)
	require.NoError(t, err)
	return res
}

func TestIdenticalSquares(t *testing.T) {
	g := newToolbox()
	a := square(t, g, 0, 10, 0, 10)
	res := compare(t, g, a, square(t, g, 0, 10, 0, 10), 2)
	assert.InDelta(t, 64, res.IntersectionArea, areaDelta)
	assert.InDelta(t, 64, res.UnionArea, areaDelta)
	assert.InDelta(t, 1, res.Score, 1e-9)
	assert.Equal(t, 1.0, res.Rounded())
}

func TestEdgeTouchingSquares(t *testing.T) {
	g := newToolbox()
	res := compare(t, g, square(t, g, 0, 10, 0, 10), square(t, g, 10, 20, 0, 10), 2)
	assert.InDelta(t, 0, res.IntersectionArea, areaDelta)
	assert.InDelta(t, 128, res.UnionArea, areaDelta)
	assert.Equal(t, 0.0, res.Score)
	assert.False(t, res.Undefined)
}

func TestEdgeTouchingUnionIsSumOfClipped(t *testing.T) {
	g := newToolbox()
	res, err := jaccard.NewCalculator(g, jaccard.WithTrace()).Compare(
		jaccard.Delineation{Name: "a", Geom: square(t, g, 0, 10, 0, 10)},
		jaccard.Delineation{Name: "b", Geom: square(t, g, 10, 20, 0, 10)},
		2, 2)
	require.NoError(t, err)
	require.NotNil(t, res.Trace)
	clipped := area(t, g, res.Trace.ClippedA) + area(t, g, res.Trace.ClippedB)
	assert.InDelta(t, 2*64, clipped, areaDelta)
	assert.InDelta(t, clipped, res.UnionArea, areaDelta)
	assert.Equal(t, 0.0, res.Score)
}

func TestRotatedIdenticalScoreBounded(t *testing.T) {
	g := newToolbox()
	for _, wkt := range []string{
		"POLYGON((0 10,10 0,20 10,10 20,0 10))",
		"POLYGON((0.3 0.1,17.9 3.3,21.7 19.1,4.2 14.8,0.3 0.1))",
	} {
		p := wkbOf(t, g, wkt)
		res := compare(t, g, p, wkbOf(t, g, wkt), 2)
		assert.LessOrEqual(t, res.Score, 1.0, wkt)
		assert.InDelta(t, 1, res.Score, 1e-9, wkt)
		assert.Equal(t, 1.0, res.Rounded(), wkt)
	}
}

func TestOverBufferedSquareIsUndefined(t *testing.T) {
	g := newToolbox()
	a := square(t, g, 0, 10, 0, 10)
	res := compare(t, g, a, a, 24)
	assert.Equal(t, 0.0, res.UnionArea)
	assert.True(t, res.Undefined)
}

func TestPartialOverlapScore(t *testing.T) {
	g := newToolbox()
	// 剪除后为 [1,9]x[1,9] 与 [5,13]x[1,9]，交集32，并集96
	res := compare(t, g, square(t, g, 0, 10, 0, 10), square(t, g, 4, 14, 0, 10), 2)
	assert.InDelta(t, 32, res.IntersectionArea, areaDelta)
	assert.InDelta(t, 96, res.UnionArea, areaDelta)
	assert.InDelta(t, 1.0/3.0, res.Score, 1e-9)
	assert.GreaterOrEqual(t, res.Score, 0.0)
	assert.LessOrEqual(t, res.Score, 1.0)
}

func TestBufferMonotonicity(t *testing.T) {
	g := newToolbox()
	shapes := []jaccard.Geom{
		square(t, g, 0, 10, 0, 10),
		wkbOf(t, g, "POLYGON((0 0,20 0,20 4,4 4,4 20,0 20,0 0))"),
		wkbOf(t, g, "POLYGON((0 0,30 0,30 30,0 30,0 0),(10 10,20 10,20 20,10 20,10 10))"),
	}
	for _, p := range shapes {
		for _, r := range []float64{0.5, 1, 3} {
			dilated, err := g.Offset(p, r)
			require.NoError(t, err)
			eroded, err := g.Offset(p, -r)
			require.NoError(t, err)
			base := area(t, g, p)
			assert.LessOrEqual(t, area(t, g, eroded), base)
			assert.GreaterOrEqual(t, area(t, g, dilated), base)
		}
	}
}

func TestErosionBeyondInradiusIsEmpty(t *testing.T) {
	g := newToolbox()
	multi := wkbOf(t, g, "MULTIPOLYGON(((0 0,0 2,2 2,2 0,0 0)),((10 0,10 20,30 20,30 0,10 0)))")
	eroded, err := g.Offset(multi, -3)
	require.NoError(t, err)
	// 小块消失，大块收缩为14x14
	assert.InDelta(t, 196, area(t, g, eroded), areaDelta)

	_, err = g.Offset(multi, 0)
	require.NoError(t, err)
}

func TestZoneContainsBoundary(t *testing.T) {
	g := newToolbox()
	wkt := utils.PointsToWkt(0, 10, 0, 10)
	zone, err := jaccard.UncertaintyZone(g, square(t, g, 0, 10, 0, 10), 1)
	require.NoError(t, err)

	zoneGeo, err := gdal.CreateFromWKB(zone, emptyRef, len(zone))
	require.NoError(t, err)
	defer zoneGeo.Destroy()
	sq, err := gdal.CreateFromWKT(wkt, emptyRef)
	require.NoError(t, err)
	defer sq.Destroy()
	boundary := sq.Boundary()
	defer boundary.Destroy()
	assert.True(t, zoneGeo.Contains(boundary))

	empty, err := jaccard.UncertaintyZone(g, square(t, g, 0, 10, 0, 10), 0)
	require.NoError(t, err)
	assert.Equal(t, 0.0, area(t, g, empty))
}

func TestDissolveIdempotent(t *testing.T) {
	g := newToolbox()
	overlapping := wkbOf(t, g, "MULTIPOLYGON(((0 0,0 10,10 10,10 0,0 0)),((5 0,5 10,15 10,15 0,5 0)))")
	once, err := g.Dissolve(overlapping)
	require.NoError(t, err)
	twice, err := g.Dissolve(once)
	require.NoError(t, err)
	assert.InDelta(t, 150, area(t, g, once), areaDelta)
	assert.InDelta(t, area(t, g, once), area(t, g, twice), areaDelta)

	empty, err := g.Dissolve(wkbOf(t, g, "MULTIPOLYGON EMPTY"))
	require.NoError(t, err)
	assert.Equal(t, 0.0, area(t, g, empty))
}

func TestAreaSubtractsHoles(t *testing.T) {
	g := newToolbox()
	holed := wkbOf(t, g, "MULTIPOLYGON(((0 0,10 0,10 10,0 10,0 0),(2 2,6 2,6 6,2 6,2 2)),((20 0,21 0,21 1,20 1,20 0)))")
	assert.InDelta(t, 85, area(t, g, holed), areaDelta)
}

func TestSliversDropped(t *testing.T) {
	g := NewGdalToolbox(Options{KernelOptions: jaccard.KernelOptions{SliverArea: 0.5}})
	a := square(t, g, 0, 10, 0, 10)
	b := square(t, g, 0, 10, 9.99, 20)
	inter, err := g.Intersection(a, b)
	require.NoError(t, err)
	assert.Equal(t, 0.0, area(t, g, inter))

	// 边相接的交集为线，结果只保留面
	touch, err := g.Intersection(a, square(t, g, 10, 20, 0, 10))
	require.NoError(t, err)
	assert.Equal(t, 0.0, area(t, g, touch))
}

func TestRejectsBadInput(t *testing.T) {
	g := newToolbox()
	_, err := g.Area(jaccard.Geom{0x01, 0x02})
	assert.ErrorIs(t, err, jaccard.ErrUnreadableGeometry)
	_, err = g.WktToWkb("POLYGON((0 0")
	assert.ErrorIs(t, err, ErrInvalidWKT)
}
