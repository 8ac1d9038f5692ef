// Package geoskit implements jaccard.Kernel directly on GEOS through
// github.com/twpayne/go-geos. Each call runs in its own geos.Context, so a
// single Kernel can serve concurrent pairs. Geometries are freed by the
// library's runtime cleanups once unreachable.
package geoskit

import (
	"errors"
	"fmt"
	"math"

	"github.com/wgdzlh/jaccard"
	"github.com/wgdzlh/jaccard/log"

	"github.com/twpayne/go-geos"
	"go.uber.org/zap"
)

var ErrGeosOperation = errors.New("geos operation failed")

type Kernel struct {
	opts   jaccard.KernelOptions
	logTag string
}

var _ jaccard.Kernel = (*Kernel)(nil)

func New(opts jaccard.KernelOptions) *Kernel {
	return &Kernel{
		opts:   opts.Normalize(),
		logTag: "GeosKernel:",
	}
}

// go-geos reports GEOS exceptions as panics
func (k *Kernel) recoverOp(op string, err *error) {
	if r := recover(); r != nil {
		log.Error(k.logTag+"geos operation failed", zap.String("op", op), zap.Any("cause", r))
		*err = fmt.Errorf("%w: %s: %v", ErrGeosOperation, op, r)
	}
}

func (k *Kernel) parse(c *geos.Context, wkb jaccard.Geom) (g *geos.Geom, err error) {
	if g, err = c.NewGeomFromWKB(wkb); err != nil {
		log.Error(k.logTag+"parse wkb failed", zap.Error(err))
		err = fmt.Errorf("%w: %v", jaccard.ErrUnreadableGeometry, err)
	}
	return
}

func (k *Kernel) parsePair(c *geos.Context, a, b jaccard.Geom) (ga, gb *geos.Geom, err error) {
	if ga, err = k.parse(c, a); err != nil {
		return
	}
	gb, err = k.parse(c, b)
	return
}

// 只保留面，剔除面积小于minArea的碎面
func polygonal(c *geos.Context, g *geos.Geom, minArea float64) *geos.Geom {
	var parts []*geos.Geom
	collectPolygons(g, minArea, &parts)
	return c.NewCollection(geos.TypeIDMultiPolygon, parts)
}

func collectPolygons(g *geos.Geom, minArea float64, parts *[]*geos.Geom) {
	switch g.TypeID() {
	case geos.TypeIDPolygon:
		if g.IsEmpty() || g.Area() < minArea {
			return
		}
		*parts = append(*parts, g.Clone())
	case geos.TypeIDMultiPolygon, geos.TypeIDGeometryCollection:
		for i, n := 0, g.NumGeometries(); i < n; i++ {
			collectPolygons(g.Geometry(i), minArea, parts)
		}
	}
}

func (k *Kernel) finish(c *geos.Context, g *geos.Geom) jaccard.Geom {
	return polygonal(c, g, k.opts.SliverArea).ToWKB()
}

func (k *Kernel) Offset(wkb jaccard.Geom, distance float64) (ret jaccard.Geom, err error) {
	if math.IsNaN(distance) || math.IsInf(distance, 0) {
		err = fmt.Errorf("%w: %v", jaccard.ErrInvalidBufferDistance, distance)
		return
	}
	defer k.recoverOp("buffer", &err)
	c := geos.NewContext()
	g, err := k.parse(c, wkb)
	if err != nil {
		return
	}
	ret = k.finish(c, g.Buffer(distance, k.opts.QuadSegs))
	return
}

func (k *Kernel) Difference(a, b jaccard.Geom) (ret jaccard.Geom, err error) {
	defer k.recoverOp("difference", &err)
	c := geos.NewContext()
	ga, gb, err := k.parsePair(c, a, b)
	if err != nil {
		return
	}
	ret = k.finish(c, ga.Difference(gb))
	return
}

func (k *Kernel) Intersection(a, b jaccard.Geom) (ret jaccard.Geom, err error) {
	defer k.recoverOp("intersection", &err)
	c := geos.NewContext()
	ga, gb, err := k.parsePair(c, a, b)
	if err != nil {
		return
	}
	ret = k.finish(c, ga.Intersection(gb))
	return
}

func (k *Kernel) Union(a, b jaccard.Geom) (ret jaccard.Geom, err error) {
	defer k.recoverOp("union", &err)
	c := geos.NewContext()
	ga, gb, err := k.parsePair(c, a, b)
	if err != nil {
		return
	}
	ret = k.finish(c, ga.Union(gb))
	return
}

func (k *Kernel) Dissolve(wkb jaccard.Geom) (ret jaccard.Geom, err error) {
	defer k.recoverOp("dissolve", &err)
	c := geos.NewContext()
	g, err := k.parse(c, wkb)
	if err != nil {
		return
	}
	parts := polygonal(c, g, 0)
	ret = k.finish(c, parts.UnaryUnion())
	return
}

func (k *Kernel) Area(wkb jaccard.Geom) (area float64, err error) {
	defer k.recoverOp("area", &err)
	c := geos.NewContext()
	g, err := k.parse(c, wkb)
	if err != nil {
		return
	}
	parts := polygonal(c, g, 0)
	area = parts.Area()
	return
}
