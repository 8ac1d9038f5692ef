package gdalkit

import (
	"fmt"
	"math"
	"sync"

	"github.com/wgdzlh/jaccard"
	"github.com/wgdzlh/jaccard/log"

	"github.com/lukeroth/gdal"
	"go.uber.org/zap"
)

// 基于GDAL/OGR（底层为GEOS）的平面几何内核与矢量读写工具
type GdalToolbox struct {
	opts   Options
	refMap map[string]gdal.SpatialReference
	rLock  sync.Mutex
	logTag string
}

type Options struct {
	jaccard.KernelOptions
	RequireCrs     bool // 源文件缺少坐标系时视为错误
	DissolveOnLoad bool // 读取时融合同一文件内重叠的要素
}

// 由GDAL库C语言创建的内存对象，需要手动调用Destroy回收
type destroyable interface {
	Destroy()
}

var (
	emptyGeometry = gdal.Geometry{}
	emptyRef      = gdal.SpatialReference{}
)

var _ jaccard.Kernel = (*GdalToolbox)(nil)

func NewGdalToolbox(opts Options) *GdalToolbox {
	opts.KernelOptions = opts.KernelOptions.Normalize()
	return &GdalToolbox{
		opts:   opts,
		refMap: map[string]gdal.SpatialReference{},
		logTag: "GdalToolbox:",
	}
}

// 获取WKT对应的坐标系（可复用，故无需回收）
func (g *GdalToolbox) getSrsRef(wkt string) (ref gdal.SpatialReference, err error) {
	g.rLock.Lock()
	defer g.rLock.Unlock()
	return g.getSrsRefLocked(wkt)
}

func (g *GdalToolbox) getSrsRefLocked(wkt string) (ref gdal.SpatialReference, err error) {
	ref, ok := g.refMap[wkt]
	if ok {
		return
	}
	ref = gdal.CreateSpatialReference("")
	if err = ref.FromWKT(wkt); err != nil {
		log.Error(g.logTag+"parse srs wkt failed", zap.Error(err))
		ref.Destroy()
		err = fmt.Errorf("%w: %v", jaccard.ErrCRSMismatch, err)
		return
	}
	ref.SetAxisMappingStrategy(gdal.OAMS_TraditionalGisOrder)
	g.refMap[wkt] = ref
	return
}

// 两个坐标系WKT是否描述同一坐标系
func (g *GdalToolbox) sameSrs(wktA, wktB string) (same bool, err error) {
	if wktA == wktB {
		return true, nil
	}
	g.rLock.Lock()
	defer g.rLock.Unlock()
	refA, err := g.getSrsRefLocked(wktA)
	if err != nil {
		return
	}
	refB, err := g.getSrsRefLocked(wktB)
	if err != nil {
		return
	}
	same = refA.IsSame(refB)
	return
}

func (g *GdalToolbox) parseWKB(wkb jaccard.Geom) (ret gdal.Geometry, err error) {
	if len(wkb) == 0 {
		err = fmt.Errorf("%w: empty wkb", jaccard.ErrUnreadableGeometry)
		return
	}
	ret, err = gdal.CreateFromWKB(wkb, emptyRef, len(wkb))
	if err != nil {
		log.Error(g.logTag+"parse wkb failed", zap.Error(err))
		err = fmt.Errorf("%w: %v", jaccard.ErrUnreadableGeometry, err)
	}
	return
}

// WKT转WKB
func (g *GdalToolbox) WktToWkb(wkt string) (wkb jaccard.Geom, err error) {
	geo, err := gdal.CreateFromWKT(wkt, emptyRef)
	if err != nil {
		log.Error(g.logTag+"parse wkt failed", zap.Error(err))
		err = ErrInvalidWKT
		return
	}
	wkb, err = geo.ToWKB()
	geo.Destroy()
	return
}

// 运算结果只保留面并剔除碎面后转为WKB，同时回收geo
func (g *GdalToolbox) finish(geo gdal.Geometry, op string) (ret jaccard.Geom, err error) {
	if geo == emptyGeometry {
		log.Error(g.logTag+"geos operation failed", zap.String("op", op))
		err = fmt.Errorf("%w: %s", ErrGeosOperation, op)
		return
	}
	defer geo.Destroy()
	clean := polygonal(geo, g.opts.SliverArea)
	defer clean.Destroy()
	ret, err = clean.ToWKB()
	return
}

// 缓冲：distance>0为膨胀，<0为腐蚀
func (g *GdalToolbox) Offset(wkb jaccard.Geom, distance float64) (ret jaccard.Geom, err error) {
	if math.IsNaN(distance) || math.IsInf(distance, 0) {
		err = fmt.Errorf("%w: %v", jaccard.ErrInvalidBufferDistance, distance)
		return
	}
	geo, err := g.parseWKB(wkb)
	if err != nil {
		return
	}
	defer geo.Destroy()
	log.Debug(g.logTag+"offset geo", zap.Float64("distance", distance), zap.Int("quadSegs", g.opts.QuadSegs))
	ret, err = g.finish(geo.Buffer(distance, g.opts.QuadSegs), "buffer")
	return
}

// 求两个WKB矢量面之差
func (g *GdalToolbox) Difference(gA, gB jaccard.Geom) (ret jaccard.Geom, err error) {
	geoA, err := g.parseWKB(gA)
	if err != nil {
		return
	}
	defer geoA.Destroy()
	geoB, err := g.parseWKB(gB)
	if err != nil {
		return
	}
	defer geoB.Destroy()
	ret, err = g.finish(geoA.Difference(geoB), "difference")
	return
}

// 获取两个WKB矢量面公共区
func (g *GdalToolbox) Intersection(gA, gB jaccard.Geom) (ret jaccard.Geom, err error) {
	geoA, err := g.parseWKB(gA)
	if err != nil {
		return
	}
	defer geoA.Destroy()
	geoB, err := g.parseWKB(gB)
	if err != nil {
		return
	}
	defer geoB.Destroy()
	ret, err = g.finish(geoA.Intersection(geoB), "intersection")
	return
}

// 合并两个WKB矢量面
func (g *GdalToolbox) Union(gA, gB jaccard.Geom) (ret jaccard.Geom, err error) {
	geoA, err := g.parseWKB(gA)
	if err != nil {
		return
	}
	defer geoA.Destroy()
	geoB, err := g.parseWKB(gB)
	if err != nil {
		return
	}
	defer geoB.Destroy()
	ret, err = g.finish(geoA.Union(geoB), "union")
	return
}

// 融合重叠、相邻的面
func (g *GdalToolbox) Dissolve(wkb jaccard.Geom) (ret jaccard.Geom, err error) {
	geo, err := g.parseWKB(wkb)
	if err != nil {
		return
	}
	defer geo.Destroy()
	parts := polygonal(geo, 0)
	defer parts.Destroy()
	if parts.GeometryCount() == 0 {
		ret, err = parts.ToWKB()
		return
	}
	ret, err = g.finish(parts.UnionCascaded(), "dissolve")
	return
}

// 面积（各部分之和，扣除洞）
func (g *GdalToolbox) Area(wkb jaccard.Geom) (area float64, err error) {
	geo, err := g.parseWKB(wkb)
	if err != nil {
		return
	}
	defer geo.Destroy()
	parts := polygonal(geo, 0)
	area = parts.Area()
	parts.Destroy()
	return
}
