package gdalkit

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/wgdzlh/jaccard"
	"github.com/wgdzlh/jaccard/log"
	"github.com/wgdzlh/jaccard/utils"

	"github.com/lukeroth/gdal"
	"go.uber.org/zap"
)

var _ jaccard.Loader = (*GdalToolbox)(nil)
var _ jaccard.Dumper = (*GdalToolbox)(nil)

func (g *GdalToolbox) openVector(path string) (ds gdal.DataSource, err error) {
	if _, err = os.Stat(path); err != nil {
		err = fmt.Errorf("%w: %v", jaccard.ErrUnreadableGeometry, err)
		return
	}
	name, ok := vectorDrivers[strings.ToLower(filepath.Ext(path))]
	if !ok {
		err = fmt.Errorf("%w: %w: %s", jaccard.ErrUnreadableGeometry, ErrUnsupportedFormat, filepath.Base(path))
		return
	}
	driver := gdal.OGRDriverByName(name)
	if ds, ok = driver.Open(path, 0); !ok {
		err = fmt.Errorf("%w: %s driver cannot open %s", jaccard.ErrUnreadableGeometry, name, path)
	}
	return
}

// 坐标系须为平面坐标且单位为米；无坐标系时按RequireCrs决定是否报错
func (g *GdalToolbox) checkSrs(path string, sp gdal.SpatialReference) (wkt string, err error) {
	if sp == emptyRef {
		if g.opts.RequireCrs {
			err = fmt.Errorf("%w: %s has no coordinate system", jaccard.ErrCRSMismatch, filepath.Base(path))
			return
		}
		log.Warn(g.logTag+"no srs in source, assume planar meters", zap.String("file", path))
		return
	}
	if sp.IsGeographic() {
		err = fmt.Errorf("%w: %s uses geographic coordinates", jaccard.ErrCRSMismatch, filepath.Base(path))
		return
	}
	unit, factor, ok := linearUnit(sp)
	if !ok {
		err = fmt.Errorf("%w: %s has no linear unit", jaccard.ErrCRSMismatch, filepath.Base(path))
		return
	}
	if math.Abs(factor-1) > MeterUnitTolerance {
		err = fmt.Errorf("%w: %s linear unit is %s (%g m)", jaccard.ErrCRSMismatch, filepath.Base(path), unit, factor)
		return
	}
	wkt, err = sp.ToWKT()
	return
}

// 读取投影或局部坐标系的长度单位及其换算米数。
// 不用SpatialReference.LinearUnits：其释放了OSR内部持有的单位名。
func linearUnit(sp gdal.SpatialReference) (unit string, factor float64, ok bool) {
	for _, node := range linearUnitNodes {
		if unit, ok = sp.AttrValue(node, 0); !ok {
			continue
		}
		toMeter, found := sp.AttrValue(node, 1)
		if !found {
			return unit, 0, false
		}
		var err error
		if factor, err = strconv.ParseFloat(toMeter, 64); err != nil {
			return unit, 0, false
		}
		return unit, factor, true
	}
	return
}

// 读取矢量文件第一个图层中的所有面要素，合并为一个MultiPolygon
func (g *GdalToolbox) LoadDelineation(path string) (d jaccard.Delineation, err error) {
	log.Info(g.logTag+"start load delineation", zap.String("file", path))
	ds, err := g.openVector(path)
	if err != nil {
		return
	}
	defer ds.Destroy()
	if ds.LayerCount() == 0 {
		err = fmt.Errorf("%w: %w: %s", jaccard.ErrUnreadableGeometry, ErrGdalEmptyLayer, path)
		return
	}
	layer := ds.LayerByIndex(0)
	d = jaccard.Delineation{
		Name: utils.GetFilenameWithoutExt(path),
		Path: path,
	}
	if d.Srs, err = g.checkSrs(path, layer.SpatialReference()); err != nil {
		return
	}
	var (
		merged  = gdal.Create(gdal.GT_MultiPolygon)
		feature *gdal.Feature
		geo     gdal.Geometry
		fCnt    int
		pCnt    int
		gc      = []destroyable{merged}
	)
	defer func() {
		for _, v := range gc {
			v.Destroy()
		}
	}()
	for {
		if feature = layer.NextFeature(); feature == nil {
			break
		}
		gc = append(gc, *feature)
		fCnt++
		if geo = feature.Geometry(); geo == emptyGeometry {
			continue
		}
		geo = geo.Clone()
		geo.FlattenTo2D()
		pCnt += collectPolygons(geo, merged, 0)
		geo.Destroy()
	}
	if pCnt == 0 {
		log.Warn(g.logTag+"no polygon in delineation", zap.String("file", path), zap.Int("features", fCnt))
	}
	if g.opts.DissolveOnLoad && pCnt > 1 {
		dissolved := merged.UnionCascaded()
		if dissolved == emptyGeometry {
			err = fmt.Errorf("%w: dissolve %s", ErrGeosOperation, path)
			return
		}
		gc = append(gc, dissolved)
		merged = polygonal(dissolved, 0)
		gc = append(gc, merged)
	}
	if d.Geom, err = merged.ToWKB(); err != nil {
		err = fmt.Errorf("%w: %v", jaccard.ErrUnreadableGeometry, err)
		return
	}
	log.Info(g.logTag+"got delineation", zap.String("file", path), zap.Int("features", fCnt), zap.Int("polygons", pCnt), zap.Float64("area", merged.Area()))
	return
}

// 读取一对勾绘，两者坐标系须一致
func (g *GdalToolbox) LoadPair(pathA, pathB string) (a, b jaccard.Delineation, err error) {
	if a, err = g.LoadDelineation(pathA); err != nil {
		return
	}
	if b, err = g.LoadDelineation(pathB); err != nil {
		return
	}
	switch {
	case a.Srs != "" && b.Srs != "":
		var same bool
		if same, err = g.sameSrs(a.Srs, b.Srs); err != nil {
			return
		}
		if !same {
			err = fmt.Errorf("%w: %s and %s", jaccard.ErrCRSMismatch, a.Name, b.Name)
		}
	case a.Srs != b.Srs:
		log.Warn(g.logTag+"only one side carries a srs", zap.String("a", a.Name), zap.String("b", b.Name))
	}
	return
}

func removeShapefile(shp string) {
	prefix := strings.TrimSuffix(shp, FILE_EXT_SHP)
	for _, ext := range shpSidecars {
		os.Remove(prefix + ext)
	}
}

func (g *GdalToolbox) getShpDriver(shp, srs string) (ds gdal.DataSource, layer gdal.Layer, err error) {
	log.Info(g.logTag+"output shp files", zap.String("shp", shp))
	ref := emptyRef
	if srs != "" {
		if ref, err = g.getSrsRef(srs); err != nil {
			return
		}
	}
	removeShapefile(shp)
	driver := gdal.OGRDriverByName(SHP_DRIVER_NAME)
	ds, ok := driver.Create(shp, nil)
	if !ok {
		err = ErrGdalDriverCreate
		return
	}
	layer = ds.CreateLayer(utils.GetFilenameWithoutExt(shp), ref, gdal.GT_MultiPolygon, []string{ENCODING_OPTION})
	return
}

// 将矢量WKB写入shp，srs为坐标系WKT（可为空）；任一几何写入失败即返回错误
func (g *GdalToolbox) WriteGeoToShapefile(shp, srs string, gs ...jaccard.Geom) (err error) {
	ds, layer, err := g.getShpDriver(shp, srs)
	if err != nil {
		return
	}
	defer ds.Destroy() // 生成shp文件 + 释放资源
	var (
		def = layer.Definition()
		gc  = make([]destroyable, 0, len(gs))
	)
	defer func() {
		for _, v := range gc {
			v.Destroy()
		}
	}()
	for i, v := range gs {
		feature := def.Create()
		gc = append(gc, feature)
		var geo gdal.Geometry
		if geo, err = g.parseWKB(v); err != nil {
			err = fmt.Errorf("%s geometry #%d: %w", filepath.Base(shp), i, err)
			return
		}
		if err = feature.SetGeometryDirectly(geo); err != nil {
			// 所有权未转交，需自行回收
			geo.Destroy()
			log.Error(g.logTag+"err in set geom of feature", zap.String("shp", shp), zap.Error(err))
			err = fmt.Errorf("%w: set geometry #%d of %s: %v", ErrGdalWriteFeature, i, filepath.Base(shp), err)
			return
		}
		if err = layer.Create(feature); err != nil {
			log.Error(g.logTag+"err in create feature of layer", zap.String("shp", shp), zap.Error(err))
			err = fmt.Errorf("%w: create feature #%d of %s: %v", ErrGdalWriteFeature, i, filepath.Base(shp), err)
			return
		}
	}
	log.Info(g.logTag+"output geo to shapefile done", zap.String("shp", shp), zap.Int("total", len(gs)))
	return
}

// 将日期对的中间几何逐层写为 <dir>/<prefix>_<name>.shp
func (g *GdalToolbox) Dump(dir, prefix, srs string, layers map[string]jaccard.Geom) (err error) {
	names := make([]string, 0, len(layers))
	for name := range layers {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		shp := filepath.Join(dir, prefix+"_"+name+FILE_EXT_SHP)
		if err = g.WriteGeoToShapefile(shp, srs, layers[name]); err != nil {
			return
		}
	}
	return
}
