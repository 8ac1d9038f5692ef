package gdalkit

import (
	"github.com/lukeroth/gdal"
)

// 将任意几何规整为MultiPolygon：丢弃点、线等低维结果及面积小于minArea的碎面
func polygonal(geo gdal.Geometry, minArea float64) (ret gdal.Geometry) {
	ret = gdal.Create(gdal.GT_MultiPolygon)
	collectPolygons(geo, ret, minArea)
	return
}

func collectPolygons(geo, out gdal.Geometry, minArea float64) (n int) {
	switch geo.Type() {
	case gdal.GT_Polygon:
		if geo.IsEmpty() || geo.Area() < minArea {
			return
		}
		if err := out.AddGeometry(geo); err == nil {
			n = 1
		}
	case gdal.GT_MultiPolygon, gdal.GT_GeometryCollection:
		for i, gn := 0, geo.GeometryCount(); i < gn; i++ {
			n += collectPolygons(geo.Geometry(i), out, minArea)
		}
	}
	return
}
