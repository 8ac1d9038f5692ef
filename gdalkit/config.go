package gdalkit

const (
	FILE_EXT_SHP     = ".shp"
	FILE_EXT_GPKG    = ".gpkg"
	FILE_EXT_GEOJSON = ".geojson"
	FILE_EXT_JSON    = ".json"

	SHP_DRIVER_NAME     = "ESRI Shapefile"
	GPKG_DRIVER_NAME    = "GPKG"
	GEOJSON_DRIVER_NAME = "GeoJSON"

	SHAPE_ENCODING  = "UTF-8"
	ENCODING_OPTION = "ENCODING=" + SHAPE_ENCODING

	// 线性单位与米的换算系数允许的误差
	MeterUnitTolerance = 1e-9
)

var (
	vectorDrivers = map[string]string{
		FILE_EXT_SHP:     SHP_DRIVER_NAME,
		FILE_EXT_GPKG:    GPKG_DRIVER_NAME,
		FILE_EXT_GEOJSON: GEOJSON_DRIVER_NAME,
		FILE_EXT_JSON:    GEOJSON_DRIVER_NAME,
	}
	shpSidecars = []string{".shp", ".shx", ".dbf", ".prj", ".cpg"}
	// 坐标系WKT中长度单位所在节点
	linearUnitNodes = []string{"PROJCS|UNIT", "LOCAL_CS|UNIT"}
)
