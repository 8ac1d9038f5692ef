package gdalkit

import "errors"

var (
	ErrGdalDriverCreate  = errors.New("gdal driver create err")
	ErrUnsupportedFormat = errors.New("unsupported vector format")
	ErrGdalEmptyLayer    = errors.New("gdal data source has no layer")
	ErrGeosOperation     = errors.New("geos operation failed")
	ErrInvalidWKT        = errors.New("invalid WKT")
	ErrGdalWriteFeature  = errors.New("gdal write feature err")
)
