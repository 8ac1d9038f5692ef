package utils

import "fmt"

func PointsToWkt(x1, x2, y1, y2 float64) string {
	return fmt.Sprintf("POLYGON((%[1]f %[3]f, %[1]f %[4]f, %[2]f %[4]f, %[2]f %[3]f, %[1]f %[3]f))", x1, x2, y1, y2)
}
