package geo

import "github.com/wroge/wgs84"

// Project4326To3857 converts a WGS84 longitude/latitude pair to Web Mercator metres.
func Project4326To3857(lon, lat float64) Point {
	f := wgs84.EPSG().Transform(4326, 3857)
	x, y, _ := f(lon, lat, 0)
	return Point{X: x, Y: y}
}
