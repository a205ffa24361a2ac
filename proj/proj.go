package proj

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/project"
	"github.com/pkg/errors"
)

const (
	WGS84    = 4326
	Mercator = 3857
)

var ErrUnsupportedSRID = errors.New("unsupported SRID, only 4326 and 3857 are supported")

func WgsToMerc(long, lat float64) (x, y float64) {
	p := project.WGS84.ToMercator(orb.Point{long, lat})
	return p[0], p[1]
}

func MercToWgs(x, y float64) (long, lat float64) {
	p := project.Mercator.ToWGS84(orb.Point{x, y})
	return p[0], p[1]
}

func Supported(srid int) bool {
	return srid == WGS84 || srid == Mercator
}

// FromWGS84 returns a copy of the WGS84 geometry g in srid.
func FromWGS84(g orb.Geometry, srid int) (orb.Geometry, error) {
	switch srid {
	case WGS84:
		return orb.Clone(g), nil
	case Mercator:
		return project.Geometry(orb.Clone(g), project.WGS84.ToMercator), nil
	}
	return nil, ErrUnsupportedSRID
}

// ToWGS84 returns a copy of the geometry g in srid as WGS84 geometry.
func ToWGS84(g orb.Geometry, srid int) (orb.Geometry, error) {
	switch srid {
	case WGS84:
		return orb.Clone(g), nil
	case Mercator:
		return project.Geometry(orb.Clone(g), project.Mercator.ToWGS84), nil
	}
	return nil, ErrUnsupportedSRID
}
