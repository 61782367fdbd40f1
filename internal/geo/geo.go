// Package geo turns tower coordinates into geometries for the location map.
package geo

import (
	"encoding/json"
	"math"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/sells-group/towerdash/internal/model"
)

// InRange reports whether lat/lng is a WGS84 position.
func InRange(lat, lng float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lng) {
		return false
	}
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}

// Point returns c as an XY point in lng/lat order.
func Point(c model.Coordinates) *geom.Point {
	return geom.NewPointFlat(geom.XY, []float64{c.Lng, c.Lat})
}

// FeatureCollection builds one point feature per tower. Towers whose
// coordinates are out of range are left out.
func FeatureCollection(towers []model.Tower) *geojson.FeatureCollection {
	fc := &geojson.FeatureCollection{Features: make([]*geojson.Feature, 0, len(towers))}
	bounds := geom.NewBounds(geom.XY)
	for _, t := range towers {
		if !InRange(t.Coordinates.Lat, t.Coordinates.Lng) {
			continue
		}
		pt := Point(t.Coordinates)
		bounds.Extend(pt)
		fc.Features = append(fc.Features, &geojson.Feature{
			ID:       t.ID,
			Geometry: pt,
			Properties: map[string]any{
				"name":       t.Name,
				"location":   t.Location,
				"investment": t.Investment.Total,
				"roi":        t.Returns.ROI,
				"source":     string(t.Source),
				"estimated":  containsCoordinates(t.Missing),
			},
		})
	}
	if len(fc.Features) > 0 {
		fc.BBox = bounds
	}
	return fc
}

// MarshalTowers encodes towers as a GeoJSON FeatureCollection.
func MarshalTowers(towers []model.Tower) ([]byte, error) {
	data, err := json.Marshal(FeatureCollection(towers))
	if err != nil {
		return nil, eris.Wrap(err, "geo: encode feature collection")
	}
	return data, nil
}

func containsCoordinates(missing []string) bool {
	for _, m := range missing {
		if m == "coordinates.lat" || m == "coordinates.lng" {
			return true
		}
	}
	return false
}
