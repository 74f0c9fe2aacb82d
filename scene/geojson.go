package scene

import (
	"fmt"
	"os"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// LoadGeoJSONWalls reads walls from a GeoJSON feature collection file
func LoadGeoJSONWalls(path string) ([]Wall, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("scene: load %s: %w", path, err)
	}
	walls, err := ParseGeoJSONWalls(data)
	if err != nil {
		return nil, fmt.Errorf("scene: parse %s: %w", path, err)
	}
	return walls, nil
}

// ParseGeoJSONWalls converts LineString, MultiLineString and Polygon features
// into walls, one wall per edge. Feature properties may set
// blocks_movement (default true) and door (default none). Wall ids are the
// feature id, or its index, followed by the edge number.
func ParseGeoJSONWalls(data []byte) ([]Wall, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, err
	}

	var walls []Wall
	for i, feature := range fc.Features {
		prefix := fmt.Sprintf("feature-%d", i)
		if feature.ID != nil {
			prefix = fmt.Sprint(feature.ID)
		}

		door, err := ParseDoorState(feature.Properties.MustString("door", "none"))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", prefix, err)
		}
		template := Wall{
			BlocksMovement: feature.Properties.MustBool("blocks_movement", true),
			Door:           door,
		}

		for j, line := range lineStrings(feature.Geometry) {
			for k := 1; k < len(line); k++ {
				wall := template
				wall.ID = fmt.Sprintf("%s-%d-%d", prefix, j, k-1)
				wall.C = [4]float64{line[k-1].X(), line[k-1].Y(), line[k].X(), line[k].Y()}
				walls = append(walls, wall)
			}
		}
	}

	return walls, nil
}

// lineStrings flattens the geometry types that can describe walls
func lineStrings(g orb.Geometry) []orb.LineString {
	switch geom := g.(type) {
	case orb.LineString:
		return []orb.LineString{geom}
	case orb.MultiLineString:
		return geom
	case orb.Ring:
		return []orb.LineString{orb.LineString(geom)}
	case orb.Polygon:
		lines := make([]orb.LineString, 0, len(geom))
		for _, ring := range geom {
			lines = append(lines, orb.LineString(ring))
		}
		return lines
	case orb.MultiPolygon:
		var lines []orb.LineString
		for _, poly := range geom {
			lines = append(lines, lineStrings(poly)...)
		}
		return lines
	}
	return nil
}
