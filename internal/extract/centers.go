package extract

import (
	"github.com/cockroachdb/errors"

	"github.com/ppiankov/brainmap/internal/rma"
)

// Reference spaces used as hemisphere markers by structure centers
const (
	ReferenceSpaceLeft  int64 = 9
	ReferenceSpaceRight int64 = 10
)

// CenterPath locates structure centers below a structure row.
const CenterPath = "structure-centers/structure-center"

// Point is a position in reference-atlas coordinates (micrometres)
type Point struct {
	X int64 `json:"x"`
	Y int64 `json:"y"`
	Z int64 `json:"z"`
}

// Coordinates groups points by reference space id, in source order.
type Coordinates map[int64][]Point

// Left returns the left hemisphere points.
func (c Coordinates) Left() []Point { return c[ReferenceSpaceLeft] }

// Right returns the right hemisphere points.
func (c Coordinates) Right() []Point { return c[ReferenceSpaceRight] }

// Centers collects every structure center of every row, grouped by
// reference space. A response without centers yields an empty map.
func Centers(env *rma.Envelope) (Coordinates, error) {
	coords := make(Coordinates)
	for _, center := range env.FindAll(CenterPath) {
		space, err := centerInt(center, "reference-space-id")
		if err != nil {
			return nil, err
		}
		var p Point
		for _, axis := range []struct {
			name string
			dst  *int64
		}{
			{"x", &p.X},
			{"y", &p.Y},
			{"z", &p.Z},
		} {
			if *axis.dst, err = centerInt(center, axis.name); err != nil {
				return nil, err
			}
		}
		coords[space] = append(coords[space], p)
	}
	return coords, nil
}

func centerInt(center *rma.Node, name string) (int64, error) {
	n := center.Find(name)
	if n == nil {
		return 0, errors.Mark(errors.Newf("structure center without %s", name), rma.ErrMalformedValue)
	}
	v, err := parse(n, KindInt)
	if err != nil {
		return 0, err
	}
	i, ok := v.Int()
	if !ok {
		return 0, errors.Mark(errors.Newf("structure center with empty %s", name), rma.ErrMalformedValue)
	}
	return i, nil
}
