package party

import (
	"errors"

	"github.com/fxamacker/cbor/v2"
	"github.com/gargos-crypto/gargos/pkg/math/curve"
)

// PointMap is a map from party IDs to points, which can be serialized.
type PointMap struct {
	group  curve.Curve
	Points map[ID]curve.Point
}

// NewPointMap creates a PointMap from a map of points.
func NewPointMap(points map[ID]curve.Point) *PointMap {
	var group curve.Curve
	for _, v := range points {
		group = v.Curve()
		break
	}
	return &PointMap{group: group, Points: points}
}

// EmptyPointMap returns a PointMap ready to be unmarshalled into.
//
// Because the points are interface values, the group has to be known
// before their encodings can be read back.
func EmptyPointMap(group curve.Curve) *PointMap {
	return &PointMap{group: group}
}

func (m *PointMap) MarshalBinary() ([]byte, error) {
	pointBytes := make(map[ID][]byte, len(m.Points))
	for id, v := range m.Points {
		data, err := v.MarshalBinary()
		if err != nil {
			return nil, err
		}
		pointBytes[id] = data
	}
	return cbor.Marshal(pointBytes)
}

func (m *PointMap) UnmarshalBinary(data []byte) error {
	if m.group == nil {
		return errors.New("party: PointMap requires a group to unmarshal, see EmptyPointMap")
	}
	pointBytes := make(map[ID][]byte)
	if err := cbor.Unmarshal(data, &pointBytes); err != nil {
		return err
	}
	points := make(map[ID]curve.Point, len(pointBytes))
	for id, bs := range pointBytes {
		point := m.group.NewPoint()
		if err := point.UnmarshalBinary(bs); err != nil {
			return err
		}
		points[id] = point
	}
	m.Points = points
	return nil
}
