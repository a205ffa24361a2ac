// Package binary encodes geometries for the disk backed geometry stores.
//
// Each value is a protobuf message with an empty flag and the WKB of the
// geometry, so that stored empty geometries can be told apart from absent
// keys.
package binary

import (
	"github.com/gogo/protobuf/proto"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkb"
	"github.com/pkg/errors"
)

type Geometry struct {
	Empty bool   `protobuf:"varint,1,opt,name=empty,proto3" json:"empty,omitempty"`
	Wkb   []byte `protobuf:"bytes,2,opt,name=wkb,proto3" json:"wkb,omitempty"`
}

func (m *Geometry) Reset()         { *m = Geometry{} }
func (m *Geometry) String() string { return proto.CompactTextString(m) }
func (*Geometry) ProtoMessage()    {}

// MarshalEmpty returns the encoded present-but-empty marker.
func MarshalEmpty() ([]byte, error) {
	return proto.Marshal(&Geometry{Empty: true})
}

// MarshalGeometry encodes g. A nil geometry is encoded as the empty marker.
func MarshalGeometry(g orb.Geometry) ([]byte, error) {
	if g == nil {
		return MarshalEmpty()
	}
	buf, err := wkb.Marshal(g)
	if err != nil {
		return nil, errors.Wrap(err, "encoding wkb")
	}
	return proto.Marshal(&Geometry{Wkb: buf})
}

// UnmarshalGeometry decodes data. It returns a nil geometry and no error
// for the empty marker.
func UnmarshalGeometry(data []byte) (orb.Geometry, error) {
	msg := &Geometry{}
	if err := proto.Unmarshal(data, msg); err != nil {
		return nil, errors.Wrap(err, "decoding geometry message")
	}
	if msg.Empty {
		return nil, nil
	}
	if len(msg.Wkb) == 0 {
		return nil, errors.New("geometry message without wkb")
	}
	g, err := wkb.Unmarshal(msg.Wkb)
	if err != nil {
		return nil, errors.Wrap(err, "decoding wkb")
	}
	return g, nil
}
