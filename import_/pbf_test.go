package import_

import (
	"bytes"
	"encoding/binary"
	"math"
	"os"
	"testing"
	"time"

	"github.com/gogo/protobuf/proto"
	osm "github.com/omniscale/go-osm"
	"github.com/stretchr/testify/require"
)

// pbfWriter encodes small OSM PBF files with uncompressed blobs. Nodes,
// ways and relations are written in separate blocks, in this order. All
// elements get version 1 by user mapper (uid 42) in changeset 4711 at
// timestamp.
type pbfWriter struct {
	timestamp time.Time
	nodes     []osm.Node
	ways      []osm.Way
	relations []osm.Relation
}

const (
	wireVarint = 0
	wireBytes  = 2
)

func key(b *proto.Buffer, field, wire int) {
	b.EncodeVarint(uint64(field<<3 | wire))
}

func message(fn func(b *proto.Buffer)) []byte {
	b := proto.NewBuffer(nil)
	fn(b)
	return b.Bytes()
}

func bytesField(b *proto.Buffer, field int, data []byte) {
	key(b, field, wireBytes)
	b.EncodeRawBytes(data)
}

func varintField(b *proto.Buffer, field int, v uint64) {
	key(b, field, wireVarint)
	b.EncodeVarint(v)
}

func sintField(b *proto.Buffer, field int, v int64) {
	key(b, field, wireVarint)
	b.EncodeZigzag64(uint64(v))
}

func packedVarints(b *proto.Buffer, field int, vs []uint64) {
	if len(vs) == 0 {
		return
	}
	bytesField(b, field, message(func(p *proto.Buffer) {
		for _, v := range vs {
			p.EncodeVarint(v)
		}
	}))
}

func packedSints(b *proto.Buffer, field int, vs []int64) {
	if len(vs) == 0 {
		return
	}
	bytesField(b, field, message(func(p *proto.Buffer) {
		for _, v := range vs {
			p.EncodeZigzag64(uint64(v))
		}
	}))
}

func deltas(vs []int64) []int64 {
	result := make([]int64, len(vs))
	var last int64
	for i, v := range vs {
		result[i] = v - last
		last = v
	}
	return result
}

type stringTable struct {
	index   map[string]uint64
	strings []string
}

func newStringTable() *stringTable {
	// index 0 is reserved as delimiter
	return &stringTable{index: map[string]uint64{"": 0}, strings: []string{""}}
}

func (st *stringTable) id(s string) uint64 {
	if i, ok := st.index[s]; ok {
		return i
	}
	i := uint64(len(st.strings))
	st.index[s] = i
	st.strings = append(st.strings, s)
	return i
}

func (st *stringTable) tags(tags osm.Tags) (keys, vals []uint64) {
	for k, v := range tags {
		keys = append(keys, st.id(k))
		vals = append(vals, st.id(v))
	}
	return keys, vals
}

func (st *stringTable) encode() []byte {
	return message(func(b *proto.Buffer) {
		for _, s := range st.strings {
			bytesField(b, 1, []byte(s))
		}
	})
}

func writeBlock(buf *bytes.Buffer, typ string, data []byte) {
	blob := message(func(b *proto.Buffer) {
		bytesField(b, 1, data)
		varintField(b, 2, uint64(len(data)))
	})
	header := message(func(b *proto.Buffer) {
		bytesField(b, 1, []byte(typ))
		varintField(b, 3, uint64(len(blob)))
	})
	binary.Write(buf, binary.BigEndian, int32(len(header)))
	buf.Write(header)
	buf.Write(blob)
}

// primitiveBlock encodes one group with the granularity of 100 nanodegrees.
func primitiveBlock(encodeGroup func(b *proto.Buffer, st *stringTable)) []byte {
	st := newStringTable()
	group := message(func(b *proto.Buffer) { encodeGroup(b, st) })
	return message(func(b *proto.Buffer) {
		bytesField(b, 1, st.encode())
		bytesField(b, 2, group)
		varintField(b, 17, 100)
	})
}

// info encodes the same metadata for all elements.
func (w *pbfWriter) info(b *proto.Buffer, st *stringTable) {
	bytesField(b, 4, message(func(m *proto.Buffer) {
		varintField(m, 1, 1)
		varintField(m, 2, uint64(w.timestamp.Unix()))
		varintField(m, 3, 4711)
		varintField(m, 4, 42)
		varintField(m, 5, st.id("mapper"))
	}))
}

func coord(deg float64) int64 {
	return int64(math.Round(deg * 1e7))
}

func (w *pbfWriter) encode() []byte {
	buf := &bytes.Buffer{}
	writeBlock(buf, "OSMHeader", message(func(b *proto.Buffer) {
		bytesField(b, 4, []byte("OsmSchema-V0.6"))
		bytesField(b, 16, []byte("osmwrangle-test"))
		if !w.timestamp.IsZero() {
			varintField(b, 32, uint64(w.timestamp.Unix()))
		}
	}))

	if len(w.nodes) > 0 {
		writeBlock(buf, "OSMData", primitiveBlock(func(b *proto.Buffer, st *stringTable) {
			for _, nd := range w.nodes {
				bytesField(b, 1, message(func(m *proto.Buffer) {
					sintField(m, 1, nd.ID)
					keys, vals := st.tags(nd.Tags)
					packedVarints(m, 2, keys)
					packedVarints(m, 3, vals)
					w.info(m, st)
					sintField(m, 8, coord(nd.Lat))
					sintField(m, 9, coord(nd.Long))
				}))
			}
		}))
	}
	if len(w.ways) > 0 {
		writeBlock(buf, "OSMData", primitiveBlock(func(b *proto.Buffer, st *stringTable) {
			for _, way := range w.ways {
				bytesField(b, 3, message(func(m *proto.Buffer) {
					varintField(m, 1, uint64(way.ID))
					keys, vals := st.tags(way.Tags)
					packedVarints(m, 2, keys)
					packedVarints(m, 3, vals)
					w.info(m, st)
					packedSints(m, 8, deltas(way.Refs))
				}))
			}
		}))
	}
	if len(w.relations) > 0 {
		writeBlock(buf, "OSMData", primitiveBlock(func(b *proto.Buffer, st *stringTable) {
			for _, rel := range w.relations {
				bytesField(b, 4, message(func(m *proto.Buffer) {
					varintField(m, 1, uint64(rel.ID))
					keys, vals := st.tags(rel.Tags)
					packedVarints(m, 2, keys)
					packedVarints(m, 3, vals)
					w.info(m, st)
					var roles, types []uint64
					var ids []int64
					for _, mem := range rel.Members {
						roles = append(roles, st.id(mem.Role))
						ids = append(ids, mem.ID)
						types = append(types, uint64(mem.Type))
					}
					packedVarints(m, 8, roles)
					packedSints(m, 9, deltas(ids))
					packedVarints(m, 10, types)
				}))
			}
		}))
	}
	return buf.Bytes()
}

func (w *pbfWriter) write(t *testing.T, fname string) {
	t.Helper()
	require.NoError(t, os.WriteFile(fname, w.encode(), 0644))
}
