package cell

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"

	"github.com/cvsouth/abicell/abierr"
	"github.com/cvsouth/abicell/bitstring"
)

// magic identifies this module's bag-of-cells byte format. It is not
// claimed compatible with any external BOC format (see SPEC_FULL.md
// §4.8) — it exists so encode_function_call has somewhere to put
// bytes, grounded on the mr-tron/tongo boc.go reference file's
// magic-prefix + descriptor-per-cell + optional-CRC32 layout.
var magic = []byte{0xAB, 0xC0, 0x11, 0xE5}

const flagHasCRC32 = 1 << 0

var crcTable = crc32.MakeTable(crc32.Castagnoli)

// Serialize flattens the Cell DAG rooted at root into a byte stream:
// a small header (magic, flags, cell count, root index) followed by
// each cell's descriptor (data-bit length, raw data bytes, reference
// indices) in topological order (children before parents), and a
// trailing CRC32 of everything before it.
func Serialize(root *Cell) ([]byte, error) {
	order, index, err := topologicalSort(root)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.Write(magic)
	buf.WriteByte(flagHasCRC32)

	var u32 [4]byte
	binary.BigEndian.PutUint32(u32[:], uint32(len(order)))
	buf.Write(u32[:])
	binary.BigEndian.PutUint32(u32[:], uint32(index[root]))
	buf.Write(u32[:])

	for _, c := range order {
		var u16 [2]byte
		binary.BigEndian.PutUint16(u16[:], uint16(c.Data.Length()))
		buf.Write(u16[:])
		buf.Write(c.Data.Bytes())
		buf.WriteByte(byte(len(c.Refs)))
		for _, r := range c.Refs {
			binary.BigEndian.PutUint32(u32[:], uint32(index[r]))
			buf.Write(u32[:])
		}
	}

	out := buf.Bytes()
	crc := crc32.Checksum(out, crcTable)
	var crcBuf [4]byte
	binary.LittleEndian.PutUint32(crcBuf[:], crc)
	return append(out, crcBuf[:]...), nil
}

// Deserialize is the inverse of Serialize.
func Deserialize(data []byte) (*Cell, error) {
	if len(data) < len(magic)+1+4+4+4 {
		return nil, abierr.New(abierr.InvalidData, "bag-of-cells data too short (%d bytes)", len(data))
	}
	body := data[:len(data)-4]
	wantCRC := binary.LittleEndian.Uint32(data[len(data)-4:])
	gotCRC := crc32.Checksum(body, crcTable)
	if wantCRC != gotCRC {
		return nil, abierr.New(abierr.IoError, "bag-of-cells CRC32 mismatch: got %08x want %08x", gotCRC, wantCRC)
	}

	r := bytes.NewReader(body)
	magicBuf := make([]byte, len(magic))
	if _, err := r.Read(magicBuf); err != nil || !bytes.Equal(magicBuf, magic) {
		return nil, abierr.New(abierr.InvalidData, "bad bag-of-cells magic prefix")
	}
	flags, err := r.ReadByte()
	if err != nil {
		return nil, abierr.Wrap(abierr.InvalidData, err, "read flags")
	}
	_ = flags

	cellsNum, err := readU32(r)
	if err != nil {
		return nil, abierr.Wrap(abierr.InvalidData, err, "read cell count")
	}
	rootIndex, err := readU32(r)
	if err != nil {
		return nil, abierr.Wrap(abierr.InvalidData, err, "read root index")
	}
	if rootIndex >= cellsNum {
		return nil, abierr.New(abierr.InvalidData, "root index %d out of range (%d cells)", rootIndex, cellsNum)
	}

	type rawCell struct {
		bitLen int
		data   []byte
		refIdx []uint32
	}
	raws := make([]rawCell, cellsNum)
	for i := range raws {
		bitLen, err := readU16(r)
		if err != nil {
			return nil, abierr.Wrap(abierr.InvalidData, err, "read cell %d data length", i)
		}
		nBytes := (int(bitLen) + 7) / 8
		dataBuf := make([]byte, nBytes)
		if _, err := readFull(r, dataBuf); err != nil {
			return nil, abierr.Wrap(abierr.InvalidData, err, "read cell %d data", i)
		}
		refCount, err := r.ReadByte()
		if err != nil {
			return nil, abierr.Wrap(abierr.InvalidData, err, "read cell %d reference count", i)
		}
		if int(refCount) > MaxRefs {
			return nil, abierr.New(abierr.InvalidData, "cell %d has %d references, exceeds max %d", i, refCount, MaxRefs)
		}
		refIdx := make([]uint32, refCount)
		for j := range refIdx {
			idx, err := readU32(r)
			if err != nil {
				return nil, abierr.Wrap(abierr.InvalidData, err, "read cell %d reference %d", i, j)
			}
			if idx >= uint32(i) {
				return nil, abierr.New(abierr.InvalidData, "cell %d references non-prior cell %d", i, idx)
			}
			refIdx[j] = idx
		}
		raws[i] = rawCell{bitLen: int(bitLen), data: dataBuf, refIdx: refIdx}
	}

	cells := make([]*Cell, cellsNum)
	for i, raw := range raws {
		refs := make([]*Cell, len(raw.refIdx))
		for j, idx := range raw.refIdx {
			refs[j] = cells[idx]
		}
		cells[i] = &Cell{Data: bitstring.Create(raw.data, raw.bitLen), Refs: refs}
	}
	return cells[rootIndex], nil
}

func topologicalSort(root *Cell) ([]*Cell, map[*Cell]int, error) {
	var order []*Cell
	index := map[*Cell]int{}
	visiting := map[*Cell]bool{}

	var visit func(c *Cell) error
	visit = func(c *Cell) error {
		if _, ok := index[c]; ok {
			return nil
		}
		if visiting[c] {
			return abierr.New(abierr.InternalError, "cycle detected in cell DAG")
		}
		visiting[c] = true
		for _, r := range c.Refs {
			if err := visit(r); err != nil {
				return err
			}
		}
		delete(visiting, c)
		index[c] = len(order)
		order = append(order, c)
		return nil
	}
	if err := visit(root); err != nil {
		return nil, nil, err
	}
	return order, index, nil
}

func readU32(r *bytes.Reader) (uint32, error) {
	var buf [4]byte
	if _, err := readFull(r, buf[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(buf[:]), nil
}

func readU16(r *bytes.Reader) (uint16, error) {
	var buf [2]byte
	if _, err := readFull(r, buf[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(buf[:]), nil
}

func readFull(r *bytes.Reader, buf []byte) (int, error) {
	n := 0
	for n < len(buf) {
		m, err := r.Read(buf[n:])
		n += m
		if err != nil {
			return n, err
		}
		if m == 0 {
			return n, abierr.New(abierr.InvalidData, "unexpected end of data")
		}
	}
	return n, nil
}
