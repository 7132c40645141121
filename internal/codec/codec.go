// Package codec serializes archive metadata to the structure store layout.
//
// All integers are little-endian and fixed width:
//
//	blockSize  u64
//	blockCount u64
//	blocks     blockCount × i64 (-1 = free, else file index)
//	numFiles   u64
//	files      numFiles × (nameLength u32, name bytes, size u64)
//
// The layout carries no magic number, version or checksum. Decode accepts
// any stream long enough to satisfy the declared counts and ignores
// trailing bytes; structural checks live in meta.Info.Validate.
package codec

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/meigma/vfs/internal/meta"
	"github.com/meigma/vfs/internal/vfstype"
)

// maxPrealloc caps slice capacity reserved from declared counts so a
// corrupt count fails on a short read instead of a huge allocation.
const maxPrealloc = 1 << 16

var order = binary.LittleEndian

// Marshal returns the encoded form of m.
func Marshal(m *meta.Info) ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(EncodedSize(m))
	if err := Encode(&buf, m); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes metadata from data.
func Unmarshal(data []byte) (*meta.Info, error) {
	return Decode(bytes.NewReader(data))
}

// EncodedSize returns the number of bytes Encode writes for m.
func EncodedSize(m *meta.Info) int {
	n := 8 + 8 + 8*len(m.Blocks) + 8
	for _, f := range m.Files {
		n += 4 + len(f.Name) + 8
	}
	return n
}

// Encode writes m to w.
func Encode(w io.Writer, m *meta.Info) error {
	for _, f := range m.Files {
		if uint64(len(f.Name)) > math.MaxUint32 {
			return fmt.Errorf("%w: name of %d bytes", vfstype.ErrInvalidName, len(f.Name))
		}
	}

	bw := bufio.NewWriter(w)
	var scratch [8]byte
	putU64 := func(v uint64) {
		order.PutUint64(scratch[:], v)
		bw.Write(scratch[:8]) //nolint:errcheck // bufio keeps the first error for Flush
	}

	putU64(m.BlockSize)
	putU64(m.BlockCount)
	for _, owner := range m.Blocks {
		putU64(uint64(owner)) //nolint:gosec // two's complement keeps -1 as all ones
	}
	putU64(uint64(len(m.Files)))
	for _, f := range m.Files {
		order.PutUint32(scratch[:4], uint32(len(f.Name))) //nolint:gosec // checked above
		bw.Write(scratch[:4])                             //nolint:errcheck // bufio keeps the first error for Flush
		bw.WriteString(f.Name)                            //nolint:errcheck // bufio keeps the first error for Flush
		putU64(f.Size)
	}
	return bw.Flush()
}

// Decode reads metadata from r.
//
// A stream that ends before every declared field is read fails with
// vfstype.ErrCorruptMetadata.
func Decode(r io.Reader) (*meta.Info, error) {
	d := decoder{r: bufio.NewReader(r)}

	m := &meta.Info{}
	m.BlockSize = d.u64("block size")
	m.BlockCount = d.u64("block count")
	if d.err != nil {
		return nil, d.err
	}

	m.Blocks = make([]int64, 0, min(m.BlockCount, maxPrealloc))
	for i := uint64(0); i < m.BlockCount && d.err == nil; i++ {
		m.Blocks = append(m.Blocks, int64(d.u64("block table"))) //nolint:gosec // two's complement
	}

	numFiles := d.u64("file count")
	if d.err != nil {
		return nil, d.err
	}
	m.Files = make([]meta.Entry, 0, min(numFiles, maxPrealloc))
	for i := uint64(0); i < numFiles && d.err == nil; i++ {
		name := d.name()
		size := d.u64("file size")
		m.Files = append(m.Files, meta.Entry{Name: name, Size: size})
	}
	if d.err != nil {
		return nil, d.err
	}
	return m, nil
}

// decoder keeps the first read error so field reads can be chained.
type decoder struct {
	r       *bufio.Reader
	scratch [8]byte
	err     error
}

func (d *decoder) fill(n int, field string) []byte {
	if d.err != nil {
		return nil
	}
	if _, err := io.ReadFull(d.r, d.scratch[:n]); err != nil {
		d.err = readErr(field, err)
		return nil
	}
	return d.scratch[:n]
}

func (d *decoder) u64(field string) uint64 {
	b := d.fill(8, field)
	if b == nil {
		return 0
	}
	return order.Uint64(b)
}

func (d *decoder) name() string {
	b := d.fill(4, "name length")
	if b == nil {
		return ""
	}
	n := order.Uint32(b)

	// Read through a LimitReader so a bogus length cannot force a large
	// allocation before the stream runs dry.
	var sb bytes.Buffer
	sb.Grow(int(min(n, maxPrealloc)))
	copied, err := io.Copy(&sb, io.LimitReader(d.r, int64(n)))
	if err != nil {
		d.err = readErr("name", err)
		return ""
	}
	if copied != int64(n) {
		d.err = readErr("name", io.ErrUnexpectedEOF)
		return ""
	}
	return sb.String()
}

func readErr(field string, err error) error {
	if errors.Is(err, io.EOF) {
		err = io.ErrUnexpectedEOF
	}
	return fmt.Errorf("%w: reading %s: %w", vfstype.ErrCorruptMetadata, field, err)
}
