package nbt

import (
	"bufio"
	"compress/gzip"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

// Tag type identifiers as they appear on the wire.
const (
	tagEnd       = 0
	tagByte      = 1
	tagShort     = 2
	tagInt       = 3
	tagLong      = 4
	tagFloat     = 5
	tagDouble    = 6
	tagByteArray = 7
	tagString    = 8
	tagList      = 9
	tagCompound  = 10
	tagIntArray  = 11
	tagLongArray = 12
)

// errUnknownTag marks a tag value outside the supported range. The decoder
// cannot resync past it, so the remainder of the enclosing compounds is
// abandoned while everything already read is kept.
var errUnknownTag = errors.New("nbt: unknown tag")

// ErrNoData is returned when nothing could be extracted from the stream.
// Callers must treat it as "cannot bootstrap from this file", never as an
// empty inventory.
var ErrNoData = errors.New("nbt: no data extracted")

// ReadCompressed decodes a gzip-compressed tag stream, as stored in
// per-player .dat save files.
func ReadCompressed(r io.Reader) (Compound, error) {
	zr, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoData, err)
	}
	defer zr.Close()
	return Read(zr)
}

// Read decodes an uncompressed tag stream. The stream must start with a
// named compound tag.
func Read(r io.Reader) (Compound, error) {
	br := bufio.NewReader(r)

	tag, err := br.ReadByte()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoData, err)
	}
	if tag != tagCompound {
		return nil, fmt.Errorf("%w: top-level tag %d is not a compound", ErrNoData, tag)
	}
	if _, err := readString(br); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoData, err)
	}

	c, err := readCompound(br)
	if err != nil && !errors.Is(err, errUnknownTag) {
		return nil, fmt.Errorf("%w: %v", ErrNoData, err)
	}
	return c, nil
}

// readCompound reads (tag, name, value) triples until the end tag. An
// unknown tag stops the walk and surfaces errUnknownTag alongside the fields
// collected so far; any other error is fatal for the whole read.
func readCompound(r *bufio.Reader) (Compound, error) {
	c := make(Compound)
	for {
		tag, err := r.ReadByte()
		if err != nil {
			return nil, err
		}
		if tag == tagEnd {
			return c, nil
		}
		name, err := readString(r)
		if err != nil {
			return nil, err
		}
		value, err := readValue(r, tag)
		if value != nil {
			c[name] = value
		}
		if err != nil {
			if errors.Is(err, errUnknownTag) {
				return c, err
			}
			return nil, err
		}
	}
}

func readValue(r *bufio.Reader, tag byte) (any, error) {
	switch tag {
	case tagByte:
		b, err := r.ReadByte()
		return int8(b), err
	case tagShort:
		var v int16
		err := binary.Read(r, binary.BigEndian, &v)
		return v, err
	case tagInt:
		var v int32
		err := binary.Read(r, binary.BigEndian, &v)
		return v, err
	case tagLong:
		var v int64
		err := binary.Read(r, binary.BigEndian, &v)
		return v, err
	case tagFloat:
		var bits uint32
		if err := binary.Read(r, binary.BigEndian, &bits); err != nil {
			return nil, err
		}
		return math.Float32frombits(bits), nil
	case tagDouble:
		var bits uint64
		if err := binary.Read(r, binary.BigEndian, &bits); err != nil {
			return nil, err
		}
		return math.Float64frombits(bits), nil
	case tagByteArray:
		n, err := readLength(r)
		if err != nil {
			return nil, err
		}
		buf := make([]byte, n)
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, err
		}
		return buf, nil
	case tagString:
		return readString(r)
	case tagList:
		return readList(r)
	case tagCompound:
		return readCompound(r)
	case tagIntArray:
		n, err := readLength(r)
		if err != nil {
			return nil, err
		}
		out := make([]int32, n)
		for i := range out {
			if err := binary.Read(r, binary.BigEndian, &out[i]); err != nil {
				return nil, err
			}
		}
		return out, nil
	case tagLongArray:
		n, err := readLength(r)
		if err != nil {
			return nil, err
		}
		out := make([]int64, n)
		for i := range out {
			if err := binary.Read(r, binary.BigEndian, &out[i]); err != nil {
				return nil, err
			}
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: %d", errUnknownTag, tag)
	}
}

// readList decodes a homogeneous list: element tag, element count, then each
// element in the declared type.
func readList(r *bufio.Reader) (any, error) {
	elemTag, err := r.ReadByte()
	if err != nil {
		return nil, err
	}
	count, err := readLength(r)
	if err != nil {
		return nil, err
	}
	out := make([]any, 0, count)
	if count == 0 {
		return out, nil
	}
	if elemTag == tagEnd {
		// Empty lists are sometimes written with an end element tag and a
		// zero count; a positive count here is corrupt.
		return nil, fmt.Errorf("list of end tags with count %d", count)
	}
	for i := 0; i < count; i++ {
		value, err := readValue(r, elemTag)
		if value != nil {
			out = append(out, value)
		}
		if err != nil {
			return out, err
		}
	}
	return out, nil
}

// readString decodes a length-prefixed modified-UTF8 string. The modified
// encoding differs from standard UTF-8 only in corner cases irrelevant to
// the identifiers and field names read here.
func readString(r *bufio.Reader) (string, error) {
	var n uint16
	if err := binary.Read(r, binary.BigEndian, &n); err != nil {
		return "", err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

func readLength(r *bufio.Reader) (int, error) {
	var n int32
	if err := binary.Read(r, binary.BigEndian, &n); err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, fmt.Errorf("negative length %d", n)
	}
	return int(n), nil
}
