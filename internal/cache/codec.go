package cache

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Codec converts values to and from the bytes stored in bolt. Key codecs
// must be stable: equal keys always encode to equal bytes, and bolt orders
// keys by those bytes.
type Codec[T any] interface {
	Encode(v T) ([]byte, error)
	Decode(b []byte) (T, error)
}

// StringCodec stores strings as their raw UTF-8 bytes, so bolt's byte order
// is the lexical order of the strings.
type StringCodec struct{}

func (StringCodec) Encode(v string) ([]byte, error) { return []byte(v), nil }

func (StringCodec) Decode(b []byte) (string, error) { return string(b), nil }

// PrefixedStringCodec stores strings as an 8-byte big endian length followed
// by the UTF-8 bytes. The empty string still encodes to a non-empty key, and
// keys order by length first, then lexically.
type PrefixedStringCodec struct{}

const lengthPrefix = 8

func (PrefixedStringCodec) Encode(v string) ([]byte, error) {
	buf := make([]byte, lengthPrefix+len(v))
	binary.BigEndian.PutUint64(buf[:lengthPrefix], uint64(len(v)))
	copy(buf[lengthPrefix:], v)
	return buf, nil
}

func (PrefixedStringCodec) Decode(b []byte) (string, error) {
	if len(b) < lengthPrefix {
		return "", errShortKey
	}
	n := binary.BigEndian.Uint64(b[:lengthPrefix])
	if n != uint64(len(b)-lengthPrefix) {
		return "", fmt.Errorf("string key: length %d does not match %d payload bytes", n, len(b)-lengthPrefix)
	}
	return string(b[lengthPrefix:]), nil
}

// BytesCodec stores byte slices unchanged.
type BytesCodec struct{}

func (BytesCodec) Encode(v []byte) ([]byte, error) { return v, nil }

func (BytesCodec) Decode(b []byte) ([]byte, error) { return append([]byte(nil), b...), nil }

// JSONCodec encodes arbitrary values as JSON. It is fine for values; for
// keys it is only stable for types whose JSON form is deterministic.
type JSONCodec[T any] struct{}

func (JSONCodec[T]) Encode(v T) ([]byte, error) { return json.Marshal(v) }

func (JSONCodec[T]) Decode(b []byte) (T, error) {
	var v T
	err := json.Unmarshal(b, &v)
	return v, err
}

// Entry layout: 8 bytes big endian created (unix nanoseconds) || value.
const entryHeader = 8

var (
	errShortEntry = errors.New("entry shorter than header")
	errShortKey   = errors.New("key shorter than length prefix")
	errEmptyKey   = errors.New("key encodes to no bytes")
)

func encodeEntry(created time.Time, value []byte) []byte {
	buf := make([]byte, entryHeader+len(value))
	binary.BigEndian.PutUint64(buf[:entryHeader], uint64(created.UnixNano()))
	copy(buf[entryHeader:], value)
	return buf
}

// decodeEntry splits a stored entry. The returned value aliases raw, which
// bolt only keeps valid for the life of the transaction.
func decodeEntry(raw []byte) (time.Time, []byte, error) {
	if len(raw) < entryHeader {
		return time.Time{}, nil, errShortEntry
	}
	created := time.Unix(0, int64(binary.BigEndian.Uint64(raw[:entryHeader])))
	return created, raw[entryHeader:], nil
}
