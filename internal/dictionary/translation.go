package dictionary

import (
	"encoding/binary"
	"errors"
	"fmt"
	"unicode/utf8"
)

// Translation is the ordered list of accepted translations of one source
// phrase. Duplicates are kept.
type Translation []string

// TranslationCodec encodes a Translation as a uvarint item count followed by
// each item as a uvarint byte length and its UTF-8 bytes.
type TranslationCodec struct{}

var errTruncated = errors.New("translation: truncated")

func (TranslationCodec) Encode(t Translation) ([]byte, error) {
	size := binary.MaxVarintLen64
	for _, s := range t {
		size += binary.MaxVarintLen64 + len(s)
	}
	buf := make([]byte, 0, size)
	buf = binary.AppendUvarint(buf, uint64(len(t)))
	for i, s := range t {
		if !utf8.ValidString(s) {
			return nil, fmt.Errorf("translation: item %d is not valid UTF-8", i)
		}
		buf = binary.AppendUvarint(buf, uint64(len(s)))
		buf = append(buf, s...)
	}
	return buf, nil
}

func (TranslationCodec) Decode(b []byte) (Translation, error) {
	n, read := binary.Uvarint(b)
	if read <= 0 {
		return nil, errTruncated
	}
	b = b[read:]
	// every item takes at least its length byte
	if n > uint64(len(b)) {
		return nil, errTruncated
	}
	out := make(Translation, 0, n)
	for i := uint64(0); i < n; i++ {
		l, read := binary.Uvarint(b)
		if read <= 0 || uint64(len(b)-read) < l {
			return nil, errTruncated
		}
		b = b[read:]
		out = append(out, string(b[:l]))
		b = b[l:]
	}
	if len(b) != 0 {
		return nil, fmt.Errorf("translation: %d trailing bytes", len(b))
	}
	return out, nil
}
