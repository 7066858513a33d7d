// Package timelog decodes ISO 11783 binary time logs into per-task series.
//
// Each logged run is a pair of inputs: an XML header descriptor declaring
// which fixed-format fields and which data channels the binary stream
// carries, and the stream itself, a repeating sequence of header records
// followed by sparse change-sets that update a carry-forward value table.
package timelog

import (
	"encoding/binary"
	"fmt"
	"io"
	"time"
)

// ValueKind is the closed set of value encodings a time-log field can carry.
// Adding a kind requires updating Width, IsText and readValue, which the
// compiler's exhaustive switches enforce.
type ValueKind uint8

const (
	KindUint8 ValueKind = iota
	KindInt16
	KindInt32
	KindUint16
	KindUint32
	KindUint64
	// KindDate is a uint16 day offset from 1980-01-01, rendered "YYYY-MM-DD".
	KindDate
	// KindTime is a uint32 millisecond-of-day, rendered "HH:MM:SS.mmm".
	KindTime
)

// Width returns the encoded size of the kind in bytes.
func (k ValueKind) Width() int {
	switch k {
	case KindUint8:
		return 1
	case KindInt16, KindUint16, KindDate:
		return 2
	case KindInt32, KindUint32, KindTime:
		return 4
	case KindUint64:
		return 8
	default:
		panic(fmt.Sprintf("unknown value kind %d", k))
	}
}

// IsText reports whether decoded values of this kind are derived strings
// rather than integers.
func (k ValueKind) IsText() bool {
	return k == KindDate || k == KindTime
}

// Value is one decoded sample. Integer kinds populate Num; derived kinds
// populate Text.
type Value struct {
	Kind ValueKind
	Num  int64
	Text string
}

// dateEpoch anchors the uint16 day-offset encoding.
var dateEpoch = time.Date(1980, time.January, 1, 0, 0, 0, 0, time.UTC)

// FormatDate renders a day offset from 1980-01-01 as an ISO calendar date.
func FormatDate(days uint16) string {
	return dateEpoch.AddDate(0, 0, int(days)).Format("2006-01-02")
}

// FormatTime renders a millisecond-of-day as a zero-padded clock time.
func FormatTime(ms uint32) string {
	h := ms / 3600000
	m := ms / 60000 % 60
	s := ms / 1000 % 60
	return fmt.Sprintf("%02d:%02d:%02d.%03d", h, m, s, ms%1000)
}

// readValue decodes one fixed-width value from the stream. The stream's
// native byte order is little-endian. io.ReadFull semantics surface a clean
// end of stream as io.EOF and a partial read as io.ErrUnexpectedEOF.
func readValue(r io.Reader, k ValueKind) (Value, error) {
	var buf [8]byte
	if _, err := io.ReadFull(r, buf[:k.Width()]); err != nil {
		return Value{}, err
	}

	v := Value{Kind: k}
	switch k {
	case KindUint8:
		v.Num = int64(buf[0])
	case KindInt16:
		v.Num = int64(int16(binary.LittleEndian.Uint16(buf[:2])))
	case KindInt32:
		v.Num = int64(int32(binary.LittleEndian.Uint32(buf[:4])))
	case KindUint16:
		v.Num = int64(binary.LittleEndian.Uint16(buf[:2]))
	case KindUint32:
		v.Num = int64(binary.LittleEndian.Uint32(buf[:4]))
	case KindUint64:
		v.Num = int64(binary.LittleEndian.Uint64(buf[:8]))
	case KindDate:
		v.Text = FormatDate(binary.LittleEndian.Uint16(buf[:2]))
	case KindTime:
		v.Text = FormatTime(binary.LittleEndian.Uint32(buf[:4]))
	default:
		panic(fmt.Sprintf("unknown value kind %d", k))
	}
	return v, nil
}
