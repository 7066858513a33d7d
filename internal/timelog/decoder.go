package timelog

import (
	"errors"
	"fmt"
	"io"
)

// ErrNoHeaderFields is returned when a run's header schema is empty: the
// stream then contains no synchronization points and cannot be decoded.
var ErrNoHeaderFields = errors.New("time-log header declares no fields")

// ErrStreamTruncated is returned when the stream ends while a fixed-width
// read is in progress. The run keeps whatever was decoded before the cut.
var ErrStreamTruncated = errors.New("time-log stream truncated mid-record")

// HeaderColumn pairs a header field with its decoded series.
type HeaderColumn struct {
	Field  HeaderField
	Series *Series
}

// NewHeaderColumn creates an empty column for one header field.
func NewHeaderColumn(f HeaderField) *HeaderColumn {
	return &HeaderColumn{Field: f, Series: NewSeries(f.Kind)}
}

// ChannelColumn pairs a channel descriptor with its decoded series and the
// channel's carry-forward value.
type ChannelColumn struct {
	Descriptor ChannelDescriptor
	Series     *Series
	current    int32
}

// NewChannelColumn creates an empty column seeded with the channel's
// schema-declared start value.
func NewChannelColumn(desc ChannelDescriptor, seed int32) *ChannelColumn {
	return &ChannelColumn{Descriptor: desc, Series: NewSeries(desc.Kind), current: seed}
}

// Decoder consumes the binary stream for one run. The header fields are
// decoded cyclically; after each full header cycle a change-set record
// updates the channels' carry-forward values, and every channel appends its
// current value, changed or not.
type Decoder struct {
	headers  []*HeaderColumn
	channels []*ChannelColumn
}

// NewDecoder creates a decoder over the run's columns. The channel order
// defines the ordinal index space the change-set index bytes refer to.
func NewDecoder(headers []*HeaderColumn, channels []*ChannelColumn) *Decoder {
	return &Decoder{headers: headers, channels: channels}
}

// Decode reads the stream to exhaustion. Whatever was decoded up to an
// error remains in the columns; the synthetic leading channel sample is
// trimmed on every exit path so the columns are final either way.
func (d *Decoder) Decode(r io.Reader) error {
	if len(d.headers) == 0 {
		return ErrNoHeaderFields
	}

	// Each completed header cycle appends every channel's carry-forward
	// value before the cycle's change-set is read, so the first append is a
	// synthetic sample holding the seeded values; TrimLeading removes it
	// once the run is done.
	defer func() {
		for _, ch := range d.channels {
			ch.Series.TrimLeading()
		}
	}()

	cursor := 0
	for {
		if cursor < len(d.headers) {
			col := d.headers[cursor]
			v, err := readValue(r, col.Field.Kind)
			if err != nil {
				// The stream may end exactly on a record boundary; ending
				// between fields of a record is a truncation.
				if err == io.EOF && cursor == 0 {
					return nil
				}
				return fmt.Errorf("%w: header field %s: %v",
					ErrStreamTruncated, col.Field.Name, err)
			}
			col.Series.Append(v)
			cursor++
			continue
		}

		// Full header cycle completed: append the carried-forward value of
		// every channel, then apply the change-set record that follows.
		cursor = 0
		for _, ch := range d.channels {
			ch.Series.Append(Value{Kind: ch.Descriptor.Kind, Num: int64(ch.current)})
		}
		ok, err := d.applyChangeSet(r)
		if err != nil {
			return err
		}
		if !ok {
			// Exhausted after a full header cycle, before the change-set.
			return nil
		}
	}
}

// applyChangeSet reads one change-set record, a count byte followed by
// (ordinal, int32 value) pairs, and overwrites the referenced channels'
// carry-forward values. It reports ok=false on a clean end of stream at the
// count byte.
func (d *Decoder) applyChangeSet(r io.Reader) (ok bool, err error) {
	var count [1]byte
	if _, err := io.ReadFull(r, count[:]); err != nil {
		if err == io.EOF {
			return false, nil
		}
		return false, fmt.Errorf("%w: change-set count: %v", ErrStreamTruncated, err)
	}

	for i := 0; i < int(count[0]); i++ {
		var idx [1]byte
		if _, err := io.ReadFull(r, idx[:]); err != nil {
			return false, fmt.Errorf("%w: change-set ordinal: %v", ErrStreamTruncated, err)
		}
		v, err := readValue(r, KindInt32)
		if err != nil {
			return false, fmt.Errorf("%w: change-set value: %v", ErrStreamTruncated, err)
		}
		// The schema-declared channel order defines the ordinal index
		// space; an ordinal beyond it has no channel to update.
		if int(idx[0]) < len(d.channels) {
			d.channels[idx[0]].current = int32(v.Num)
		}
	}
	return true, nil
}
