package types

import (
	"encoding/json"
	"time"

	"github.com/jacek-casper/casper-node/bytesrepr"
)

// Timestamp is a moment in time, measured in milliseconds since the Unix
// epoch. It serializes to an RFC 3339 string with millisecond precision.
type Timestamp uint64

const timestampLayout = "2006-01-02T15:04:05.000Z"

// TimestampFromTime converts a time.Time, truncating to milliseconds.
func TimestampFromTime(t time.Time) Timestamp {
	return Timestamp(t.UnixMilli())
}

// Time converts the timestamp back to a time.Time in UTC.
func (t Timestamp) Time() time.Time {
	return time.UnixMilli(int64(t)).UTC()
}

func (t Timestamp) String() string {
	return t.Time().Format(timestampLayout)
}

// WriteBytes appends the millisecond count as a little-endian u64.
func (t Timestamp) WriteBytes(buf *[]byte) {
	bytesrepr.WriteU64(buf, uint64(t))
}

// SerializedLength returns the encoded size of the timestamp.
func (t Timestamp) SerializedLength() int {
	return bytesrepr.U64SerializedLength
}

// ReadTimestamp consumes a timestamp from the front of the input.
func ReadTimestamp(input []byte) (Timestamp, []byte, error) {
	v, rem, err := bytesrepr.ReadU64(input)
	return Timestamp(v), rem, err
}

// MarshalJSON encodes the timestamp as an RFC 3339 string.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON decodes the timestamp from an RFC 3339 string.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return err
	}
	*t = TimestampFromTime(parsed)
	return nil
}

// TimeDiff is a span of time, measured in milliseconds. It serializes to a
// plain millisecond count in JSON.
type TimeDiff uint64

// TimeDiffFromDuration converts a time.Duration, truncating to milliseconds.
func TimeDiffFromDuration(d time.Duration) TimeDiff {
	return TimeDiff(d.Milliseconds())
}

// Duration converts the diff back to a time.Duration.
func (d TimeDiff) Duration() time.Duration {
	return time.Duration(d) * time.Millisecond
}

func (d TimeDiff) String() string {
	return d.Duration().String()
}

// WriteBytes appends the millisecond count as a little-endian u64.
func (d TimeDiff) WriteBytes(buf *[]byte) {
	bytesrepr.WriteU64(buf, uint64(d))
}

// SerializedLength returns the encoded size of the diff.
func (d TimeDiff) SerializedLength() int {
	return bytesrepr.U64SerializedLength
}

// ReadTimeDiff consumes a time diff from the front of the input.
func ReadTimeDiff(input []byte) (TimeDiff, []byte, error) {
	v, rem, err := bytesrepr.ReadU64(input)
	return TimeDiff(v), rem, err
}

// EraID identifies a consensus era.
type EraID uint64

// WriteBytes appends the era as a little-endian u64.
func (e EraID) WriteBytes(buf *[]byte) {
	bytesrepr.WriteU64(buf, uint64(e))
}

// SerializedLength returns the encoded size of the era.
func (e EraID) SerializedLength() int {
	return bytesrepr.U64SerializedLength
}

// ReadEraID consumes an era identifier from the front of the input.
func ReadEraID(input []byte) (EraID, []byte, error) {
	v, rem, err := bytesrepr.ReadU64(input)
	return EraID(v), rem, err
}
