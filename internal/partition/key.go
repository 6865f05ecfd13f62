package partition

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Key is a time-bucketed storage partition. Fields are strings,
// zero-padded except the year, because they feed both the catalog DDL
// and the outbound record metadata verbatim.
type Key struct {
	Year  string `json:"year"`
	Month string `json:"month"`
	Day   string `json:"day"`
	Hour  string `json:"hour"`
}

// TimestampSpec formats the key as the catalog's partition value,
// e.g. "2023-11-14 22:00:00".
func (k Key) TimestampSpec() string {
	return fmt.Sprintf("%s-%s-%s %s:00:00", k.Year, k.Month, k.Day, k.Hour)
}

// Path is the storage-relative partition path, e.g. "2023/11/14/22".
func (k Key) Path() string {
	return fmt.Sprintf("%s/%s/%s/%s", k.Year, k.Month, k.Day, k.Hour)
}

func fromTime(t time.Time) Key {
	t = t.UTC()
	return Key{
		Year:  fmt.Sprintf("%04d", t.Year()),
		Month: fmt.Sprintf("%02d", int(t.Month())),
		Day:   fmt.Sprintf("%02d", t.Day()),
		Hour:  fmt.Sprintf("%02d", t.Hour()),
	}
}

// FromRecord derives the partition key from one canonical record's
// epoch-millisecond timestamp field. Templates emit the timestamp as
// a number, but a string-valued one is accepted too.
func FromRecord(record string) (Key, error) {
	decoder := json.NewDecoder(strings.NewReader(record))
	decoder.UseNumber()

	var fields map[string]interface{}
	if err := decoder.Decode(&fields); err != nil {
		return Key{}, fmt.Errorf("parse canonical record: %w", err)
	}

	var ms int64
	switch ts := fields["timestamp"].(type) {
	case json.Number:
		n, err := ts.Int64()
		if err != nil {
			return Key{}, fmt.Errorf("canonical record timestamp %q: %w", ts, err)
		}
		ms = n
	case string:
		n, err := strconv.ParseInt(ts, 10, 64)
		if err != nil {
			return Key{}, fmt.Errorf("canonical record timestamp %q: %w", ts, err)
		}
		ms = n
	case nil:
		return Key{}, fmt.Errorf("canonical record has no timestamp")
	default:
		return Key{}, fmt.Errorf("canonical record timestamp is %T", ts)
	}

	return fromTime(time.UnixMilli(ms)), nil
}
