package modelhub

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// FlexibleTime unmarshals timestamps that may be RFC3339/RFC3339Nano, lack a
// timezone, or be plain unix seconds. The hub returns unix seconds for model
// records and strings for revisions.
type FlexibleTime struct {
	time.Time
}

func (t *FlexibleTime) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		t.Time = time.Time{}
		return nil
	}

	if len(b) > 0 && b[0] != '"' {
		secs, err := strconv.ParseInt(string(b), 10, 64)
		if err != nil {
			return fmt.Errorf("invalid unix time %q", string(b))
		}
		t.Time = time.Unix(secs, 0).UTC()
		return nil
	}

	if len(b) < 2 || b[len(b)-1] != '"' {
		return fmt.Errorf("invalid time JSON: %q", string(b))
	}

	s := strings.TrimSpace(string(b[1 : len(b)-1]))
	if s == "" {
		t.Time = time.Time{}
		return nil
	}

	layouts := []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02T15:04:05.999999999", // no tz, fractional seconds
		"2006-01-02T15:04:05",           // no tz
		"2006-01-02 15:04:05",
	}
	for _, layout := range layouts {
		parsed, err := time.Parse(layout, s)
		if err == nil {
			t.Time = parsed
			return nil
		}
	}

	return fmt.Errorf("invalid time %q", s)
}
