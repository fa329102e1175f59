// Package timex provides a time.Duration wrapper that config files can spell
// either as a Go duration string ("10s", "1h30m") or as integer nanoseconds.
package timex

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration is a time.Duration with JSON and YAML decoding.
type Duration struct {
	time.Duration
}

// Parse accepts "10s"-style strings and bare integers (nanoseconds).
func Parse(s string) (Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Duration{}, nil
	}
	if d, err := time.ParseDuration(s); err == nil {
		return Duration{d}, nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return Duration{}, fmt.Errorf("invalid duration %q", s)
	}
	return Duration{time.Duration(n)}, nil
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch value := v.(type) {
	case float64:
		d.Duration = time.Duration(value)
		return nil
	case string:
		parsed, err := Parse(value)
		if err != nil {
			return err
		}
		*d = parsed
		return nil
	case nil:
		d.Duration = 0
		return nil
	default:
		return fmt.Errorf("invalid duration %s", string(b))
	}
}

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("invalid duration at line %d", node.Line)
	}
	parsed, err := Parse(node.Value)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
