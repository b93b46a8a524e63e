package commands

import (
	"strconv"
	"strings"

	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

var errBadAssignment = zerr.New("expected key=value")

// parseAssignments turns key=value pairs into a map. Values are read as YAML
// scalars, so numbers and booleans keep their type.
func parseAssignments(pairs []string) (map[string]any, error) {
	out := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		k, raw, ok := strings.Cut(pair, "=")
		if !ok || k == "" {
			return nil, zerr.With(zerr.Wrap(errBadAssignment, ""), "argument", pair)
		}

		var v any
		if err := yaml.Unmarshal([]byte(raw), &v); err != nil || v == nil {
			v = raw
		}
		out[k] = v
	}
	return out, nil
}

// parseResults turns metric=value pairs into numbers. A trailing "%" is
// ignored.
func parseResults(pairs []string) (map[string]float64, error) {
	out := make(map[string]float64, len(pairs))
	for _, pair := range pairs {
		k, raw, ok := strings.Cut(pair, "=")
		if !ok || k == "" {
			return nil, zerr.With(zerr.Wrap(errBadAssignment, ""), "argument", pair)
		}
		v, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(raw), "%"), 64)
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, "invalid metric value"), "argument", pair)
		}
		out[k] = v
	}
	return out, nil
}
