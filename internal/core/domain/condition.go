package domain

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"unicode"

	"go.trai.ch/zerr"
)

// Operator is the comparison applied between a measured result and a threshold.
type Operator string

const (
	// OpGreater trips when the result exceeds the threshold. It is the default.
	OpGreater Operator = ">"
	// OpGreaterEqual trips when the result reaches the threshold.
	OpGreaterEqual Operator = ">="
	// OpLess trips when the result falls below the threshold.
	OpLess Operator = "<"
	// OpLessEqual trips when the result is at most the threshold.
	OpLessEqual Operator = "<="
	// OpEqual trips when the result equals the threshold.
	OpEqual Operator = "="
)

// Longest operators first so ">=" is not read as ">".
var operators = []Operator{OpGreaterEqual, OpLessEqual, OpGreater, OpLess, OpEqual}

// metricAliases lists alternative result keys consulted for a condition metric.
var metricAliases = map[string][]string{
	"testFailures": {"failedTests"},
}

// Condition is a parsed rollback threshold such as errorRate ">5%".
type Condition struct {
	Metric    string
	Operator  Operator
	Threshold float64
	Raw       string
}

// ParseCondition parses a threshold expression for metric.
// The expression is an optional operator, a number, and an optional unit
// suffix ("%", "ms", ...) which is ignored.
func ParseCondition(metric, expr string) (Condition, error) {
	raw := expr
	expr = strings.TrimSpace(expr)

	op := OpGreater
	for _, candidate := range operators {
		if strings.HasPrefix(expr, string(candidate)) {
			op = candidate
			expr = strings.TrimSpace(strings.TrimPrefix(expr, string(candidate)))
			break
		}
	}

	number := strings.TrimRightFunc(expr, func(r rune) bool {
		return unicode.IsLetter(r) || r == '%' || unicode.IsSpace(r)
	})
	threshold, err := strconv.ParseFloat(number, 64)
	if err != nil || metric == "" {
		return Condition{}, zerr.With(zerr.With(zerr.Wrap(ErrInvalidCondition, ""), "metric", metric), "expression", raw)
	}

	return Condition{Metric: metric, Operator: op, Threshold: threshold, Raw: raw}, nil
}

// ParseConditions parses a rollbackConditions metadata value. Conditions come
// back sorted by metric name so evaluation order is deterministic. Entries
// that fail to parse are returned as errors alongside the valid ones.
func ParseConditions(value any) ([]Condition, []error) {
	var raw map[string]string
	switch v := value.(type) {
	case nil:
		return nil, nil
	case map[string]string:
		raw = v
	case map[string]any:
		raw = make(map[string]string, len(v))
		for metric, expr := range v {
			raw[metric] = fmt.Sprint(expr)
		}
	default:
		return nil, []error{zerr.With(zerr.Wrap(ErrInvalidCondition, ""), "value", fmt.Sprintf("%T", value))}
	}

	var (
		conds []Condition
		errs  []error
	)
	for metric, expr := range raw {
		c, err := ParseCondition(metric, expr)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		conds = append(conds, c)
	}
	slices.SortFunc(conds, func(a, b Condition) int { return strings.Compare(a.Metric, b.Metric) })
	return conds, errs
}

// Exceeded reports whether result trips the condition.
func (c Condition) Exceeded(result float64) bool {
	switch c.Operator {
	case OpGreaterEqual:
		return result >= c.Threshold
	case OpLess:
		return result < c.Threshold
	case OpLessEqual:
		return result <= c.Threshold
	case OpEqual:
		return result == c.Threshold
	default:
		return result > c.Threshold
	}
}

// Lookup finds the measured value for the condition's metric in results,
// consulting known aliases.
func (c Condition) Lookup(results TestResults) (float64, bool) {
	if v, ok := results[c.Metric]; ok {
		return v, true
	}
	for _, alias := range metricAliases[c.Metric] {
		if v, ok := results[alias]; ok {
			return v, true
		}
	}
	return 0, false
}

func (c Condition) String() string {
	return fmt.Sprintf("%s %s %g", c.Metric, c.Operator, c.Threshold)
}
