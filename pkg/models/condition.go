// Guard condition evaluation for workflow steps.
package models

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// Condition operators.
const (
	OperatorEquals      = "equals"
	OperatorNotEquals   = "not_equals"
	OperatorGreaterThan = "greater_than"
	OperatorLessThan    = "less_than"
	OperatorContains    = "contains"
)

// Condition compares one named field of the execution context against a
// literal value. An unrecognized operator evaluates false.
type Condition struct {
	Field    string `json:"field"    validate:"required"`
	Operator string `json:"operator" validate:"required"`
	Value    any    `json:"value"`
}

// Evaluate checks the condition against the given execution data.
func (c Condition) Evaluate(data map[string]any) bool {
	actual, ok := data[c.Field]

	switch c.Operator {
	case OperatorEquals:
		return ok && equalValues(actual, c.Value)
	case OperatorNotEquals:
		return !ok || !equalValues(actual, c.Value)
	case OperatorGreaterThan:
		left, leftOK := toFloat(actual)
		right, rightOK := toFloat(c.Value)

		return ok && leftOK && rightOK && left > right
	case OperatorLessThan:
		left, leftOK := toFloat(actual)
		right, rightOK := toFloat(c.Value)

		return ok && leftOK && rightOK && left < right
	case OperatorContains:
		return ok && containsValue(actual, c.Value)
	default:
		return false
	}
}

// EvaluateConditions is a conjunction: every condition must hold. An empty
// list always holds.
func EvaluateConditions(conditions []Condition, data map[string]any) bool {
	for _, condition := range conditions {
		if !condition.Evaluate(data) {
			return false
		}
	}

	return true
}

func equalValues(a, b any) bool {
	// Context fields can hold maps and slices (webhook responses, trigger
	// payloads); == on those panics, so they go through DeepEqual.
	if !comparableValue(a) || !comparableValue(b) {
		return reflect.DeepEqual(a, b)
	}

	if a == b {
		return true
	}

	// JSON round-trips turn numbers into float64, so compare numerically
	// when both sides coerce.
	left, leftOK := toFloat(a)
	right, rightOK := toFloat(b)

	if leftOK && rightOK {
		return left == right
	}

	return fmt.Sprintf("%v", a) == fmt.Sprintf("%v", b)
}

func comparableValue(v any) bool {
	if v == nil {
		return true
	}

	return reflect.TypeOf(v).Comparable()
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case string:
		parsed, err := strconv.ParseFloat(n, 64)

		return parsed, err == nil
	default:
		return 0, false
	}
}

func containsValue(actual, expected any) bool {
	switch v := actual.(type) {
	case string:
		return strings.Contains(v, fmt.Sprintf("%v", expected))
	case []any:
		for _, item := range v {
			if equalValues(item, expected) {
				return true
			}
		}

		return false
	case []string:
		for _, item := range v {
			if item == fmt.Sprintf("%v", expected) {
				return true
			}
		}

		return false
	default:
		return false
	}
}
