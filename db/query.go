package db

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// QueryCondition represents a single condition like "path operator value".
type QueryCondition struct {
	Path          string      // gjson path into the entity (e.g. "priority", "milestones.#.amount")
	Operator      string      // base operator, lowercase, without the -insensitive suffix
	ParsedValue   interface{} // string, float64, bool or nil
	ValueType     gjson.Type
	IsInsensitive bool
	Original      string
}

// LogicalOperator represents "and" or "or".
type LogicalOperator string

const (
	LogicAnd LogicalOperator = "and"
	LogicOr  LogicalOperator = "or"
)

// ParsedQuery holds the sequence of conditions and logical operators.
// Logic[i] applies between Conditions[i] and Conditions[i+1], left to right.
type ParsedQuery struct {
	Conditions []QueryCondition
	Logic      []LogicalOperator
}

var validOperators = map[string]bool{
	"equals": true, "notequals": true,
	"greaterthan": true, "lessthan": true,
	"greaterthanorequals": true, "lessthanorequals": true,
	"contains": true, "startswith": true, "endswith": true,
}

var insensitiveOperators = map[string]bool{
	"equals": true, "notequals": true, "contains": true, "startswith": true, "endswith": true,
}

// ParseContentQuery parses alternating condition / logic parts, e.g.
// ["priority equals high", "and", "status notEquals completed"].
// An empty query is valid and matches everything.
func ParseContentQuery(queryParts []string) (*ParsedQuery, error) {
	if len(queryParts) == 0 {
		return nil, nil
	}

	parsed := &ParsedQuery{}
	expectCondition := true

	for i, part := range queryParts {
		part = strings.TrimSpace(part)
		if part == "" {
			return nil, fmt.Errorf("query part at index %d is empty", i)
		}

		if expectCondition {
			condition, err := parseSingleCondition(part)
			if err != nil {
				return nil, fmt.Errorf("invalid condition at index %d ('%s'): %w", i, part, err)
			}
			parsed.Conditions = append(parsed.Conditions, condition)
		} else {
			logic := LogicalOperator(strings.ToLower(part))
			if logic != LogicAnd && logic != LogicOr {
				return nil, fmt.Errorf("invalid logical operator at index %d: '%s', expected 'and' or 'or'", i, part)
			}
			parsed.Logic = append(parsed.Logic, logic)
		}
		expectCondition = !expectCondition
	}

	if expectCondition {
		return nil, errors.New("query must end with a condition, not a logical operator")
	}
	return parsed, nil
}

// parseSingleCondition parses "path operator value". The value keeps inner spacing.
func parseSingleCondition(conditionStr string) (QueryCondition, error) {
	parts := strings.Fields(conditionStr)
	if len(parts) < 3 {
		return QueryCondition{}, errors.New("condition must have a path, an operator and a value")
	}

	path := parts[0]
	operator := strings.ToLower(parts[1])
	opEnd := len(parts[0]) + strings.Index(conditionStr[len(parts[0]):], parts[1]) + len(parts[1])
	rawValue := strings.TrimSpace(conditionStr[opEnd:])

	insensitive := false
	if base, ok := strings.CutSuffix(operator, "-insensitive"); ok {
		if !insensitiveOperators[base] {
			return QueryCondition{}, fmt.Errorf("invalid base operator for insensitive matching '%s'", base)
		}
		insensitive = true
		operator = base
	}
	if !validOperators[operator] {
		return QueryCondition{}, fmt.Errorf("invalid operator '%s'", parts[1])
	}

	value, valueType := parseLiteral(rawValue)
	return QueryCondition{
		Path:          path,
		Operator:      operator,
		ParsedValue:   value,
		ValueType:     valueType,
		IsInsensitive: insensitive,
		Original:      conditionStr,
	}, nil
}

// parseLiteral types a raw value: quoted string, null, number, bool, else bare string.
// Numbers are checked before bools.
func parseLiteral(raw string) (interface{}, gjson.Type) {
	if len(raw) >= 2 && raw[0] == '"' && raw[len(raw)-1] == '"' {
		return raw[1 : len(raw)-1], gjson.String
	}
	if raw == "null" {
		return nil, gjson.Null
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f, gjson.Number
	}
	if b, err := strconv.ParseBool(raw); err == nil {
		if b {
			return true, gjson.True
		}
		return false, gjson.False
	}
	return raw, gjson.String
}

// MatchJSON reports whether the JSON object matches the query. Conditions on paths the
// object does not have evaluate to false (notEquals to true).
func MatchJSON(objectJSON string, query *ParsedQuery) (bool, error) {
	if query == nil || len(query.Conditions) == 0 {
		return true, nil
	}

	result, err := evaluateCondition(objectJSON, query.Conditions[0])
	if err != nil {
		return false, err
	}
	for i, logic := range query.Logic {
		next, err := evaluateCondition(objectJSON, query.Conditions[i+1])
		if err != nil {
			return false, err
		}
		switch logic {
		case LogicAnd:
			result = result && next
		case LogicOr:
			result = result || next
		}
	}
	return result, nil
}

// Filter returns the items whose JSON encoding matches query, keeping order.
func Filter[T any](items []T, query *ParsedQuery) ([]T, error) {
	out := make([]T, 0, len(items))
	for _, item := range items {
		raw, err := json.Marshal(item)
		if err != nil {
			return nil, fmt.Errorf("encode item for query: %w", err)
		}
		ok, err := MatchJSON(string(raw), query)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, item)
		}
	}
	return out, nil
}

// Paginate returns the 1-based page of items. A non-positive limit returns everything.
func Paginate[T any](items []T, page, limit int) []T {
	if limit <= 0 {
		return items
	}
	if page < 1 {
		page = 1
	}
	start := (page - 1) * limit
	if start >= len(items) {
		return []T{}
	}
	end := start + limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

func evaluateCondition(objectJSON string, cond QueryCondition) (bool, error) {
	target := gjson.Get(objectJSON, cond.Path)
	if !target.Exists() {
		return cond.Operator == "notequals", nil
	}

	if target.IsArray() {
		if cond.Operator != "contains" {
			return false, fmt.Errorf("operator '%s' is invalid for array at '%s'", cond.Operator, cond.Path)
		}
		found := false
		target.ForEach(func(_, el gjson.Result) bool {
			if equalValue(el, cond) {
				found = true
				return false
			}
			return true
		})
		return found, nil
	}

	if target.Type == gjson.Null || cond.ValueType == gjson.Null {
		both := target.Type == gjson.Null && cond.ValueType == gjson.Null
		switch cond.Operator {
		case "equals":
			return both, nil
		case "notequals":
			return !both, nil
		default:
			return false, nil
		}
	}

	switch target.Type {
	case gjson.String:
		if cond.ValueType != gjson.String {
			if cond.Operator == "notequals" {
				return true, nil
			}
			// Allow numeric-looking literals against string fields, e.g. dates or times.
			if cond.ValueType != gjson.Number {
				return false, fmt.Errorf("type mismatch: cannot compare string at '%s' with %s", cond.Path, cond.ValueType)
			}
		}
		return compareStrings(target.String(), literalString(cond), cond)

	case gjson.Number:
		if cond.ValueType != gjson.Number {
			if cond.Operator == "notequals" {
				return true, nil
			}
			return false, fmt.Errorf("type mismatch: value '%v' is not a valid number for '%s'", cond.ParsedValue, cond.Path)
		}
		a, b := target.Float(), cond.ParsedValue.(float64)
		switch cond.Operator {
		case "equals":
			return a == b, nil
		case "notequals":
			return a != b, nil
		case "greaterthan":
			return a > b, nil
		case "lessthan":
			return a < b, nil
		case "greaterthanorequals":
			return a >= b, nil
		case "lessthanorequals":
			return a <= b, nil
		}
		return false, fmt.Errorf("type mismatch: cannot apply string operator '%s' to numeric value", cond.Operator)

	case gjson.True, gjson.False:
		if cond.ValueType != gjson.True && cond.ValueType != gjson.False {
			if cond.Operator == "notequals" {
				return true, nil
			}
			return false, fmt.Errorf("type mismatch: value '%v' is not a valid boolean for '%s'", cond.ParsedValue, cond.Path)
		}
		switch cond.Operator {
		case "equals":
			return target.Bool() == cond.ParsedValue.(bool), nil
		case "notequals":
			return target.Bool() != cond.ParsedValue.(bool), nil
		}
		return false, fmt.Errorf("operator '%s' is invalid for boolean comparison", cond.Operator)
	}

	return false, fmt.Errorf("operator '%s' cannot compare JSON objects at '%s'", cond.Operator, cond.Path)
}

func literalString(cond QueryCondition) string {
	if s, ok := cond.ParsedValue.(string); ok {
		return s
	}
	// Number literal: use the original spelling so "2024" stays "2024".
	fields := strings.Fields(cond.Original)
	return strings.Join(fields[2:], " ")
}

func compareStrings(target, value string, cond QueryCondition) (bool, error) {
	if cond.IsInsensitive {
		target = strings.ToLower(target)
		value = strings.ToLower(value)
	}
	switch cond.Operator {
	case "equals":
		return target == value, nil
	case "notequals":
		return target != value, nil
	case "contains":
		return strings.Contains(target, value), nil
	case "startswith":
		return strings.HasPrefix(target, value), nil
	case "endswith":
		return strings.HasSuffix(target, value), nil
	case "greaterthan":
		return target > value, nil
	case "lessthan":
		return target < value, nil
	case "greaterthanorequals":
		return target >= value, nil
	case "lessthanorequals":
		return target <= value, nil
	}
	return false, fmt.Errorf("internal error: unknown operator '%s'", cond.Operator)
}

// equalValue compares one array element with the condition value, strictly by type.
func equalValue(el gjson.Result, cond QueryCondition) bool {
	switch el.Type {
	case gjson.String:
		s, ok := cond.ParsedValue.(string)
		if !ok {
			return false
		}
		if cond.IsInsensitive {
			return strings.EqualFold(el.String(), s)
		}
		return el.String() == s
	case gjson.Number:
		f, ok := cond.ParsedValue.(float64)
		return ok && el.Float() == f
	case gjson.True, gjson.False:
		b, ok := cond.ParsedValue.(bool)
		return ok && el.Bool() == b
	case gjson.Null:
		return cond.ValueType == gjson.Null
	}
	return false
}
