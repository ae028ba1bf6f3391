package query

import (
	"fmt"
	"strings"
)

// Condition represents a WHERE clause condition.
// Implementations must generate SQL fragments and parameter maps
// using the named parameter format (@paramName).
type Condition interface {
	// SQL returns the SQL fragment and parameter map for this condition.
	// paramIndex is used to generate unique parameter names (@p0, @p1, etc.)
	SQL(paramIndex int) (string, map[string]interface{})
}

// cmpCondition implements a binary comparison (field op value).
type cmpCondition struct {
	field string
	op    string
	value interface{}
}

// Eq creates a WHERE condition for equality comparison.
// Example: Eq("room_id", "r1") generates "room_id = @p0"
func Eq(field string, value interface{}) Condition {
	return &cmpCondition{field: field, op: "=", value: value}
}

// Gte creates a "field >= value" condition.
func Gte(field string, value interface{}) Condition {
	return &cmpCondition{field: field, op: ">=", value: value}
}

// Lt creates a "field < value" condition.
func Lt(field string, value interface{}) Condition {
	return &cmpCondition{field: field, op: "<", value: value}
}

// Lte creates a "field <= value" condition.
func Lte(field string, value interface{}) Condition {
	return &cmpCondition{field: field, op: "<=", value: value}
}

// SQL generates the SQL fragment for the comparison.
func (c *cmpCondition) SQL(paramIndex int) (string, map[string]interface{}) {
	paramName := fmt.Sprintf("p%d", paramIndex)
	sql := fmt.Sprintf("%s %s @%s", c.field, c.op, paramName)
	params := map[string]interface{}{
		paramName: c.value,
	}
	return sql, params
}

// In creates a "field IN (@p0, @p1, ...)" condition, one parameter per value.
// An empty value list matches nothing.
func In[T any](field string, values ...T) Condition {
	vs := make([]interface{}, len(values))
	for i, v := range values {
		vs[i] = v
	}
	return &inCondition{field: field, values: vs}
}

type inCondition struct {
	field  string
	values []interface{}
}

// SQL generates the SQL fragment for IN.
func (c *inCondition) SQL(paramIndex int) (string, map[string]interface{}) {
	if len(c.values) == 0 {
		return "FALSE", map[string]interface{}{}
	}
	names := make([]string, len(c.values))
	params := make(map[string]interface{}, len(c.values))
	for i, v := range c.values {
		name := fmt.Sprintf("p%d", paramIndex+i)
		names[i] = "@" + name
		params[name] = v
	}
	return fmt.Sprintf("%s IN (%s)", c.field, strings.Join(names, ", ")), params
}
