package tushare

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// APIError represents an error from the Tushare API, either an HTTP status or a non-zero response code.
type APIError struct {
	StatusCode int
	Code       int64
	Message    string
	APIName    string
}

func (e *APIError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("Tushare API error: %s (status: %d, api: %s)", e.Message, e.StatusCode, e.APIName)
	}
	return fmt.Sprintf("Tushare API error: %s (code: %d, api: %s)", e.Message, e.Code, e.APIName)
}

// Params are the request parameters of one API call. Empty values are dropped.
type Params map[string]string

func (p Params) values() map[string]string {
	out := make(map[string]string, len(p))
	for k, v := range p {
		if v != "" {
			out[k] = v
		}
	}
	return out
}

func joinFields(fields []string) string {
	return strings.Join(fields, ",")
}

// Row is one item of a Tushare table. Every accessor is null-safe: a field that
// is missing from the table, null, or not numeric reads as absent.
type Row struct {
	index  map[string]int
	values []gjson.Result
}

// NewRow builds a row from field values, mainly for tests and fakes.
func NewRow(values map[string]interface{}) Row {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	items := make([]interface{}, len(keys))
	index := make(map[string]int, len(keys))
	for i, k := range keys {
		index[k] = i
		items[i] = values[k]
	}

	raw, err := json.Marshal(items)
	if err != nil {
		return Row{index: map[string]int{}}
	}
	return Row{index: index, values: gjson.ParseBytes(raw).Array()}
}

func (r Row) get(field string) (gjson.Result, bool) {
	i, ok := r.index[field]
	if !ok || i >= len(r.values) {
		return gjson.Result{}, false
	}
	v := r.values[i]
	if v.Type == gjson.Null {
		return gjson.Result{}, false
	}
	return v, true
}

// Float returns the numeric value of field, or nil when absent, null or NaN.
func (r Row) Float(field string) *float64 {
	v, ok := r.get(field)
	if !ok {
		return nil
	}
	var f float64
	switch v.Type {
	case gjson.Number:
		f = v.Float()
	case gjson.String:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v.Str), 64)
		if err != nil {
			return nil
		}
		f = parsed
	default:
		return nil
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

// String returns the text of field, or "" when absent.
func (r Row) String(field string) string {
	v, ok := r.get(field)
	if !ok {
		return ""
	}
	return v.String()
}

// Int returns the integer value of field, or nil when absent.
func (r Row) Int(field string) *int64 {
	f := r.Float(field)
	if f == nil {
		return nil
	}
	i := int64(*f)
	return &i
}
