// Package output renders command results as tables, JSON or YAML.
package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"reflect"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"
)

// Formatter renders one command result.
type Formatter interface {
	Format(data any) string
}

// NewFormatter picks a formatter by name; anything unrecognised gets the
// table formatter.
func NewFormatter(format string) Formatter {
	switch strings.ToLower(format) {
	case "json":
		return &JSONFormatter{}
	case "yaml":
		return &YAMLFormatter{}
	default:
		return &TableFormatter{}
	}
}

// TableFormatter is for people at a terminal. A record prints as
// "Field: value" lines, a list of records as columns under upper-cased
// field names, and relay responses verbatim on one line.
type TableFormatter struct{}

func (f *TableFormatter) Format(data any) string {
	if raw, ok := data.(json.RawMessage); ok {
		return string(raw) + "\n"
	}

	var buf bytes.Buffer
	w := tabwriter.NewWriter(&buf, 0, 4, 2, ' ', 0)
	v := indirect(reflect.ValueOf(data))
	switch {
	case v.Kind() == reflect.Slice && v.Len() == 0:
		return "No resources found.\n"
	case v.Kind() == reflect.Slice:
		writeList(w, v)
	case v.Kind() == reflect.Struct:
		writeRecord(w, v)
	default:
		fmt.Fprintln(w, data)
	}
	w.Flush()
	return buf.String()
}

func writeRecord(w io.Writer, v reflect.Value) {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		fmt.Fprintf(w, "%s:\t%v\n", t.Field(i).Name, v.Field(i).Interface())
	}
}

func writeList(w io.Writer, v reflect.Value) {
	if indirect(v.Index(0)).Kind() != reflect.Struct {
		for i := 0; i < v.Len(); i++ {
			fmt.Fprintln(w, v.Index(i).Interface())
		}
		return
	}
	t := indirect(v.Index(0)).Type()
	cols := make([]string, t.NumField())
	for i := range cols {
		cols[i] = strings.ToUpper(t.Field(i).Name)
	}
	fmt.Fprintln(w, strings.Join(cols, "\t"))
	for i := 0; i < v.Len(); i++ {
		rec := indirect(v.Index(i))
		for j := range cols {
			cols[j] = fmt.Sprint(rec.Field(j).Interface())
		}
		fmt.Fprintln(w, strings.Join(cols, "\t"))
	}
}

func indirect(v reflect.Value) reflect.Value {
	if v.Kind() == reflect.Ptr {
		return v.Elem()
	}
	return v
}

// JSONFormatter is for scripts: two-space indented JSON, relay responses
// included.
type JSONFormatter struct{}

func (f *JSONFormatter) Format(data any) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(data); err != nil {
		return fmt.Sprintf("error formatting JSON: %v\n", err)
	}
	return buf.String()
}

// YAMLFormatter emits YAML. Relay responses are decoded first so they come
// out as YAML documents, not byte lists.
type YAMLFormatter struct{}

func (f *YAMLFormatter) Format(data any) string {
	if raw, ok := data.(json.RawMessage); ok {
		var v any
		if err := json.Unmarshal(raw, &v); err != nil {
			return fmt.Sprintf("error formatting YAML: %v\n", err)
		}
		data = v
	}
	b, err := yaml.Marshal(data)
	if err != nil {
		return fmt.Sprintf("error formatting YAML: %v\n", err)
	}
	return string(b)
}
