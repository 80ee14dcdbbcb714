package commands

import (
	"fmt"
	"io"
	"sort"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/olekukonko/tablewriter"
	"gopkg.in/yaml.v3"

	"github.com/fivetwenty-io/partnercenter/internal/constants"
)

// maxDefaultColumns bounds the columns picked when --columns is not given.
const maxDefaultColumns = 5

// resource is a decoded API object of unknown shape.
type resource = map[string]interface{}

func writeJSON(w io.Writer, value interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", strings.Repeat(" ", constants.JSONIndentSize))

	return encoder.Encode(value)
}

func writeYAML(w io.Writer, value interface{}) error {
	encoder := yaml.NewEncoder(w)
	defer encoder.Close()

	return encoder.Encode(value)
}

// writeStructured writes value as JSON or YAML and reports whether format was one of them.
func writeStructured(w io.Writer, format string, value interface{}) (bool, error) {
	switch format {
	case constants.FormatJSON:
		return true, writeJSON(w, value)
	case constants.FormatYAML:
		return true, writeYAML(w, value)
	default:
		return false, nil
	}
}

// writeProperties renders the top level fields of item as a property table.
func writeProperties(w io.Writer, item resource) error {
	keys := make([]string, 0, len(item))
	for key := range item {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	table := tablewriter.NewWriter(w)
	table.Header("Property", "Value")

	for _, key := range keys {
		_ = table.Append([]string{key, cell(item[key])})
	}

	err := table.Render()
	if err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	return nil
}

// writeRows renders items with one column per entry of columns. Columns may address nested
// fields with dots, for example companyProfile.companyName.
func writeRows(w io.Writer, items []resource, columns []string) error {
	if len(columns) == 0 {
		columns = defaultColumns(items)
	}

	header := make([]interface{}, len(columns))
	for i, column := range columns {
		header[i] = column
	}

	table := tablewriter.NewWriter(w)
	table.Header(header...)

	for _, item := range items {
		row := make([]string, len(columns))
		for i, column := range columns {
			row[i] = cell(lookup(item, column))
		}

		_ = table.Append(row)
	}

	err := table.Render()
	if err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	return nil
}

// defaultColumns picks the scalar fields of the first item, id first.
func defaultColumns(items []resource) []string {
	if len(items) == 0 {
		return []string{"id"}
	}

	var columns []string

	if _, ok := items[0]["id"]; ok {
		columns = append(columns, "id")
	}

	keys := make([]string, 0, len(items[0]))
	for key, value := range items[0] {
		switch value.(type) {
		case map[string]interface{}, []interface{}:
			continue
		}

		if key != "id" {
			keys = append(keys, key)
		}
	}

	sort.Strings(keys)

	for _, key := range keys {
		if len(columns) == maxDefaultColumns {
			break
		}

		columns = append(columns, key)
	}

	return columns
}

func lookup(item resource, path string) interface{} {
	var current interface{} = item

	for _, part := range strings.Split(path, ".") {
		fields, ok := current.(map[string]interface{})
		if !ok {
			return nil
		}

		current = fields[part]
	}

	return current
}

func cell(value interface{}) string {
	var text string

	switch typed := value.(type) {
	case nil:
		return constants.NotAvailable
	case string:
		text = typed
	case map[string]interface{}, []interface{}:
		encoded, err := json.Marshal(typed)
		if err != nil {
			return constants.NotAvailable
		}

		text = string(encoded)
	default:
		text = fmt.Sprint(typed)
	}

	if len(text) > constants.StringTruncationLength {
		text = text[:constants.StringTruncationLength-3] + "..."
	}

	return text
}
