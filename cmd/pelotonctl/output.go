package main

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"gopkg.in/yaml.v3"
)

// Output formats accepted by --output.
const (
	outputTable = "table"
	outputJSON  = "json"
	outputYAML  = "yaml"
)

// render writes v in the selected output format. fill populates the table for the
// table format.
func (a *app) render(v any, fill func(*tablewriter.Table) error) error {
	switch a.output {
	case outputJSON:
		encoder := json.NewEncoder(a.out)
		encoder.SetIndent("", "  ")

		if err := encoder.Encode(v); err != nil {
			return fmt.Errorf("failed to encode output as JSON: %w", err)
		}
		return nil
	case outputYAML:
		plain, err := toPlain(v)
		if err != nil {
			return err
		}

		encoder := yaml.NewEncoder(a.out)
		encoder.SetIndent(2)
		if err := encoder.Encode(plain); err != nil {
			return fmt.Errorf("failed to encode output as YAML: %w", err)
		}
		return encoder.Close()
	default:
		table := tablewriter.NewWriter(a.out)
		if err := fill(table); err != nil {
			return err
		}
		return table.Render()
	}
}

// toPlain round-trips v through JSON so raw API payloads encode as YAML maps rather
// than byte sequences.
func toPlain(v any) (any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode output: %w", err)
	}

	var plain any
	if err := json.Unmarshal(b, &plain); err != nil {
		return nil, fmt.Errorf("failed to decode output: %w", err)
	}
	return plain, nil
}

// decodeRows decodes each raw item into a T for table display.
func decodeRows[T any](items []json.RawMessage) ([]T, error) {
	rows := make([]T, len(items))
	for i, item := range items {
		if err := json.Unmarshal(item, &rows[i]); err != nil {
			return nil, fmt.Errorf("failed to decode item %d: %w", i, err)
		}
	}
	return rows, nil
}

// formatUnix renders a Unix timestamp in seconds, or "-" when unset.
func formatUnix(sec int64) string {
	if sec == 0 {
		return "-"
	}
	return time.Unix(sec, 0).UTC().Format("2006-01-02 15:04")
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
