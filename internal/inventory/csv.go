package inventory

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dfquinn23/tech-stack-audit-tool/internal/audit"
)

// Required CSV headers, matched case-insensitively.
var requiredHeaders = []string{"Tool Name", "Category", "Used By", "Criticality"}

// LoadResult reports what a CSV import produced and what it dropped.
type LoadResult struct {
	Tools   []audit.Tool
	Skipped []string
}

// LoadCSV reads a client tech-stack export. Rows without a tool name are
// dropped, duplicate tool names keep the first occurrence, and missing
// optional fields get defaults. Every loaded tool is marked as discovered
// via csv_upload.
func LoadCSV(path string, normalizer *Normalizer) (LoadResult, error) {
	file, err := os.Open(path)
	if err != nil {
		return LoadResult{}, fmt.Errorf("inventory: open %s: %w", path, err)
	}
	defer file.Close()
	result, err := parseCSV(file, normalizer)
	if err != nil {
		return LoadResult{}, fmt.Errorf("inventory: %s: %w", path, err)
	}
	return result, nil
}

func parseCSV(r io.Reader, normalizer *Normalizer) (LoadResult, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return LoadResult{}, fmt.Errorf("read header: %w", err)
	}
	columns, err := headerIndex(header)
	if err != nil {
		return LoadResult{}, err
	}

	var result LoadResult
	seen := map[string]bool{}
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return LoadResult{}, fmt.Errorf("read row %d: %w", line, err)
		}
		name := strings.TrimSpace(field(record, columns["tool name"]))
		if name == "" {
			result.Skipped = append(result.Skipped, fmt.Sprintf("row %d: empty tool name", line))
			continue
		}
		if normalizer != nil {
			name = normalizer.Canonical(name)
		}
		key := strings.ToLower(name)
		if seen[key] {
			result.Skipped = append(result.Skipped, fmt.Sprintf("row %d: duplicate tool %q", line, name))
			continue
		}
		seen[key] = true
		result.Tools = append(result.Tools, audit.Tool{
			Name:            name,
			Category:        defaultIfEmpty(field(record, columns["category"]), "Uncategorized"),
			Users:           splitUsers(field(record, columns["used by"])),
			Criticality:     defaultIfEmpty(field(record, columns["criticality"]), "Medium"),
			DiscoveryMethod: "csv_upload",
		})
	}
	return result, nil
}

func headerIndex(header []string) (map[string]int, error) {
	columns := map[string]int{}
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range requiredHeaders {
		if _, ok := columns[strings.ToLower(required)]; !ok {
			return nil, fmt.Errorf("missing required column %q", required)
		}
	}
	return columns, nil
}

func field(record []string, index int) string {
	if index < 0 || index >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[index])
}

func splitUsers(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return []string{"Unknown"}
	}
	parts := strings.Split(raw, ",")
	users := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			users = append(users, trimmed)
		}
	}
	if len(users) == 0 {
		return []string{"Unknown"}
	}
	return users
}

func defaultIfEmpty(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return strings.TrimSpace(value)
}
