package params

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/vvka-141/pgload/pkg/pgload"
)

// Keys standing in for the reserved condition keys inside condition files.
const (
	FileOperatorKey = "PGLOAD_OPERATOR"
	FileRawKey      = "PGLOAD_RAW_CONDITION"
)

// ParseConditionFile reads a .env style file into a ConditionSpec.
func ParseConditionFile(path string) (pgload.ConditionSpec, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("condition file: %w", err)
	}
	spec, err := ParseConditions(content)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return spec, nil
}

// ParseConditions parses .env content with godotenv. godotenv returns a map,
// so column order is recovered from the first line declaring each key.
func ParseConditions(content []byte) (pgload.ConditionSpec, error) {
	values, err := godotenv.Parse(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", pgload.ErrInvalidConfig, err)
	}

	spec := make(pgload.ConditionSpec, 0, len(values))
	for _, key := range declarationOrder(content, values) {
		column := key
		switch key {
		case FileOperatorKey:
			column = pgload.OperatorKey
		case FileRawKey:
			column = pgload.RawConditionKey
		}
		spec = append(spec, pgload.Condition{Column: column, Value: values[key]})
	}
	if len(spec) == 0 {
		return nil, fmt.Errorf("no conditions: %w", pgload.ErrInvalidCondition)
	}
	return spec, nil
}

func declarationOrder(content []byte, values map[string]string) []string {
	order := make([]string, 0, len(values))
	seen := make(map[string]bool, len(values))

	scanner := bufio.NewScanner(bytes.NewReader(content))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimSpace(strings.TrimPrefix(line, "export "))
		end := strings.IndexAny(line, "=:")
		if end <= 0 {
			continue
		}
		key := strings.TrimSpace(line[:end])
		if _, ok := values[key]; ok && !seen[key] {
			seen[key] = true
			order = append(order, key)
		}
	}
	return order
}
