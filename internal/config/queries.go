package config

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/vvka-141/pgload/pkg/pgload"
)

// SavedQuery is a named multi-table condition request from pgload.yaml.
type SavedQuery struct {
	Name   string
	Tables []pgload.TableQuery
}

// SavedQueries keeps queries, tables and columns in file order.
type SavedQueries []SavedQuery

// Lookup returns the saved query called name.
func (q SavedQueries) Lookup(name string) (SavedQuery, error) {
	for _, sq := range q {
		if sq.Name == name {
			return sq, nil
		}
	}
	return SavedQuery{}, fmt.Errorf("%q: %w", name, pgload.ErrQueryNotFound)
}

// Names lists the saved query names in file order.
func (q SavedQueries) Names() []string {
	names := make([]string, len(q))
	for i, sq := range q {
		names[i] = sq.Name
	}
	return names
}

// UnmarshalYAML walks the mapping nodes directly; decoding into Go maps
// would lose the order of tables and columns.
func (q *SavedQueries) UnmarshalYAML(node *yaml.Node) error {
	node = resolveAlias(node)
	if err := expectMapping(node, "queries"); err != nil {
		return err
	}

	out := make(SavedQueries, 0, len(node.Content)/2)
	for i := 0; i < len(node.Content); i += 2 {
		name, body := node.Content[i].Value, resolveAlias(node.Content[i+1])
		if err := expectMapping(body, "query "+name); err != nil {
			return err
		}

		sq := SavedQuery{Name: name}
		for j := 0; j < len(body.Content); j += 2 {
			table, conds := body.Content[j].Value, resolveAlias(body.Content[j+1])
			spec, err := decodeConditions(conds, name+"."+table)
			if err != nil {
				return err
			}
			sq.Tables = append(sq.Tables, pgload.TableQuery{Table: table, Conditions: spec})
		}
		out = append(out, sq)
	}
	*q = out
	return nil
}

func decodeConditions(node *yaml.Node, path string) (pgload.ConditionSpec, error) {
	if err := expectMapping(node, path); err != nil {
		return nil, err
	}

	explicit := make(map[string]bool, len(node.Content)/2)
	for i := 0; i < len(node.Content); i += 2 {
		if !isMergeKey(node.Content[i]) {
			explicit[node.Content[i].Value] = true
		}
	}

	spec := make(pgload.ConditionSpec, 0, len(node.Content)/2)
	for i := 0; i < len(node.Content); i += 2 {
		keyNode, valueNode := node.Content[i], resolveAlias(node.Content[i+1])
		if isMergeKey(keyNode) {
			merged, err := decodeMerge(valueNode, path)
			if err != nil {
				return nil, err
			}
			for _, c := range merged {
				if !explicit[c.Column] {
					spec = append(spec, c)
				}
			}
			continue
		}

		column := keyNode.Value
		if valueNode.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("%s.%s: value must be a scalar (line %d): %w", path, column, valueNode.Line, pgload.ErrInvalidConfig)
		}
		var value any
		if err := valueNode.Decode(&value); err != nil {
			return nil, fmt.Errorf("%s.%s: %w: %w", path, column, pgload.ErrInvalidConfig, err)
		}
		spec = append(spec, pgload.Condition{Column: column, Value: value})
	}
	return spec, nil
}

// decodeMerge reads the value of a "<<" key: one mapping or a sequence of
// them. Earlier mappings in a sequence win over later ones.
func decodeMerge(node *yaml.Node, path string) (pgload.ConditionSpec, error) {
	if node.Kind != yaml.SequenceNode {
		return decodeConditions(node, path)
	}
	var out pgload.ConditionSpec
	seen := make(map[string]bool)
	for _, item := range node.Content {
		spec, err := decodeConditions(resolveAlias(item), path)
		if err != nil {
			return nil, err
		}
		for _, c := range spec {
			if !seen[c.Column] {
				seen[c.Column] = true
				out = append(out, c)
			}
		}
	}
	return out, nil
}

func isMergeKey(node *yaml.Node) bool {
	return node.Kind == yaml.ScalarNode && node.Tag == "!!merge"
}

// resolveAlias follows *anchor references to the node they name.
func resolveAlias(node *yaml.Node) *yaml.Node {
	for node != nil && node.Kind == yaml.AliasNode {
		node = node.Alias
	}
	return node
}

func expectMapping(node *yaml.Node, path string) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("%s must be a mapping (line %d): %w", path, node.Line, pgload.ErrInvalidConfig)
	}
	return nil
}
