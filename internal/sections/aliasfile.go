package sections

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/conneroisu/collegedash/internal/errors"
)

// AliasEntry is one alias -> canonical id pair read from an alias file.
type AliasEntry struct {
	Alias  string
	Target string
	Line   int
}

// ParseAliasFile decodes an alias file of the form
//
//	aliases:
//	  hods: tutors
//	  gateway: epatracking
//
// keeping the line of every entry for diagnostics. An empty document yields
// no entries.
func ParseAliasFile(data []byte) ([]AliasEntry, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing alias file: %w", err)
	}
	if len(doc.Content) == 0 {
		return nil, nil
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("alias file line %d: top level must be a mapping", root.Line)
	}

	var aliases *yaml.Node
	for i := 0; i+1 < len(root.Content); i += 2 {
		if root.Content[i].Value == "aliases" {
			aliases = root.Content[i+1]
			break
		}
	}
	if aliases == nil {
		return nil, nil
	}
	if aliases.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("alias file line %d: aliases must be a mapping of alias to section", aliases.Line)
	}

	entries := make([]AliasEntry, 0, len(aliases.Content)/2)
	for i := 0; i+1 < len(aliases.Content); i += 2 {
		key, value := aliases.Content[i], aliases.Content[i+1]
		if value.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("alias file line %d: section for %q must be a plain string", value.Line, key.Value)
		}
		entries = append(entries, AliasEntry{
			Alias:  key.Value,
			Target: value.Value,
			Line:   key.Line,
		})
	}
	return entries, nil
}

// Apply rebuilds the table from the built-in aliases plus extra, then swaps
// it in. Invalid entries are skipped and reported; the rest take effect.
// source names the origin of the entries in diagnostics.
func (t *AliasTable) Apply(source string, extra []AliasEntry) *errors.Collector {
	collector := errors.NewCollector()
	entries := defaultEntries()
	seen := make(map[string]int, len(extra))

	for _, e := range extra {
		alias := strings.ToLower(strings.TrimSpace(e.Alias))
		target := strings.ToLower(strings.TrimSpace(e.Target))
		report := func(severity errors.ErrorSeverity, msg string) {
			collector.Add(errors.AliasError{
				File:     source,
				Line:     e.Line,
				Alias:    e.Alias,
				Target:   e.Target,
				Message:  msg,
				Severity: severity,
			})
		}

		if alias == "" {
			report(errors.ErrorSeverityError, "alias is empty")
			continue
		}
		s, ok := Parse(target)
		if !ok {
			report(errors.ErrorSeverityError, "unknown target section")
			continue
		}
		if canonical, isID := Parse(alias); isID {
			if canonical != s {
				report(errors.ErrorSeverityError, "canonical section ids cannot be remapped")
			}
			continue
		}
		if line, dup := seen[alias]; dup {
			report(errors.ErrorSeverityWarning, fmt.Sprintf("duplicate alias, overrides line %d", line))
		} else if builtin, isBuiltin := builtinAliases[alias]; isBuiltin && builtin != s {
			report(errors.ErrorSeverityWarning, "overrides built-in alias for "+builtin.String())
		}

		seen[alias] = e.Line
		entries[alias] = s
	}

	t.swap(entries)
	return collector
}

// LoadFile reads and applies an alias file. The returned error covers reading
// and parsing; problems with individual entries are in the collector. On
// error the table is left unchanged.
func (t *AliasTable) LoadFile(path string) (*errors.Collector, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewIOError(errors.ErrCodeAliasFile, "reading alias file", err).WithLocation(path, 0)
	}

	entries, err := ParseAliasFile(data)
	if err != nil {
		return nil, errors.NewConfigError(errors.ErrCodeAliasFile, "invalid alias file", err).WithLocation(path, 0)
	}

	return t.Apply(path, entries), nil
}
