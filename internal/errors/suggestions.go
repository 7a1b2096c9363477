package errors

import (
	"fmt"
	"sort"
	"strings"
)

// ErrorSuggestion represents a suggestion for fixing an error
type ErrorSuggestion struct {
	Title       string
	Description string
	Command     string
	Example     string
}

// SuggestionContext provides context for generating suggestions
type SuggestionContext struct {
	ConfigPath    string
	AliasesFile   string
	KnownSections []string
}

// UnknownSectionError generates suggestions for input that resolves to no
// section.
func UnknownSectionError(input string, ctx *SuggestionContext) []ErrorSuggestion {
	var suggestions []ErrorSuggestion

	if ctx != nil && len(ctx.KnownSections) > 0 {
		if nearby := ClosestMatches(input, ctx.KnownSections, 3); len(nearby) > 0 {
			suggestions = append(suggestions, ErrorSuggestion{
				Title:       "Did you mean",
				Description: strings.Join(nearby, ", "),
				Command:     "collegedash resolve " + nearby[0],
			})
		}
	}

	suggestions = append(suggestions, ErrorSuggestion{
		Title:       "List every section and its aliases",
		Description: "Aliases are matched case-insensitively",
		Command:     "collegedash sections -o table",
	})

	if ctx != nil && ctx.AliasesFile != "" {
		suggestions = append(suggestions, ErrorSuggestion{
			Title:       "Add a custom alias",
			Description: "Extra aliases are read from " + ctx.AliasesFile,
			Example:     "aliases:\n  " + strings.ToLower(input) + ": overview",
		})
	}

	return suggestions
}

// ServerStartError generates suggestions for server startup errors
func ServerStartError(err error, port int, ctx *SuggestionContext) []ErrorSuggestion {
	suggestions := []ErrorSuggestion{
		{
			Title:       "Use a different port",
			Description: fmt.Sprintf("Port %d may already be in use", port),
			Command:     fmt.Sprintf("collegedash serve --port %d", port+1),
		},
	}

	if strings.Contains(err.Error(), "permission denied") {
		suggestions = append(suggestions, ErrorSuggestion{
			Title:       "Use an unprivileged port",
			Description: "Ports below 1024 require elevated privileges",
			Command:     "collegedash serve --port 8080",
		})
	}

	if ctx != nil && ctx.ConfigPath != "" {
		suggestions = append(suggestions, ErrorSuggestion{
			Title:   "Set the port in configuration",
			Command: "cat " + ctx.ConfigPath,
			Example: "server:\n  port: 8080",
		})
	}

	return suggestions
}

// ConfigurationError generates suggestions for configuration errors
func ConfigurationError(configError string, configPath string, ctx *SuggestionContext) []ErrorSuggestion {
	suggestions := []ErrorSuggestion{
		{
			Title:       "Check configuration syntax",
			Description: "Verify the YAML in " + configPath + " is valid",
			Command:     "cat " + configPath,
		},
	}

	lower := strings.ToLower(configError)
	switch {
	case strings.Contains(lower, "port"):
		suggestions = append(suggestions, ErrorSuggestion{
			Title:   "Use a port between 1 and 65535",
			Example: "server:\n  port: 8080",
		})
	case strings.Contains(lower, "aliases_file"):
		suggestions = append(suggestions, ErrorSuggestion{
			Title:   "Point aliases_file at a relative YAML file",
			Example: "navigation:\n  aliases_file: aliases.yml",
		})
	case strings.Contains(lower, "log"):
		suggestions = append(suggestions, ErrorSuggestion{
			Title:   "Use a supported log level and format",
			Example: "log:\n  level: info   # debug, info, warn, error\n  format: text  # text, json",
		})
	}

	return suggestions
}

// FormatSuggestions formats suggestions into a user-friendly string
func FormatSuggestions(title string, suggestions []ErrorSuggestion) string {
	if len(suggestions) == 0 {
		return title
	}

	var output strings.Builder
	output.WriteString(title + "\n\n")
	output.WriteString("Suggestions:\n")

	for i, suggestion := range suggestions {
		output.WriteString(fmt.Sprintf("  %d. %s\n", i+1, suggestion.Title))
		if suggestion.Description != "" {
			output.WriteString(fmt.Sprintf("     %s\n", suggestion.Description))
		}
		if suggestion.Command != "" {
			output.WriteString(fmt.Sprintf("     Run: %s\n", suggestion.Command))
		}
		if suggestion.Example != "" {
			output.WriteString(fmt.Sprintf("     Example: %s\n", suggestion.Example))
		}
		output.WriteString("\n")
	}

	return output.String()
}

// EnhancedError wraps an error with suggestions
type EnhancedError struct {
	OriginalError error
	Title         string
	Suggestions   []ErrorSuggestion
}

// Error implements the error interface
func (e *EnhancedError) Error() string {
	return FormatSuggestions(e.Title, e.Suggestions)
}

// Unwrap returns the original error
func (e *EnhancedError) Unwrap() error {
	return e.OriginalError
}

// NewEnhancedError creates a new enhanced error with suggestions
func NewEnhancedError(title string, originalError error, suggestions []ErrorSuggestion) *EnhancedError {
	return &EnhancedError{
		OriginalError: originalError,
		Title:         title,
		Suggestions:   suggestions,
	}
}

// ClosestMatches returns up to n candidates ordered by edit distance to input.
// Candidates further than half the input length away are dropped.
func ClosestMatches(input string, candidates []string, n int) []string {
	input = strings.ToLower(input)
	maxDistance := len(input)/2 + 1

	type scored struct {
		value    string
		distance int
	}
	var matches []scored
	for _, c := range candidates {
		d := levenshtein(input, strings.ToLower(c))
		if strings.HasPrefix(strings.ToLower(c), input) && input != "" {
			d = 0
		}
		if d <= maxDistance {
			matches = append(matches, scored{value: c, distance: d})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].distance < matches[j].distance
	})

	if len(matches) > n {
		matches = matches[:n]
	}
	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = m.value
	}
	return out
}

func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}
