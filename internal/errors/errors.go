// Package errors provides the structured error types used across collegedash:
// typed dashboard errors, alias-file diagnostics with a thread-safe collector,
// and CLI-facing errors that carry remediation suggestions.
package errors

import (
	"fmt"
	"sort"
	"sync"
	"time"
)

// ErrorSeverity represents the severity of an error
type ErrorSeverity int

const (
	ErrorSeverityInfo ErrorSeverity = iota
	ErrorSeverityWarning
	ErrorSeverityError
	ErrorSeverityFatal
)

// String returns the string representation of the severity
func (s ErrorSeverity) String() string {
	switch s {
	case ErrorSeverityInfo:
		return "info"
	case ErrorSeverityWarning:
		return "warning"
	case ErrorSeverityError:
		return "error"
	case ErrorSeverityFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// AliasError describes a problem with one entry of an alias file.
type AliasError struct {
	File      string
	Line      int
	Alias     string
	Target    string
	Message   string
	Severity  ErrorSeverity
	Timestamp time.Time
}

// Error implements the error interface
func (ae *AliasError) Error() string {
	location := ae.File
	if ae.Line > 0 {
		location = fmt.Sprintf("%s:%d", ae.File, ae.Line)
	}
	if ae.Alias != "" {
		return fmt.Sprintf("%s: %s: alias %q -> %q: %s", location, ae.Severity, ae.Alias, ae.Target, ae.Message)
	}
	return fmt.Sprintf("%s: %s: %s", location, ae.Severity, ae.Message)
}

// Collector gathers alias errors and general errors from a load or reload.
type Collector struct {
	aliasErrors []AliasError
	errors      []error
	mutex       sync.RWMutex
}

// NewCollector creates an empty collector
func NewCollector() *Collector {
	return &Collector{
		aliasErrors: make([]AliasError, 0),
		errors:      make([]error, 0),
	}
}

// Add records an alias error, stamping it with the current time.
func (c *Collector) Add(err AliasError) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	err.Timestamp = time.Now()
	c.aliasErrors = append(c.aliasErrors, err)
}

// AddError records a general error. Nil errors are ignored.
func (c *Collector) AddError(err error) {
	if err == nil {
		return
	}
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.errors = append(c.errors, err)
}

// AliasErrors returns a copy of the collected alias errors ordered by line.
func (c *Collector) AliasErrors() []AliasError {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	result := make([]AliasError, len(c.aliasErrors))
	copy(result, c.aliasErrors)
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Line < result[j].Line
	})
	return result
}

// All returns alias errors followed by general errors.
func (c *Collector) All() []error {
	aliasErrs := c.AliasErrors()

	c.mutex.RLock()
	defer c.mutex.RUnlock()

	all := make([]error, 0, len(aliasErrs)+len(c.errors))
	for i := range aliasErrs {
		all = append(all, &aliasErrs[i])
	}
	return append(all, c.errors...)
}

// HasErrors reports whether anything at error severity or above was recorded.
// Warnings alone do not count.
func (c *Collector) HasErrors() bool {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	if len(c.errors) > 0 {
		return true
	}
	for _, err := range c.aliasErrors {
		if err.Severity >= ErrorSeverityError {
			return true
		}
	}
	return false
}

// Len returns the total number of recorded problems.
func (c *Collector) Len() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return len(c.aliasErrors) + len(c.errors)
}

// Clear drops everything collected so far
func (c *Collector) Clear() {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.aliasErrors = c.aliasErrors[:0]
	c.errors = c.errors[:0]
}
