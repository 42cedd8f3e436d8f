// Package mapping holds the static canonicalization rules for categorical
// employee fields.
package mapping

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"unicode"

	"gopkg.in/yaml.v3"
)

// Canonical department labels.
const (
	Operations      = "OPERATIONS"
	CustomerSupport = "CUSTOMER SUPPORT"
	HR              = "HR"
	IT              = "IT"
	Logistics       = "LOGISTICS"
	Legal           = "LEGAL"
	Marketing       = "MARKETING"
	Sales           = "SALES"
	Finance         = "FINANCE"
	RandD           = "R&D"
)

// Labels is the closed set of values the map may produce.
var Labels = []string{
	Operations, CustomerSupport, HR, IT, Logistics,
	Legal, Marketing, Sales, Finance, RandD,
}

// defaultDepartments maps known spellings, already stripped of whitespace and
// uppercased, to their canonical label.
var defaultDepartments = map[string]string{
	"OPERATIONS":      Operations,
	"OPRATIONS":       Operations,
	"CUSTOMERSUPPORT": CustomerSupport,
	"CUSTSUPPORT":     CustomerSupport,
	"SUPPORT":         CustomerSupport,
	"HR":              HR,
	"HUMANRESOURCES":  HR,
	"IT":              IT,
	"LOGISTICS":       Logistics,
	"LOGSTICS":        Logistics,
	"LEGAL":           Legal,
	"LEGL":            Legal,
	"MARKETING":       Marketing,
	"MARKNG":          Marketing,
	"MARKTING":        Marketing,
	"SALES":           Sales,
	"FINANCE":         Finance,
	"FIN":             Finance,
	"FINANACE":        Finance,
	"R&D":             RandD,
	"RND":             RandD,
	"RESEARCH":        RandD,
}

// ErrUnknownLabel is returned when an overlay maps to a value outside Labels.
var ErrUnknownLabel = errors.New("department label is not canonical")

// ErrLabelRemapped is returned when an overlay would send a canonical label
// to a different label, so cleaned output would change on a second pass.
var ErrLabelRemapped = errors.New("department overlay remaps a canonical label")

// DepartmentMap is an immutable lookup from a department key to its canonical
// label. Build it once at startup and share it freely.
type DepartmentMap struct {
	entries map[string]string
}

// DefaultDepartments returns the built-in department map.
func DefaultDepartments() *DepartmentMap {
	entries := make(map[string]string, len(defaultDepartments))
	for k, v := range defaultDepartments {
		entries[k] = v
	}
	return &DepartmentMap{entries: entries}
}

// Key reduces a raw department value to its lookup form: all whitespace
// removed, uppercased.
func Key(raw string) string {
	var sb strings.Builder
	sb.Grow(len(raw))
	for _, r := range raw {
		if unicode.IsSpace(r) {
			continue
		}
		sb.WriteRune(r)
	}
	return strings.ToUpper(sb.String())
}

// Lookup returns the canonical label for an already-keyed value.
func (m *DepartmentMap) Lookup(key string) (string, bool) {
	label, ok := m.entries[key]
	return label, ok
}

// Canonicalize keys the raw value and maps it. Unmapped values come back in
// key form (whitespace-stripped, uppercased), never title-cased.
func (m *DepartmentMap) Canonicalize(raw string) string {
	key := Key(raw)
	if label, ok := m.entries[key]; ok {
		return label
	}
	return key
}

// Keys returns every mapped key in sorted order.
func (m *DepartmentMap) Keys() []string {
	keys := make([]string, 0, len(m.entries))
	for k := range m.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Len reports the number of mapped keys.
func (m *DepartmentMap) Len() int { return len(m.entries) }

// overlayFile is the YAML shape of DEPARTMENT_MAP_FILE:
//
//	departments:
//	  CUSTSERV: CUSTOMER SUPPORT
//	  ACCOUNTING: FINANCE
type overlayFile struct {
	Departments map[string]string `yaml:"departments"`
}

// WithOverlay returns a new map holding m's entries plus those in data.
// Overlay keys are keyed the same way as raw values; every value must be
// one of Labels.
func (m *DepartmentMap) WithOverlay(data []byte) (*DepartmentMap, error) {
	var file overlayFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse department overlay: %w", err)
	}

	entries := make(map[string]string, len(m.entries)+len(file.Departments))
	for k, v := range m.entries {
		entries[k] = v
	}
	for raw, label := range file.Departments {
		label = strings.TrimSpace(strings.ToUpper(label))
		if !isLabel(label) {
			return nil, fmt.Errorf("%w: %q for key %q", ErrUnknownLabel, label, raw)
		}
		entries[Key(raw)] = label
	}

	merged := &DepartmentMap{entries: entries}
	for _, l := range Labels {
		if got := merged.Canonicalize(l); got != l {
			return nil, fmt.Errorf("%w: %q would become %q", ErrLabelRemapped, l, got)
		}
	}
	return merged, nil
}

// LoadDepartments returns the default map, extended by the overlay file at
// path when path is not empty.
func LoadDepartments(path string) (*DepartmentMap, error) {
	base := DefaultDepartments()
	if path == "" {
		return base, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read department overlay: %w", err)
	}
	return base.WithOverlay(data)
}

func isLabel(v string) bool {
	for _, l := range Labels {
		if l == v {
			return true
		}
	}
	return false
}
