// Package importer turns bank exports into canonical payloads and feeds them to the
// reconciliation engine.
package importer

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/Veraticus/tally/internal/common"
	"github.com/Veraticus/tally/internal/model"
)

// Normalizer converts one bank's export format into canonical payloads.
// Normalized payloads never carry a category.
type Normalizer interface {
	Normalize(r io.Reader) ([]model.Payload, error)
	Format() string
}

// Account fills in the account columns for formats whose exports do not carry them.
type Account struct {
	Type   string
	Number int64
}

// Registry holds named normalizers.
type Registry struct {
	normalizers map[string]Normalizer
}

// NewRegistry creates an empty normalizer registry.
func NewRegistry() *Registry {
	return &Registry{normalizers: make(map[string]Normalizer)}
}

// Register adds a normalizer. Panics on duplicate format.
func (r *Registry) Register(n Normalizer) {
	key := strings.ToLower(n.Format())
	if _, ok := r.normalizers[key]; ok {
		panic("duplicate normalizer format: " + key)
	}
	r.normalizers[key] = n
}

// Get returns the normalizer for format.
func (r *Registry) Get(format string) (Normalizer, error) {
	n, ok := r.normalizers[strings.ToLower(strings.TrimSpace(format))]
	if !ok {
		return nil, fmt.Errorf("%w: unknown import format %q (supported: %s)",
			common.ErrInvalidConfig, format, strings.Join(r.Formats(), ", "))
	}
	return n, nil
}

// Formats lists the registered format names.
func (r *Registry) Formats() []string {
	out := make([]string, 0, len(r.normalizers))
	for k := range r.normalizers {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// DefaultRegistry returns a registry with all built-in normalizers. acct is used by
// formats that do not export account details.
func DefaultRegistry(acct Account) *Registry {
	r := NewRegistry()
	r.Register(&RBCNormalizer{})
	r.Register(&ChaseNormalizer{Account: acct})
	r.Register(&OFXNormalizer{})
	return r
}

// headerKey matches CSV headers case-insensitively with spaces replaced by underscores.
func headerKey(h string) string {
	h = strings.TrimPrefix(h, "\ufeff")
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(h)), " ", "_")
}

// headerIndex maps normalized header names to their column positions.
func headerIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[headerKey(h)] = i
	}
	return idx
}

// requireColumns returns the positions of the named columns or an error naming the
// first one missing.
func requireColumns(idx map[string]int, names ...string) ([]int, error) {
	out := make([]int, len(names))
	for i, name := range names {
		pos, ok := idx[name]
		if !ok {
			return nil, fmt.Errorf("%w: missing column %q", common.ErrInvalidValue, name)
		}
		out[i] = pos
	}
	return out, nil
}

// field returns rec[i] trimmed, or "" when the row is short.
func field(rec []string, i int) string {
	if i < 0 || i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

// ParseAccountNumber keeps the digits of an exported account identifier, so
// "00102-5012345" becomes 001025012345.
func ParseAccountNumber(s string) (int64, error) {
	digits := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, s)
	if digits == "" {
		return 0, fmt.Errorf("%w: account number %q has no digits", common.ErrInvalidValue, s)
	}
	if len(digits) > 18 {
		digits = digits[len(digits)-18:]
	}
	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: account number %q: %v", common.ErrInvalidValue, s, err)
	}
	return n, nil
}
