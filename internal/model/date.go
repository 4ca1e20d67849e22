package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/Veraticus/tally/internal/common"
)

// DateLayout is the storage format of transaction_date. Range queries compare it lexically.
const DateLayout = "01/02/2006"

var inputDateLayouts = []string{
	DateLayout,
	"1/2/2006",
	"2006-01-02",
	"2006/01/02",
	"01/02/06",
	"1/2/06",
}

// NormalizeDate parses the date formats banks commonly export and renders it as MM/DD/YYYY.
func NormalizeDate(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("%w: empty transaction_date", common.ErrInvalidValue)
	}
	for _, layout := range inputDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(DateLayout), nil
		}
	}
	return "", fmt.Errorf("%w: unrecognized transaction_date %q", common.ErrInvalidValue, s)
}

// FormatDate renders t in the storage format.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}
