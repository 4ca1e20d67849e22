// Package model defines the canonical ledger types shared by every component.
package model

import (
	"crypto/sha256"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Record is one ledger entry. ID is assigned by the ledger store and never changes.
type Record struct {
	Amount        decimal.Decimal `json:"amount"`
	AccountType   string          `json:"account_type"`
	Date          string          `json:"transaction_date"`
	Description   string          `json:"description"`
	Category      string          `json:"category"`
	ID            int64           `json:"id"`
	AccountNumber int64           `json:"account_number"`
}

// Confirmed reports whether the record carries a user-confirmed category.
func (r Record) Confirmed() bool {
	return r.Category != ""
}

// Payload returns the record's fields without its identity.
func (r Record) Payload() Payload {
	return Payload{
		AccountType:   r.AccountType,
		AccountNumber: r.AccountNumber,
		Date:          r.Date,
		Amount:        r.Amount,
		Description:   r.Description,
		Category:      r.Category,
	}
}

// Payload is a record that has not been assigned an id yet.
// Normalizers leave Category empty.
type Payload struct {
	Amount        decimal.Decimal `json:"amount"`
	AccountType   string          `json:"account_type"`
	Date          string          `json:"transaction_date"`
	Description   string          `json:"description"`
	Category      string          `json:"category"`
	AccountNumber int64           `json:"account_number"`
}

// Record attaches an id to the payload.
func (p Payload) Record(id int64) Record {
	return Record{
		ID:            id,
		AccountType:   p.AccountType,
		AccountNumber: p.AccountNumber,
		Date:          p.Date,
		Amount:        p.Amount,
		Description:   p.Description,
		Category:      p.Category,
	}
}

// Key identifies a payload for duplicate detection across imports.
func (p Payload) Key() string {
	data := fmt.Sprintf("%s:%s:%s:%s:%d",
		p.Date,
		p.Amount.StringFixed(2),
		strings.ToUpper(strings.TrimSpace(p.Description)),
		p.AccountType,
		p.AccountNumber)
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash)
}

// CountConfirmed returns how many records carry a confirmed category.
func CountConfirmed(records []Record) int {
	n := 0
	for _, r := range records {
		if r.Confirmed() {
			n++
		}
	}
	return n
}

// Descriptions returns the description of every payload, in order.
func Descriptions(payloads []Payload) []string {
	out := make([]string, len(payloads))
	for i, p := range payloads {
		out[i] = p.Description
	}
	return out
}
