package testutil

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/tally/internal/model"
)

// PayloadBuilder builds canonical payloads with sensible defaults.
type PayloadBuilder struct {
	p model.Payload
}

// NewPayload starts a payload for a credit card purchase.
func NewPayload(description string) *PayloadBuilder {
	return &PayloadBuilder{p: model.Payload{
		AccountType:   "Credit Card",
		AccountNumber: 4500123412341234,
		Date:          "01/15/2024",
		Amount:        decimal.RequireFromString("-10.00"),
		Description:   description,
	}}
}

// Category sets the confirmed category.
func (b *PayloadBuilder) Category(c string) *PayloadBuilder {
	b.p.Category = c
	return b
}

// Amount sets the signed amount from a decimal string.
func (b *PayloadBuilder) Amount(a string) *PayloadBuilder {
	b.p.Amount = decimal.RequireFromString(a)
	return b
}

// Date sets the MM/DD/YYYY transaction date.
func (b *PayloadBuilder) Date(d string) *PayloadBuilder {
	b.p.Date = d
	return b
}

// Account sets the account type and number.
func (b *PayloadBuilder) Account(accountType string, number int64) *PayloadBuilder {
	b.p.AccountType = accountType
	b.p.AccountNumber = number
	return b
}

// Build returns the payload.
func (b *PayloadBuilder) Build() model.Payload {
	return b.p
}

// ConfirmedPayloads returns n payloads labeled with category, each with a distinct
// description built from prefix.
func ConfirmedPayloads(n int, prefix, category string) []model.Payload {
	out := make([]model.Payload, n)
	for i := range out {
		out[i] = NewPayload(fmt.Sprintf("%s #%d", prefix, i+1)).Category(category).Build()
	}
	return out
}

// UnlabeledPayloads returns n payloads without a category.
func UnlabeledPayloads(n int, prefix string) []model.Payload {
	out := make([]model.Payload, n)
	for i := range out {
		out[i] = NewPayload(fmt.Sprintf("%s #%d", prefix, i+1)).Build()
	}
	return out
}
