package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/Veraticus/tally/internal/model"
)

// RBCNormalizer parses Royal Bank of Canada CSV exports.
type RBCNormalizer struct{}

// rbcIgnored lists card payment descriptions that only move money between accounts.
var rbcIgnored = map[string]bool{
	"MISC PAYMENT RBC CREDIT CARD":           true,
	"AUTOMATIC PAYMENT - THANK YOU":          true,
	"PAYMENT - THANK YOU / PAIEMENT - MERCI": true,
}

// Format returns the normalizer name.
func (n *RBCNormalizer) Format() string { return "rbc" }

// Normalize reads an RBC CSV. Description 1 and Description 2 are joined, the CAD$
// column becomes the amount and cheque numbers are dropped.
func (n *RBCNormalizer) Normalize(r io.Reader) ([]model.Payload, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading RBC CSV: %w", err)
	}
	if len(records) <= 1 {
		return nil, nil
	}

	idx := headerIndex(records[0])
	cols, err := requireColumns(idx, "account_type", "account_number", "transaction_date", "description_1", "cad$")
	if err != nil {
		return nil, fmt.Errorf("reading RBC CSV: %w", err)
	}
	desc2, ok := idx["description_2"]
	if !ok {
		desc2 = -1
	}
	usd, ok := idx["usd$"]
	if !ok {
		usd = -1
	}

	var payloads []model.Payload
	for i, rec := range records[1:] {
		description := strings.TrimSpace(field(rec, cols[3]) + " " + field(rec, desc2))
		if rbcIgnored[description] {
			continue
		}

		p, err := parseRBCRow(rec, cols, usd, description)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		payloads = append(payloads, p)
	}
	return payloads, nil
}

func parseRBCRow(rec []string, cols []int, usd int, description string) (model.Payload, error) {
	number, err := ParseAccountNumber(field(rec, cols[1]))
	if err != nil {
		return model.Payload{}, err
	}

	date, err := model.NormalizeDate(field(rec, cols[2]))
	if err != nil {
		return model.Payload{}, fmt.Errorf("parsing date: %w", err)
	}

	raw := field(rec, cols[4])
	if raw == "" {
		raw = field(rec, usd)
	}
	amount, err := model.ParseAmount(raw)
	if err != nil {
		return model.Payload{}, fmt.Errorf("parsing amount: %w", err)
	}

	p := model.Payload{
		AccountType:   field(rec, cols[0]),
		AccountNumber: number,
		Date:          date,
		Amount:        amount,
		Description:   description,
	}
	if err := p.Validate(); err != nil {
		return model.Payload{}, err
	}
	return p, nil
}
