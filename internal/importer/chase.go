package importer

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/Veraticus/tally/internal/common"
	"github.com/Veraticus/tally/internal/model"
)

// ChaseNormalizer parses Chase checking and credit card CSV exports. Chase does not
// export account details, so they come from Account.
type ChaseNormalizer struct {
	Account Account
}

const defaultChaseAccountType = "Checking"

// Format returns the normalizer name.
func (n *ChaseNormalizer) Format() string { return "chase" }

// Normalize reads a Chase CSV. Checking exports date rows by "Posting Date", card
// exports by "Transaction Date".
func (n *ChaseNormalizer) Normalize(r io.Reader) ([]model.Payload, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading chase CSV: %w", err)
	}
	if len(records) <= 1 {
		return nil, nil
	}

	idx := headerIndex(records[0])
	dateCol, ok := idx["posting_date"]
	if !ok {
		dateCol, ok = idx["transaction_date"]
	}
	if !ok {
		return nil, fmt.Errorf("reading chase CSV: %w: no posting_date or transaction_date column", common.ErrInvalidValue)
	}
	cols, err := requireColumns(idx, "description", "amount")
	if err != nil {
		return nil, fmt.Errorf("reading chase CSV: %w", err)
	}

	accountType := n.Account.Type
	if accountType == "" {
		accountType = defaultChaseAccountType
	}

	var payloads []model.Payload
	for i, rec := range records[1:] {
		date, err := model.NormalizeDate(field(rec, dateCol))
		if err != nil {
			return nil, fmt.Errorf("row %d: parsing date: %w", i+2, err)
		}
		amount, err := model.ParseAmount(field(rec, cols[1]))
		if err != nil {
			return nil, fmt.Errorf("row %d: parsing amount: %w", i+2, err)
		}

		p := model.Payload{
			AccountType:   accountType,
			AccountNumber: n.Account.Number,
			Date:          date,
			Amount:        amount,
			Description:   field(rec, cols[0]),
		}
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		payloads = append(payloads, p)
	}
	return payloads, nil
}
