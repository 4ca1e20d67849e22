package importer

import (
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"

	"github.com/aclindsa/ofxgo"
	"github.com/shopspring/decimal"

	"github.com/Veraticus/tally/internal/model"
)

// OFXNormalizer parses OFX/QFX statement downloads.
type OFXNormalizer struct{}

const creditCardAccountType = "Credit Card"

var (
	severityRegex = regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
	// Opening tags at end of line with no closing bracket, as some SGML exporters emit.
	unclosedTagRegex = regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
)

// Format returns the normalizer name.
func (n *OFXNormalizer) Format() string { return "ofx" }

// preprocessOFX fixes common formatting issues in OFX files.
func preprocessOFX(content string) string {
	content = strings.TrimLeft(content, " \t\r\n")
	content = severityRegex.ReplaceAllStringFunc(content, strings.ToUpper)
	return unclosedTagRegex.ReplaceAllString(content, "$1>")
}

// Normalize reads every bank and credit card statement in the file. Amounts keep the
// OFX sign convention, which matches the ledger's: debits are negative.
func (n *OFXNormalizer) Normalize(r io.Reader) ([]model.Payload, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read OFX file: %w", err)
	}

	resp, err := ofxgo.ParseResponse(strings.NewReader(preprocessOFX(string(content))))
	if err != nil {
		return nil, fmt.Errorf("failed to parse OFX file: %w", err)
	}

	var payloads []model.Payload
	var bankStmts, ccStmts int

	for _, msg := range resp.Bank {
		stmt, ok := msg.(*ofxgo.StatementResponse)
		if !ok || stmt.BankTranList == nil {
			continue
		}
		bankStmts++
		rows, err := convertStatement(stmt.BankTranList.Transactions,
			accountTypeName(stmt.BankAcctFrom.AcctType), string(stmt.BankAcctFrom.AcctID))
		if err != nil {
			return nil, fmt.Errorf("bank statement %s: %w", stmt.BankAcctFrom.AcctID, err)
		}
		payloads = append(payloads, rows...)
	}

	for _, msg := range resp.CreditCard {
		stmt, ok := msg.(*ofxgo.CCStatementResponse)
		if !ok || stmt.BankTranList == nil {
			continue
		}
		ccStmts++
		rows, err := convertStatement(stmt.BankTranList.Transactions,
			creditCardAccountType, string(stmt.CCAcctFrom.AcctID))
		if err != nil {
			return nil, fmt.Errorf("credit card statement %s: %w", stmt.CCAcctFrom.AcctID, err)
		}
		payloads = append(payloads, rows...)
	}

	slog.Debug("Parsed OFX file",
		"total_transactions", len(payloads),
		"bank_statements", bankStmts,
		"cc_statements", ccStmts)

	return payloads, nil
}

func convertStatement(txns []ofxgo.Transaction, accountType, accountID string) ([]model.Payload, error) {
	number, err := ParseAccountNumber(accountID)
	if err != nil {
		return nil, err
	}

	out := make([]model.Payload, 0, len(txns))
	for _, t := range txns {
		amount, err := decimal.NewFromString(t.TrnAmt.FloatString(2))
		if err != nil {
			return nil, fmt.Errorf("transaction %s: invalid amount: %w", t.FiTID, err)
		}
		p := model.Payload{
			AccountType:   accountType,
			AccountNumber: number,
			Date:          model.FormatDate(t.DtPosted.Time),
			Amount:        amount,
			Description:   ofxDescription(t),
		}
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("transaction %s: %w", t.FiTID, err)
		}
		out = append(out, p)
	}
	return out, nil
}

// acctType is the method set of ofxgo's unexported account type.
type acctType interface {
	String() string
	Valid() bool
}

// accountTypeName renders an OFX account type such as CHECKING as "Checking".
func accountTypeName(t acctType) string {
	name := strings.ToLower(t.String())
	if name == "" || !t.Valid() {
		return "Bank"
	}
	return strings.ToUpper(name[:1]) + name[1:]
}

// ofxDescription picks the most useful text for a transaction: PAYEE, then NAME, then
// MEMO when NAME is generic.
func ofxDescription(t ofxgo.Transaction) string {
	if t.Payee != nil && t.Payee.Name != "" {
		return strings.TrimSpace(string(t.Payee.Name))
	}

	name := strings.TrimSpace(string(t.Name))
	if t.Memo != "" && (name == "" || isGenericDescription(name)) {
		name = strings.TrimSpace(string(t.Memo))
	}
	if name == "" {
		name = t.TrnType.String()
	}
	return name
}

// isGenericDescription checks if a transaction name is too generic.
func isGenericDescription(name string) bool {
	switch strings.ToUpper(name) {
	case "DEBIT", "CREDIT", "PURCHASE", "PAYMENT", "POS TRANSACTION", "CARD PURCHASE":
		return true
	}
	return false
}
