// Package plaid fetches transactions from the Plaid API as canonical ledger payloads.
package plaid

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/plaid/plaid-go/v20/plaid"
	"github.com/shopspring/decimal"

	"github.com/Veraticus/tally/internal/common"
	"github.com/Veraticus/tally/internal/model"
)

const (
	plaidDateLayout = "2006-01-02"
	pageSize        = int32(500) // Plaid's max page size
)

// Config holds Plaid API configuration.
type Config struct {
	ClientID    string
	Secret      string
	Environment string // sandbox or production
	AccessToken string
}

// Validate ensures all required fields are present.
func (c *Config) Validate() error {
	if c.ClientID == "" {
		return fmt.Errorf("%w: plaid client ID is required", common.ErrMissingConfig)
	}
	if c.Secret == "" {
		return fmt.Errorf("%w: plaid secret is required", common.ErrMissingConfig)
	}
	if c.AccessToken == "" {
		return fmt.Errorf("%w: plaid access token is required", common.ErrMissingConfig)
	}
	switch c.Environment {
	case "sandbox", "production":
	case "":
		return fmt.Errorf("%w: plaid environment is required", common.ErrMissingConfig)
	default:
		return fmt.Errorf("%w: invalid Plaid environment %q: must be sandbox or production",
			common.ErrInvalidConfig, c.Environment)
	}
	return nil
}

// Client implements Source against the Plaid API.
type Client struct {
	client      *plaid.APIClient
	logger      *slog.Logger
	retryOpts   common.RetryOptions
	accessToken string
}

// NewClient creates a new Plaid client with the given configuration.
func NewClient(cfg Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	configuration := plaid.NewConfiguration()
	configuration.AddDefaultHeader("PLAID-CLIENT-ID", cfg.ClientID)
	configuration.AddDefaultHeader("PLAID-SECRET", cfg.Secret)

	switch cfg.Environment {
	case "sandbox":
		configuration.UseEnvironment(plaid.Sandbox)
	case "production":
		configuration.UseEnvironment(plaid.Production)
	}

	return &Client{
		client:      plaid.NewAPIClient(configuration),
		accessToken: cfg.AccessToken,
		logger:      slog.Default().With("component", "plaid"),
		retryOpts: common.RetryOptions{
			MaxAttempts:  3,
			InitialDelay: 1 * time.Second,
			MaxDelay:     30 * time.Second,
			Multiplier:   2.0,
		},
	}, nil
}

// FetchPayloads fetches posted transactions in [startDate, endDate] and converts them
// to ledger payloads.
func (c *Client) FetchPayloads(ctx context.Context, startDate, endDate time.Time) ([]model.Payload, error) {
	if ctx == nil {
		return nil, fmt.Errorf("context cannot be nil")
	}
	if startDate.After(endDate) {
		return nil, fmt.Errorf("start date must be before end date")
	}

	c.logger.Info("Fetching transactions from Plaid",
		"start_date", startDate.Format(plaidDateLayout),
		"end_date", endDate.Format(plaidDateLayout))

	var transactions []plaid.Transaction
	var accounts []plaid.AccountBase
	offset := int32(0)

	for {
		var page []plaid.Transaction

		err := common.WithRetry(ctx, func() error {
			request := plaid.NewTransactionsGetRequest(
				c.accessToken,
				startDate.Format(plaidDateLayout),
				endDate.Format(plaidDateLayout),
			)
			request.SetOptions(plaid.TransactionsGetRequestOptions{
				Count:  plaid.PtrInt32(pageSize),
				Offset: plaid.PtrInt32(offset),
			})

			resp, _, err := c.client.PlaidApi.TransactionsGet(ctx).TransactionsGetRequest(*request).Execute()
			if err != nil {
				return classifyError("failed to fetch transactions", err, c.logger)
			}

			page = resp.GetTransactions()
			if accounts == nil {
				accounts = resp.GetAccounts()
			}

			c.logger.Debug("Fetched transaction batch",
				"count", len(page),
				"offset", offset,
				"total", resp.GetTotalTransactions())
			return nil
		}, c.retryOpts)
		if err != nil {
			return nil, err
		}

		transactions = append(transactions, page...)
		if len(page) < int(pageSize) {
			break
		}
		offset += pageSize
	}

	c.logger.Info("Fetched all transactions", "count", len(transactions))
	return toPayloads(transactions, accounts)
}

// classifyError marks rate limits as retryable and flattens Plaid API errors.
func classifyError(msg string, err error, logger *slog.Logger) error {
	plaidErr, convErr := plaid.ToPlaidError(err)
	if convErr != nil {
		return fmt.Errorf("%s: %w", msg, err)
	}
	if plaidErr.ErrorCode == "RATE_LIMIT_EXCEEDED" {
		logger.Warn("Rate limit hit, will retry", "error", plaidErr.ErrorMessage)
		return &common.RetryableError{Err: fmt.Errorf("%w: %s", common.ErrRateLimit, plaidErr.ErrorMessage), Retryable: true}
	}
	return fmt.Errorf("plaid API error: %s - %s", plaidErr.ErrorCode, plaidErr.ErrorMessage)
}

// toPayloads converts posted Plaid transactions. Plaid reports money leaving the account
// as a positive amount, so the sign is flipped to match the ledger.
func toPayloads(transactions []plaid.Transaction, accounts []plaid.AccountBase) ([]model.Payload, error) {
	byID := make(map[string]plaid.AccountBase, len(accounts))
	for _, a := range accounts {
		byID[a.GetAccountId()] = a
	}

	out := make([]model.Payload, 0, len(transactions))
	for _, pt := range transactions {
		if pt.GetPending() {
			continue
		}

		date, err := time.Parse(plaidDateLayout, pt.GetDate())
		if err != nil {
			return nil, fmt.Errorf("transaction %s: %w: date %q",
				pt.GetTransactionId(), common.ErrInvalidValue, pt.GetDate())
		}

		description := strings.TrimSpace(pt.GetName())
		if description == "" {
			description = strings.TrimSpace(pt.GetMerchantName())
		}

		accountType, accountNumber := describeAccount(byID[pt.GetAccountId()])
		p := model.Payload{
			AccountType:   accountType,
			AccountNumber: accountNumber,
			Date:          model.FormatDate(date),
			Amount:        decimal.NewFromFloat(pt.GetAmount()).Neg().Round(2),
			Description:   description,
		}
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("transaction %s: %w", pt.GetTransactionId(), err)
		}
		out = append(out, p)
	}
	return out, nil
}

// describeAccount maps a Plaid account to the ledger's account_type and account_number:
// the subtype in title case, and the mask digits.
func describeAccount(a plaid.AccountBase) (string, int64) {
	kind := string(a.GetSubtype())
	if kind == "" {
		kind = string(a.GetType())
	}
	if kind == "" {
		kind = "Unknown"
	}

	words := strings.Fields(strings.ToLower(kind))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}

	var number int64
	for _, r := range a.GetMask() {
		if r >= '0' && r <= '9' {
			number = number*10 + int64(r-'0')
		}
	}
	return strings.Join(words, " "), number
}

var _ Source = (*Client)(nil)
