package plaid

import (
	"context"
	"time"

	"github.com/Veraticus/tally/internal/model"
)

// MockSource is a Source whose behavior is set by tests.
type MockSource struct {
	FetchPayloadsFn func(ctx context.Context, startDate, endDate time.Time) ([]model.Payload, error)
	Calls           []FetchCall
}

// FetchCall records the parameters of a FetchPayloads call.
type FetchCall struct {
	StartDate time.Time
	EndDate   time.Time
}

// FetchPayloads implements Source.
func (m *MockSource) FetchPayloads(ctx context.Context, startDate, endDate time.Time) ([]model.Payload, error) {
	m.Calls = append(m.Calls, FetchCall{StartDate: startDate, EndDate: endDate})
	if m.FetchPayloadsFn != nil {
		return m.FetchPayloadsFn(ctx, startDate, endDate)
	}
	return []model.Payload{}, nil
}

var _ Source = (*MockSource)(nil)
