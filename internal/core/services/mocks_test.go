package services_test

import (
	"context"
	"fmt"
	"sync"

	"github.com/SscSPs/ledger_sync/internal/apperrors"
	"github.com/SscSPs/ledger_sync/internal/core/domain"
	portssvc "github.com/SscSPs/ledger_sync/internal/core/ports/services"
	"github.com/SscSPs/ledger_sync/internal/dto"
	"github.com/stretchr/testify/mock"
)

// MockLedger is a mock type for the LedgerClient interface
type MockLedger struct {
	mock.Mock
}

func (m *MockLedger) GetAllManualAccounts(ctx context.Context) ([]domain.LedgerAccount, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.LedgerAccount), args.Error(1)
}

func (m *MockLedger) CreateManualAccount(ctx context.Context, req dto.CreateManualAccountRequest) (*domain.LedgerAccount, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LedgerAccount), args.Error(1)
}

func (m *MockLedger) CreateTransactions(ctx context.Context, req dto.CreateTransactionsRequest) (*dto.CreateTransactionsResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.CreateTransactionsResponse), args.Error(1)
}

func (m *MockLedger) GetMe(ctx context.Context) (*domain.LedgerUser, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LedgerUser), args.Error(1)
}

var _ portssvc.LedgerClient = (*MockLedger)(nil)

// fakeMappingStore keeps mappings in memory and records every ReplaceAll call.
// It enforces the same uniqueness rules as the database indexes.
type fakeMappingStore struct {
	mu       sync.Mutex
	rows     map[domain.IntegrationID][]domain.AccountMapping
	nextID   int64
	replaces [][]domain.AccountMapping
}

func newFakeMappingStore() *fakeMappingStore {
	return &fakeMappingStore{rows: make(map[domain.IntegrationID][]domain.AccountMapping)}
}

func (f *fakeMappingStore) ListMappings(_ context.Context, integration domain.IntegrationID) ([]domain.AccountMapping, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.AccountMapping, len(f.rows[integration]))
	copy(out, f.rows[integration])
	return out, nil
}

func (f *fakeMappingStore) ReplaceAll(_ context.Context, integration domain.IntegrationID, mappings []domain.AccountMapping) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.replaces = append(f.replaces, mappings)

	seenLedger := make(map[domain.LedgerAccountID]bool)
	seenExternal := make(map[string]bool)
	rows := make([]domain.AccountMapping, 0, len(mappings))
	for _, m := range mappings {
		if seenLedger[m.LedgerAccountID] || seenExternal[m.ExternalID] {
			return fmt.Errorf("%w: duplicate mapping %+v", apperrors.ErrDuplicate, m)
		}
		seenLedger[m.LedgerAccountID] = true
		seenExternal[m.ExternalID] = true
		f.nextID++
		m.ID = f.nextID
		m.Integration = integration
		rows = append(rows, m)
	}
	f.rows[integration] = rows
	return nil
}

func (f *fakeMappingStore) seed(integration domain.IntegrationID, mappings ...domain.AccountMapping) {
	if err := f.ReplaceAll(context.Background(), integration, mappings); err != nil {
		panic(err)
	}
	f.replaces = nil
}

// scriptedChooser replays canned answers in order and fails once they run out.
type scriptedChooser struct {
	selects  []any // int answers or an error
	confirms []any // bool answers or an error
	texts    []any // string answers or an error

	selectPrompts []string
	selectOptions [][]portssvc.Option
	confirmCalls  int
	textDefaults  []string
}

func (c *scriptedChooser) Select(_ context.Context, prompt string, options []portssvc.Option) (int, error) {
	c.selectPrompts = append(c.selectPrompts, prompt)
	c.selectOptions = append(c.selectOptions, options)
	if len(c.selects) == 0 {
		return 0, fmt.Errorf("unexpected select %q", prompt)
	}
	next := c.selects[0]
	c.selects = c.selects[1:]
	if err, ok := next.(error); ok {
		return 0, err
	}
	return next.(int), nil
}

func (c *scriptedChooser) Confirm(_ context.Context, prompt string, _ bool) (bool, error) {
	c.confirmCalls++
	if len(c.confirms) == 0 {
		return false, fmt.Errorf("unexpected confirm %q", prompt)
	}
	next := c.confirms[0]
	c.confirms = c.confirms[1:]
	if err, ok := next.(error); ok {
		return false, err
	}
	return next.(bool), nil
}

func (c *scriptedChooser) TextInput(_ context.Context, prompt string, defaultValue string) (string, error) {
	c.textDefaults = append(c.textDefaults, defaultValue)
	if len(c.texts) == 0 {
		return "", fmt.Errorf("unexpected text input %q", prompt)
	}
	next := c.texts[0]
	c.texts = c.texts[1:]
	if err, ok := next.(error); ok {
		return "", err
	}
	return next.(string), nil
}

// stubLoader returns a fixed batch.
type stubLoader struct {
	integration domain.IntegrationID
	key         domain.AccountKey
	batch       *portssvc.SourceBatch
	err         error
}

func (l *stubLoader) Integration() domain.IntegrationID { return l.integration }
func (l *stubLoader) AccountKey() domain.AccountKey     { return l.key }
func (l *stubLoader) Load(context.Context) (*portssvc.SourceBatch, error) {
	return l.batch, l.err
}
