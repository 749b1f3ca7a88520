package lunchmoney_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/SscSPs/ledger_sync/internal/adapters/ledger/lunchmoney"
	"github.com/SscSPs/ledger_sync/internal/adapters/ledger/lunchmoney/lunchmoneytest"
	"github.com/SscSPs/ledger_sync/internal/apperrors"
	"github.com/SscSPs/ledger_sync/internal/core/domain"
	"github.com/SscSPs/ledger_sync/internal/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type ClientTestSuite struct {
	suite.Suite
	server *lunchmoneytest.Server
	client *lunchmoney.Client
	ctx    context.Context
}

func (suite *ClientTestSuite) SetupTest() {
	suite.ctx = context.Background()
	suite.server = lunchmoneytest.NewServer("secret-key")
	suite.client = lunchmoney.NewClient(suite.ctx, suite.server.URL, "secret-key")
}

func (suite *ClientTestSuite) TearDownTest() {
	suite.server.Close()
}

func (suite *ClientTestSuite) TestGetMe() {
	user, err := suite.client.GetMe(suite.ctx)

	suite.Require().NoError(err)
	suite.Equal("Test User", user.Name)
	suite.Equal("test@example.com", user.Email)
}

func (suite *ClientTestSuite) TestUnauthorizedIsLedgerError() {
	client := lunchmoney.NewClient(suite.ctx, suite.server.URL, "wrong-key")

	_, err := client.GetAllManualAccounts(suite.ctx)

	lerr, ok := apperrors.AsLedgerError(err)
	suite.Require().True(ok, "expected LedgerError, got %v", err)
	suite.Equal(http.StatusUnauthorized, lerr.StatusCode)
}

func (suite *ClientTestSuite) TestManualAccountsRoundTrip() {
	suite.server.AddAccount("Wallet", domain.AccountTypeCash)

	created, err := suite.client.CreateManualAccount(suite.ctx, dto.CreateManualAccountRequest{
		Name:    "Revolut EUR",
		Type:    domain.AccountTypeCash,
		Balance: decimal.Zero,
	})
	suite.Require().NoError(err)
	suite.Equal("Revolut EUR", created.Name)

	accounts, err := suite.client.GetAllManualAccounts(suite.ctx)
	suite.Require().NoError(err)
	suite.Require().Len(accounts, 2)
	suite.Equal(created.ID, accounts[1].ID)
	suite.Equal(domain.AccountTypeCash, accounts[1].Type)
}

func (suite *ClientTestSuite) TestCreateManualAccount_StructuredRejection() {
	suite.server.FailNextAccountCreate(dto.ErrorResponse{
		Message: "Invalid account",
		Errors:  []dto.ErrorDetail{{Message: "name is too long"}, {Message: "type is invalid"}},
	})

	_, err := suite.client.CreateManualAccount(suite.ctx, dto.CreateManualAccountRequest{Name: "X", Type: domain.AccountTypeLoan})

	lerr, ok := apperrors.AsLedgerError(err)
	suite.Require().True(ok)
	suite.Equal("Invalid account", lerr.Message)
	suite.Equal([]string{"name is too long", "type is invalid"}, lerr.Errors)
}

func (suite *ClientTestSuite) TestCreateManualAccount_ValidatesLocally() {
	_, err := suite.client.CreateManualAccount(suite.ctx, dto.CreateManualAccountRequest{Name: "X", Type: "boat"})

	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.Empty(suite.server.Accounts())
}

func (suite *ClientTestSuite) TestCreateTransactions_ReportsDuplicates() {
	req := dto.CreateTransactionsRequest{
		Transactions: []dto.InsertTransaction{
			{ManualAccountID: 7, Date: "2024-01-02", Amount: decimal.RequireFromString("3.50"), Payee: "Cafe", ExternalID: "a"},
			{ManualAccountID: 7, Date: "2024-01-03", Amount: decimal.RequireFromString("-10"), Payee: "Refund", ExternalID: "b"},
		},
		ApplyRules: true,
	}

	first, err := suite.client.CreateTransactions(suite.ctx, req)
	suite.Require().NoError(err)
	suite.Len(first.Transactions, 2)
	suite.Empty(first.SkippedDuplicates)

	second, err := suite.client.CreateTransactions(suite.ctx, req)
	suite.Require().NoError(err)
	suite.Empty(second.Transactions)
	suite.Len(second.SkippedDuplicates, 2)

	sent := suite.server.InsertRequests()
	suite.Require().Len(sent, 2)
	suite.False(sent[0].SkipDuplicates)
	suite.True(sent[0].ApplyRules)
	suite.True(decimal.RequireFromString("3.5").Equal(sent[0].Transactions[0].Amount))
}

func (suite *ClientTestSuite) TestCreateTransactions_RejectsOversizedPayee() {
	payee := make([]rune, domain.MaxPayeeLength+1)
	for i := range payee {
		payee[i] = 'a'
	}
	_, err := suite.client.CreateTransactions(suite.ctx, dto.CreateTransactionsRequest{
		Transactions: []dto.InsertTransaction{{ManualAccountID: 1, Date: "2024-01-01", Payee: string(payee), ExternalID: "x"}},
	})

	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.Empty(suite.server.InsertRequests())
}

func TestClientTestSuite(t *testing.T) {
	suite.Run(t, new(ClientTestSuite))
}

func TestClient_UnstructuredErrorIsNotLedgerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		fmt.Fprint(w, "<html>bad gateway</html>")
	}))
	defer srv.Close()

	client := lunchmoney.NewClient(context.Background(), srv.URL, "k")
	_, err := client.GetAllManualAccounts(context.Background())

	if err == nil {
		t.Fatal("expected error")
	}
	if _, ok := apperrors.AsLedgerError(err); ok {
		t.Fatalf("expected plain error, got LedgerError: %v", err)
	}
}

func TestClient_ThrottleRespectsContext(t *testing.T) {
	srv := lunchmoneytest.NewServer("k")
	defer srv.Close()

	l, err := lunchmoney.NewRateLimiter("1-H")
	if err != nil {
		t.Fatal(err)
	}
	client := lunchmoney.NewClient(context.Background(), srv.URL, "k", lunchmoney.WithLimiter(l))

	if _, err := client.GetMe(context.Background()); err != nil {
		t.Fatalf("first call should pass: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if _, err := client.GetMe(ctx); err == nil {
		t.Fatal("second call should block until the context expires")
	}
}

func TestClient_ServerRateLimitIsLedgerError(t *testing.T) {
	l, err := lunchmoney.NewRateLimiter("1-H")
	if err != nil {
		t.Fatal(err)
	}
	srv := lunchmoneytest.NewServer("k", lunchmoneytest.WithRateLimit(l))
	defer srv.Close()
	client := lunchmoney.NewClient(context.Background(), srv.URL, "k")

	if _, err := client.GetMe(context.Background()); err != nil {
		t.Fatalf("first call should pass: %v", err)
	}
	_, err = client.GetMe(context.Background())

	lerr, ok := apperrors.AsLedgerError(err)
	if !ok {
		t.Fatalf("expected LedgerError, got %v", err)
	}
	if lerr.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", lerr.StatusCode)
	}
}
