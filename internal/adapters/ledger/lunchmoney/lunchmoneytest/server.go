// Package lunchmoneytest provides an in-process fake of the Lunch Money API
// for exercising the HTTP client and the sync pipeline end to end.
package lunchmoneytest

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"github.com/SscSPs/ledger_sync/internal/core/domain"
	"github.com/SscSPs/ledger_sync/internal/dto"
	"github.com/SscSPs/ledger_sync/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
)

// Server is a fake ledger. Transactions are deduplicated by external_id the
// same way the real service reports skipped_duplicates.
type Server struct {
	*httptest.Server

	APIKey string
	User   dto.UserResponse

	mu               sync.Mutex
	accounts         []dto.ManualAccountResponse
	transactions     map[string]dto.TransactionResponse
	insertRequests   []dto.CreateTransactionsRequest
	nextID           int64
	accountFailures  []dto.ErrorResponse
	rejectInsertCall int
	insertCalls      int
}

type serverConfig struct {
	logger  *slog.Logger
	limiter *limiter.Limiter
}

// ServerOption configures a fake ledger
type ServerOption func(*serverConfig)

// WithLogger logs every request to logger. Requests are discarded by default.
func WithLogger(logger *slog.Logger) ServerOption {
	return func(c *serverConfig) {
		c.logger = logger
	}
}

// WithRateLimit answers 429 once l is exhausted for the caller's token.
func WithRateLimit(l *limiter.Limiter) ServerOption {
	return func(c *serverConfig) {
		c.limiter = l
	}
}

// NewServer starts a fake ledger that accepts apiKey as its bearer token.
func NewServer(apiKey string, options ...ServerOption) *Server {
	gin.SetMode(gin.TestMode)
	cfg := &serverConfig{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, option := range options {
		option(cfg)
	}

	s := &Server{
		APIKey:       apiKey,
		User:         dto.UserResponse{ID: 1, Name: "Test User", Email: "test@example.com"},
		transactions: make(map[string]dto.TransactionResponse),
		nextID:       1000,
	}

	r := gin.New()
	r.Use(middleware.StructuredLoggingMiddleware(cfg.logger), gin.Recovery())
	r.Use(middleware.BearerTokenAuth(apiKey))
	if cfg.limiter != nil {
		r.Use(middleware.RateLimit(cfg.limiter))
	}
	r.GET("/me", s.getMe)
	r.GET("/manual_accounts", s.listAccounts)
	r.POST("/manual_accounts", s.createAccount)
	r.POST("/transactions", s.createTransactions)

	s.Server = httptest.NewServer(r)
	return s
}

// AddAccount seeds an existing manual account and returns its id.
func (s *Server) AddAccount(name string, accountType domain.AccountType) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	s.accounts = append(s.accounts, dto.ManualAccountResponse{ID: s.nextID, Name: name, Type: accountType})
	return s.nextID
}

// FailNextAccountCreate makes the next manual account creation fail with body.
func (s *Server) FailNextAccountCreate(body dto.ErrorResponse) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accountFailures = append(s.accountFailures, body)
}

// RejectInsertCall makes the n-th (1-based) transaction insert call fail.
func (s *Server) RejectInsertCall(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rejectInsertCall = n
}

// Accounts returns a copy of the current manual accounts.
func (s *Server) Accounts() []dto.ManualAccountResponse {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]dto.ManualAccountResponse(nil), s.accounts...)
}

// InsertRequests returns a copy of every accepted insert request body.
func (s *Server) InsertRequests() []dto.CreateTransactionsRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]dto.CreateTransactionsRequest(nil), s.insertRequests...)
}

// TransactionCount is the number of distinct stored transactions.
func (s *Server) TransactionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.transactions)
}

func (s *Server) getMe(c *gin.Context) {
	c.JSON(http.StatusOK, s.User)
}

func (s *Server) listAccounts(c *gin.Context) {
	c.JSON(http.StatusOK, dto.ListManualAccountsResponse{ManualAccounts: s.Accounts()})
}

func (s *Server) createAccount(c *gin.Context) {
	var req dto.CreateManualAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Errors: []dto.ErrorDetail{{Message: err.Error()}}})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.accountFailures) > 0 {
		failure := s.accountFailures[0]
		s.accountFailures = s.accountFailures[1:]
		c.JSON(http.StatusBadRequest, failure)
		return
	}
	for _, a := range s.accounts {
		if strings.EqualFold(a.Name, req.Name) {
			c.JSON(http.StatusConflict, dto.ErrorResponse{
				Message: "Manual account already exists",
				Errors:  []dto.ErrorDetail{{Message: "name must be unique"}},
			})
			return
		}
	}
	s.nextID++
	account := dto.ManualAccountResponse{ID: s.nextID, Name: req.Name, Type: req.Type, Balance: req.Balance}
	s.accounts = append(s.accounts, account)
	c.JSON(http.StatusCreated, account)
}

func (s *Server) createTransactions(c *gin.Context) {
	var req dto.CreateTransactionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Errors: []dto.ErrorDetail{{Message: err.Error()}}})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.insertCalls++
	if s.insertCalls == s.rejectInsertCall {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Message: "Some transactions are invalid",
			Errors:  []dto.ErrorDetail{{Message: "transactions[0].date is invalid"}},
		})
		return
	}
	s.insertRequests = append(s.insertRequests, req)

	resp := dto.CreateTransactionsResponse{
		Transactions:      []dto.TransactionResponse{},
		SkippedDuplicates: []dto.TransactionResponse{},
	}
	for _, t := range req.Transactions {
		if existing, ok := s.transactions[t.ExternalID]; ok {
			resp.SkippedDuplicates = append(resp.SkippedDuplicates, existing)
			continue
		}
		s.nextID++
		stored := dto.TransactionResponse{
			ID:              s.nextID,
			ManualAccountID: t.ManualAccountID,
			Date:            t.Date,
			Amount:          t.Amount,
			Payee:           t.Payee,
			ExternalID:      t.ExternalID,
		}
		s.transactions[t.ExternalID] = stored
		resp.Transactions = append(resp.Transactions, stored)
	}
	middleware.GetLoggerFromContext(c).Debug("Stored transactions",
		slog.Int("inserted", len(resp.Transactions)),
		slog.Int("skipped_duplicates", len(resp.SkippedDuplicates)))
	c.JSON(http.StatusCreated, resp)
}
