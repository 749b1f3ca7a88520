package csvfile

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/SscSPs/ledger_sync/internal/apperrors"
	"github.com/SscSPs/ledger_sync/internal/core/domain"
	"github.com/SscSPs/ledger_sync/internal/core/normalize"
	portssvc "github.com/SscSPs/ledger_sync/internal/core/ports/services"
	"github.com/SscSPs/ledger_sync/internal/platform/logging"
)

// MoneyForwardAccountsFile is the account-status list written by the scraper.
const MoneyForwardAccountsFile = "accounts.csv"

// MoneyForwardLoader reads the scraped account list and the most recent
// monthly cash-flow exports from Dir.
type MoneyForwardLoader struct {
	Dir      string
	Months   int
	Encoding Encoding
	Now      func() time.Time
}

var _ portssvc.SourceLoader = (*MoneyForwardLoader)(nil)

func (l *MoneyForwardLoader) Integration() domain.IntegrationID { return domain.MoneyForward }

func (l *MoneyForwardLoader) AccountKey() domain.AccountKey { return domain.KeyByExternalName }

func (l *MoneyForwardLoader) Load(ctx context.Context) (*portssvc.SourceBatch, error) {
	logger := logging.FromContext(ctx)
	batch := &portssvc.SourceBatch{}

	accountsPath := filepath.Join(l.Dir, MoneyForwardAccountsFile)
	// The account list is always written as UTF-8 by the scraper.
	rows, err := ReadFile(accountsPath, UTF8)
	switch {
	case errors.Is(err, apperrors.ErrMissingFile):
		logger.Warn("Account list not found", slog.String("file", accountsPath))
		batch.FilesMissing++
	case err != nil:
		return nil, err
	default:
		batch.FilesRead++
		accounts, errs := normalize.MoneyForwardAccounts(MoneyForwardAccountsFile, rows)
		batch.Accounts = accounts
		batch.Errors = append(batch.Errors, errs...)
		logger.Info("Loaded accounts", slog.Int("count", len(accounts)), slog.String("file", accountsPath))
	}

	now := time.Now
	if l.Now != nil {
		now = l.Now
	}
	for _, path := range MonthlyFiles(l.Dir, l.Months, now()) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		name := filepath.Base(path)
		rows, err := ReadFile(path, l.Encoding)
		if errors.Is(err, apperrors.ErrMissingFile) {
			logger.Debug("File not found, skipping", slog.String("file", name))
			batch.FilesMissing++
			continue
		}
		if err != nil {
			logger.Error("Error loading file", slog.String("file", name), slog.String("error", err.Error()))
			batch.FilesFailed++
			continue
		}
		batch.FilesRead++

		result, errs := normalize.MoneyForward(name, rows)
		batch.Transactions = append(batch.Transactions, result.Transactions...)
		batch.Errors = append(batch.Errors, errs...)
		logger.Info("Loaded transactions", slog.String("file", name), slog.Int("count", len(result.Transactions)))
	}
	return batch, nil
}

// RevolutLoader reads every CSV export in Dir. Accounts are derived from the
// currencies of all valid rows, settled or not.
type RevolutLoader struct {
	Dir string
}

var _ portssvc.SourceLoader = (*RevolutLoader)(nil)

func (l *RevolutLoader) Integration() domain.IntegrationID { return domain.Revolut }

func (l *RevolutLoader) AccountKey() domain.AccountKey { return domain.KeyByExternalID }

func (l *RevolutLoader) Load(ctx context.Context) (*portssvc.SourceBatch, error) {
	logger := logging.FromContext(ctx)
	batch := &portssvc.SourceBatch{}

	files, err := GlobFiles(l.Dir, "*.csv")
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		logger.Info("No CSV files found", slog.String("dir", l.Dir))
		return batch, nil
	}

	var combined normalize.Result
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		name := filepath.Base(path)
		rows, err := ReadFile(path, UTF8)
		if errors.Is(err, apperrors.ErrMissingFile) {
			logger.Warn("File not found, skipping", slog.String("file", name))
			batch.FilesMissing++
			continue
		}
		if err != nil {
			logger.Error("Error loading file", slog.String("file", name), slog.String("error", err.Error()))
			batch.FilesFailed++
			continue
		}
		batch.FilesRead++

		result, errs := normalize.Revolut(name, rows)
		combined.Append(result)
		batch.Errors = append(batch.Errors, errs...)
		logger.Info("Loaded valid transactions", slog.String("file", name), slog.Int("count", len(result.Transactions)))
	}

	batch.Transactions = combined.Transactions
	batch.Accounts = combined.Accounts
	return batch, nil
}
