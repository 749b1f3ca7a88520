package csvfile_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/SscSPs/ledger_sync/internal/adapters/source/csvfile"
	"github.com/SscSPs/ledger_sync/internal/apperrors"
	"github.com/SscSPs/ledger_sync/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/japanese"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestRead_StripsBOMAndSkipsBlankLines(t *testing.T) {
	content := "\xEF\xBB\xBFType,Amount\nTopup,10\n\n,\nCharge,-2\n"

	rows, err := csvfile.Read(strings.NewReader(content), csvfile.UTF8)

	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Topup", rows[0]["Type"])
	assert.Equal(t, "-2", rows[1]["Amount"])
}

func TestRead_ShortRecordsGetEmptyValues(t *testing.T) {
	rows, err := csvfile.Read(strings.NewReader("a,b,c\n1,2\n"), csvfile.UTF8)

	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "", rows[0]["c"])
}

func TestRead_DecodesShiftJIS(t *testing.T) {
	encoded, err := japanese.ShiftJIS.NewEncoder().String("内容,ID\nコンビニ,x1\n")
	require.NoError(t, err)

	rows, err := csvfile.Read(strings.NewReader(encoded), csvfile.ShiftJIS)

	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "コンビニ", rows[0]["内容"])
}

func TestReadFile_MissingFile(t *testing.T) {
	_, err := csvfile.ReadFile(filepath.Join(t.TempDir(), "nope.csv"), csvfile.UTF8)

	assert.ErrorIs(t, err, apperrors.ErrMissingFile)
}

func TestMonthlyFiles_NewestFirstAcrossYearBoundary(t *testing.T) {
	now := time.Date(2024, 2, 20, 0, 0, 0, 0, time.UTC)

	paths := csvfile.MonthlyFiles("data", 3, now)

	assert.Equal(t, []string{
		filepath.Join("data", "2024-02.csv"),
		filepath.Join("data", "2024-01.csv"),
		filepath.Join("data", "2023-12.csv"),
	}, paths)
}

func TestParseEncoding(t *testing.T) {
	enc, err := csvfile.ParseEncoding("SJIS")
	require.NoError(t, err)
	assert.Equal(t, csvfile.ShiftJIS, enc)

	_, err = csvfile.ParseEncoding("latin1")
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestRevolutLoader_CombinesFilesAndReportsErrors(t *testing.T) {
	dir := t.TempDir()
	header := "Type,Product,Started Date,Completed Date,Description,Amount,Fee,Currency,State,Balance\n"
	writeFile(t, dir, "a.csv", header+
		"Card Payment,Current,2024-01-02 10:00:00,2024-01-02 11:00:00,Cafe,-3.50,0.00,EUR,COMPLETED,96.50\n"+
		"Bogus,Current,2024-01-03 10:00:00,2024-01-03 11:00:00,Nope,-1.00,0.00,EUR,COMPLETED,95.50\n")
	writeFile(t, dir, "b.csv", header+
		"Topup,Current,2024-01-04 10:00:00,,Top up,100.00,0.00,JPY,PENDING,\n")
	writeFile(t, dir, "notes.txt", "ignored")

	loader := &csvfile.RevolutLoader{Dir: dir}
	batch, err := loader.Load(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, batch.FilesRead)
	assert.Len(t, batch.Transactions, 2)
	require.Len(t, batch.Errors, 1)
	assert.Equal(t, "a.csv", batch.Errors[0].Source)
	assert.Equal(t, 2, batch.Errors[0].RecordIndex)
	require.Len(t, batch.Accounts, 2)
	assert.Equal(t, "EUR", batch.Accounts[0].ExternalID)
	assert.Equal(t, "JPY", batch.Accounts[1].ExternalID)
	assert.Equal(t, domain.KeyByExternalID, loader.AccountKey())
}

func TestMoneyForwardLoader_MissingMonthsAreNotFatal(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "accounts.csv", "mfId,name,type,status,lastUpdated,url,errorMessage\nm1,Bank A,bank,ok,2024-03-01,/a/m1,\n")
	writeFile(t, dir, "2024-03.csv", "計算対象,日付,内容,金額（円）,保有金融機関,大項目,中項目,メモ,振替,ID\n1,2024/03/05,Lunch,-900,Bank A,食費,外食,,0,tx1\n")

	loader := &csvfile.MoneyForwardLoader{
		Dir:      dir,
		Months:   3,
		Encoding: csvfile.UTF8,
		Now:      func() time.Time { return time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC) },
	}
	batch, err := loader.Load(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, batch.FilesRead)
	assert.Equal(t, 2, batch.FilesMissing)
	require.Len(t, batch.Accounts, 1)
	assert.Equal(t, "Bank A", batch.Accounts[0].DisplayName)
	require.Len(t, batch.Transactions, 1)
	assert.Equal(t, "Bank A", batch.Transactions[0].ExternalAccountRef)
	assert.Equal(t, domain.KeyByExternalName, loader.AccountKey())
}
