package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salesplot/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "data", "sales.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestImportAndReadRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	in := core.NewTable([]core.Transaction{
		{
			OrderID:    "1",
			RawDate:    "07/03/2022",
			ItemName:   "Aalopuri",
			ItemType:   "Fastfood",
			ItemPrice:  decimal.RequireFromString("20"),
			Quantity:   13,
			Amount:     decimal.RequireFromString("260"),
			ReceivedBy: "Mr.",
			TimeOfSale: "Night",
		},
		{
			OrderID:         "2",
			RawDate:         "8/23/2022",
			ItemType:        "Beverages",
			ItemPrice:       decimal.RequireFromString("12.5"),
			Quantity:        2,
			Amount:          decimal.RequireFromString("25"),
			TransactionType: "Cash",
			ReceivedBy:      "Mrs.",
		},
	})

	n, err := repo.ImportTransactions(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	out, err := repo.ReadTransactions(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, out.Len())

	want, got := in.Rows(), out.Rows()
	for i := range want {
		assert.Equal(t, want[i].OrderID, got[i].OrderID)
		assert.Equal(t, want[i].RawDate, got[i].RawDate)
		assert.Equal(t, want[i].ItemType, got[i].ItemType)
		assert.Equal(t, want[i].TransactionType, got[i].TransactionType)
		assert.Equal(t, want[i].ReceivedBy, got[i].ReceivedBy)
		assert.Equal(t, want[i].Quantity, got[i].Quantity)
		assert.True(t, want[i].ItemPrice.Equal(got[i].ItemPrice))
		assert.True(t, want[i].Amount.Equal(got[i].Amount))
	}

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestDeleteAll(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	_, err := repo.ImportTransactions(ctx, core.NewTable([]core.Transaction{{RawDate: "1/1/2023"}}))
	require.NoError(t, err)

	removed, err := repo.DeleteAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	out, err := repo.ReadTransactions(ctx)
	require.NoError(t, err)
	assert.Zero(t, out.Len())
}

func TestReplaceTransactions(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	_, err := repo.ImportTransactions(ctx, core.NewTable([]core.Transaction{{RawDate: "1/1/2023"}, {RawDate: "1/2/2023"}}))
	require.NoError(t, err)

	removed, inserted, err := repo.ReplaceTransactions(ctx, core.NewTable([]core.Transaction{{RawDate: "2/1/2023", ItemType: "B"}}))
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)
	assert.Equal(t, 1, inserted)

	out, err := repo.ReadTransactions(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, out.Len())
	assert.Equal(t, "B", out.Rows()[0].ItemType)
}

func TestReplaceTransactions_FailedInsertKeepsExistingRows(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	_, err := repo.ImportTransactions(ctx, core.NewTable([]core.Transaction{{RawDate: "1/1/2023", ItemType: "A"}}))
	require.NoError(t, err)

	_, err = repo.db.ExecContext(ctx, `CREATE TRIGGER reject_bad_rows BEFORE INSERT ON transactions
WHEN NEW.item_type = 'bad'
BEGIN
    SELECT RAISE(ABORT, 'rejected row');
END`)
	require.NoError(t, err)

	_, _, err = repo.ReplaceTransactions(ctx, core.NewTable([]core.Transaction{
		{RawDate: "2/1/2023", ItemType: "B"},
		{RawDate: "2/2/2023", ItemType: "bad"},
	}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert row 2")

	out, err := repo.ReadTransactions(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, out.Len())
	assert.Equal(t, "A", out.Rows()[0].ItemType)
}

func TestReplaceTransactions_CanceledContextKeepsExistingRows(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.ImportTransactions(context.Background(), core.NewTable([]core.Transaction{{RawDate: "1/1/2023"}}))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err = repo.ReplaceTransactions(ctx, core.NewTable([]core.Transaction{{RawDate: "2/1/2023"}}))
	require.Error(t, err)

	n, err := repo.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sales.db")
	ctx := context.Background()

	repo, err := NewSQLiteRepository(path)
	require.NoError(t, err)
	_, err = repo.ImportTransactions(ctx, core.NewTable([]core.Transaction{{RawDate: "1/1/2023", ItemType: "A"}}))
	require.NoError(t, err)
	require.NoError(t, repo.Close())

	// migrations must be idempotent on an existing database
	repo, err = NewSQLiteRepository(path)
	require.NoError(t, err)
	defer repo.Close()

	out, err := repo.ReadTransactions(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, out.Len())
}

func TestSchemaVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sales.db")
	repo, err := NewSQLiteRepository(path)
	require.NoError(t, err)
	require.NoError(t, repo.Close())

	v, dirty, err := SchemaVersion(path)
	require.NoError(t, err)
	assert.Equal(t, uint(2), v)
	assert.False(t, dirty)
}
