package csvfile

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salesplot/internal/sources"
)

const sample = `order_id,date,item_name,item_type,item_price,quantity,transaction_amount,transaction_type,received_by,time_of_sale
1,07/03/2022,Aalopuri,Fastfood,20,13,260,,Mr.,Night
2,8/23/2022,Vadapav,Fastfood,20,15,300,Cash,Mr.,Afternoon
3,11/20/2022,Vadapav,Fastfood,20,1,20,Cash,Mr.,Afternoon
4,02/03/2023,Sugarcane juice,Beverages,25,6,150,Online,Mr.,Night
`

func TestReadTransactions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sales.csv")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o644))

	table, err := New(path).ReadTransactions(context.Background())
	require.NoError(t, err)
	require.Equal(t, 4, table.Len())

	rows := table.Rows()
	assert.Equal(t, "8/23/2022", rows[1].RawDate)
	assert.Equal(t, "Beverages", rows[3].ItemType)
	assert.Equal(t, "Online", rows[3].TransactionType)
	assert.Empty(t, rows[0].TransactionType)
}

func TestReadTransactionsMissingFile(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "nope.csv")).ReadTransactions(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestParseEmptyInput(t *testing.T) {
	table, err := Parse(context.Background(), strings.NewReader(""))
	require.NoError(t, err)
	assert.Zero(t, table.Len())
}

func TestParseHeaderOnly(t *testing.T) {
	table, err := Parse(context.Background(), strings.NewReader("date,item_type,received_by,transaction_type\n"))
	require.NoError(t, err)
	assert.Zero(t, table.Len())
}

func TestParseMissingColumns(t *testing.T) {
	_, err := Parse(context.Background(), strings.NewReader("date,item_type\n1/1/2023,A\n"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, sources.ErrMissingColumns))
}

func TestParseRaggedRows(t *testing.T) {
	in := "date,item_type,received_by,transaction_type\n1/1/2023,A\n1/2/2023,B,Mrs.,Cash,extra\n"
	table, err := Parse(context.Background(), strings.NewReader(in))
	require.NoError(t, err)
	rows := table.Rows()
	require.Len(t, rows, 2)
	assert.Empty(t, rows[0].ReceivedBy)
	assert.Equal(t, "Cash", rows[1].TransactionType)
}
