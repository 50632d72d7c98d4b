package table

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStartOfTableOnEmptyTreeIsEndOfTable(t *testing.T) {
	tbl, err := Open(newTempDBPath(t))
	require.NoError(t, err)
	defer tbl.Close()

	c, err := tbl.tree.startOfTable()
	require.NoError(t, err)
	require.True(t, c.endOfTable)
}

func TestAdvanceCrossesLeafBoundary(t *testing.T) {
	tbl, err := Open(newTempDBPath(t))
	require.NoError(t, err)
	defer tbl.Close()

	for i := 1; i <= LeafNodeMaxCells+1; i++ {
		require.NoError(t, tbl.InsertRow(Row{ID: uint32(i), Username: "u", Email: "e@x.com"}))
	}

	c, err := tbl.tree.startOfTable()
	require.NoError(t, err)

	firstPage := c.pageNum
	seen := 0
	for !c.endOfTable {
		seen++
		require.NoError(t, tbl.tree.advance(c))
	}
	require.Equal(t, LeafNodeMaxCells+1, seen)
	require.NotEqual(t, firstPage, c.pageNum)
}
