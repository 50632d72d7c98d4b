package repl

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"bplusdb/table"
)

func newTempDBPath(t *testing.T) string {
	t.Helper()
	f, err := os.CreateTemp("", "bplusdb-repl-test-*.db")
	require.NoError(t, err)
	path := f.Name()
	require.NoError(t, f.Close())
	t.Cleanup(func() { os.Remove(path) })
	return path
}

func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	r, w, err := os.Pipe()
	require.NoError(t, err)
	orig := os.Stdout
	os.Stdout = w
	defer func() { os.Stdout = orig }()

	fn()

	require.NoError(t, w.Close())
	buf := make([]byte, 64*1024)
	n, _ := r.Read(buf)
	return string(buf[:n])
}

func TestExecuteInsertThenSelectGoldenFormat(t *testing.T) {
	tbl, err := table.Open(newTempDBPath(t))
	require.NoError(t, err)
	defer tbl.Close()

	stmt, result := prepareStatement("insert 1 user1 person1@example.com")
	require.Equal(t, prepareSuccess, result)

	out := captureStdout(t, func() {
		require.NoError(t, execute(tbl, stmt))
	})
	require.Equal(t, "", out)

	selectStmt, result := prepareStatement("select")
	require.Equal(t, prepareSuccess, result)

	out = captureStdout(t, func() {
		require.NoError(t, execute(tbl, selectStmt))
	})
	require.Equal(t, "(1, user1, person1@example.com)\n", out)
}

func TestExecuteInsertDuplicateKeyReportsCanonicalMessage(t *testing.T) {
	tbl, err := table.Open(newTempDBPath(t))
	require.NoError(t, err)
	defer tbl.Close()

	stmt, _ := prepareStatement("insert 1 user1 person1@example.com")
	require.NoError(t, execute(tbl, stmt))

	err = execute(tbl, stmt)
	require.Error(t, err)
	require.Equal(t, "Error: Duplicate key.", canonicalError(err).Error())
}

func TestHandleMetaCommandExit(t *testing.T) {
	tbl, err := table.Open(newTempDBPath(t))
	require.NoError(t, err)
	defer tbl.Close()

	require.Equal(t, metaCommandExit, handleMetaCommand(tbl, ".exit"))
}

func TestHandleMetaCommandConstants(t *testing.T) {
	tbl, err := table.Open(newTempDBPath(t))
	require.NoError(t, err)
	defer tbl.Close()

	out := captureStdout(t, func() {
		require.Equal(t, metaCommandSuccess, handleMetaCommand(tbl, ".constants"))
	})
	require.Contains(t, out, "ROW_SIZE: 293")
}

func TestHandleMetaCommandBtree(t *testing.T) {
	tbl, err := table.Open(newTempDBPath(t))
	require.NoError(t, err)
	defer tbl.Close()
	require.NoError(t, tbl.InsertRow(table.Row{ID: 1, Username: "u", Email: "e@x.com"}))

	out := captureStdout(t, func() {
		require.Equal(t, metaCommandSuccess, handleMetaCommand(tbl, ".btree"))
	})
	require.Equal(t, "- leaf (size 1)\n  - 1\n", out)
}

func TestHandleMetaCommandUnrecognized(t *testing.T) {
	tbl, err := table.Open(newTempDBPath(t))
	require.NoError(t, err)
	defer tbl.Close()

	require.Equal(t, metaCommandUnrecognized, handleMetaCommand(tbl, ".frobnicate"))
}
