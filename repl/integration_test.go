package repl

import (
	"io"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// runScript drives run (the readline-backed loop, not just its
// sub-parts) with commands piped in non-interactively, the same way
// original_source/test_db.py feeds the reference implementation, and
// returns everything written to stdout.
func runScript(t *testing.T, dbPath string, commands []string) string {
	t.Helper()
	input := strings.Join(commands, "\n") + "\n"

	return captureStdout(t, func() {
		require.NoError(t, run(dbPath, io.NopCloser(strings.NewReader(input))))
	})
}

func TestScriptInsertThenSelect(t *testing.T) {
	out := runScript(t, newTempDBPath(t), []string{
		"insert 1 user1 person1@example.com",
		"select",
		".exit",
	})
	require.Equal(t, "db > Executed.\ndb > (1, user1, person1@example.com)\nExecuted.\ndb > ", out)
}

func TestScriptBtreeAfterThreeOutOfOrderInserts(t *testing.T) {
	out := runScript(t, newTempDBPath(t), []string{
		"insert 3 user3 person3@example.com",
		"insert 1 user1 person1@example.com",
		"insert 2 user2 person2@example.com",
		".btree",
		".exit",
	})
	require.Equal(t,
		"db > Executed.\n"+
			"db > Executed.\n"+
			"db > Executed.\n"+
			"db > - leaf (size 3)\n"+
			"  - 1\n"+
			"  - 2\n"+
			"  - 3\n"+
			"db > ",
		out)
}

func TestScriptBtreeAfterFourteenInsertsSplitsRoot(t *testing.T) {
	var commands []string
	for i := 1; i <= 14; i++ {
		commands = append(commands, insertCommand(i))
	}
	commands = append(commands, ".btree", ".exit")

	out := runScript(t, newTempDBPath(t), commands)

	var want strings.Builder
	for range commands[:14] {
		want.WriteString("db > Executed.\n")
	}
	want.WriteString("db > - internal (size 1)\n")
	want.WriteString("  - leaf (size 7)\n")
	for i := 1; i <= 7; i++ {
		want.WriteString("    - ")
		want.WriteString(strconv.Itoa(i))
		want.WriteString("\n")
	}
	want.WriteString("  - key 7\n")
	want.WriteString("  - leaf (size 7)\n")
	for i := 8; i <= 14; i++ {
		want.WriteString("    - ")
		want.WriteString(strconv.Itoa(i))
		want.WriteString("\n")
	}
	want.WriteString("db > ")

	require.Equal(t, want.String(), out)
}

func TestScriptDuplicateKeyThenSelectListsOnce(t *testing.T) {
	out := runScript(t, newTempDBPath(t), []string{
		"insert 1 user1 person1@example.com",
		"insert 1 user1 person1@example.com",
		"select",
		".exit",
	})
	require.Equal(t,
		"db > Executed.\n"+
			"db > Error: Duplicate key.\n"+
			"db > (1, user1, person1@example.com)\n"+
			"Executed.\n"+
			"db > ",
		out)
}

func TestScriptPersistsAcrossReopen(t *testing.T) {
	path := newTempDBPath(t)

	var insertCommands []string
	for i := 1; i <= 15; i++ {
		insertCommands = append(insertCommands, insertCommand(i))
	}
	insertCommands = append(insertCommands, ".exit")
	runScript(t, path, insertCommands)

	out := runScript(t, path, []string{"select", ".exit"})

	var want strings.Builder
	want.WriteString("db > ")
	for i := 1; i <= 15; i++ {
		want.WriteString("(")
		want.WriteString(strconv.Itoa(i))
		want.WriteString(", user")
		want.WriteString(strconv.Itoa(i))
		want.WriteString(", person")
		want.WriteString(strconv.Itoa(i))
		want.WriteString("@example.com)\n")
	}
	want.WriteString("Executed.\n")
	want.WriteString("db > ")

	require.Equal(t, want.String(), out)
}

func TestScriptConstants(t *testing.T) {
	out := runScript(t, newTempDBPath(t), []string{".constants", ".exit"})
	require.Equal(t,
		"db > ROW_SIZE: 293\n"+
			"COMMON_NODE_HEADER_SIZE: 6\n"+
			"LEAF_NODE_HEADER_SIZE: 14\n"+
			"LEAF_NODE_CELL_SIZE: 297\n"+
			"LEAF_NODE_SPACE_FOR_CELLS: 4082\n"+
			"LEAF_NODE_MAX_CELLS: 13\n"+
			"db > ",
		out)
}

func insertCommand(i int) string {
	n := strconv.Itoa(i)
	return "insert " + n + " user" + n + " person" + n + "@example.com"
}
