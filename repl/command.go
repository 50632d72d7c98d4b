package repl

import (
	"fmt"
	"os"

	"bplusdb/table"
)

type metaCommandResult int

const (
	metaCommandSuccess metaCommandResult = iota
	metaCommandExit
	metaCommandUnrecognized
)

// handleMetaCommand dispatches a leading-dot command. Unlike a regular
// statement, a meta-command runs immediately and never touches the tree
// through the insert/select path.
func handleMetaCommand(tbl *table.Table, line string) metaCommandResult {
	switch line {
	case ".exit":
		return metaCommandExit
	case ".constants":
		fmt.Print(table.Constants())
		return metaCommandSuccess
	case ".btree":
		if err := tbl.PrintTree(os.Stdout); err != nil {
			fmt.Println(err.Error())
		}
		return metaCommandSuccess
	default:
		return metaCommandUnrecognized
	}
}
