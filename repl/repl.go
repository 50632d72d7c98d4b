// Package repl implements the line-oriented command interface: a
// prompt, meta-commands (leading dot) handled immediately, and
// insert/select statements validated, executed against a table, and
// reported on in the exact transcript format the tests rely on.
package repl

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/chzyer/readline"

	"bplusdb/pager"
	"bplusdb/table"
)

const prompt = "db > "

// Run opens the database file at path and serves the REPL against it,
// reading from stdin, until .exit is entered or input is exhausted.
func Run(path string) error {
	return run(path, os.Stdin)
}

// run is Run with its input source injected, so tests can drive the
// exact readline-backed loop with piped (non-terminal) input instead
// of exercising the compiled binary as a subprocess.
func run(path string, stdin io.ReadCloser) error {
	tbl, err := table.Open(path)
	if err != nil {
		return fmt.Errorf("repl: open %s: %w", path, err)
	}
	defer func() {
		if err := tbl.Close(); err != nil {
			slog.Default().Error("closing table", "error", err)
		}
	}()

	rl, err := readline.NewEx(&readline.Config{
		Prompt:                 prompt,
		Stdin:                  stdin,
		DisableAutoSaveHistory: true,
	})
	if err != nil {
		return fmt.Errorf("repl: init readline: %w", err)
	}
	defer rl.Close()

	for {
		line, err := rl.Readline()
		if err != nil {
			return nil
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, ".") {
			switch handleMetaCommand(tbl, line) {
			case metaCommandExit:
				return nil
			case metaCommandUnrecognized:
				fmt.Printf("Unrecognized command '%s'.\n", line)
			}
			continue
		}

		stmt, result := prepareStatement(line)
		switch result {
		case prepareUnrecognizedStatement:
			fmt.Printf("Unrecognized keyword at start of '%s'.\n", line)
			continue
		case prepareSyntaxError:
			fmt.Println("Syntax error.")
			continue
		case prepareNegativeID:
			fmt.Println(table.ErrIDNotPositive.Error())
			continue
		case prepareStringTooLong:
			fmt.Println(table.ErrStringTooLong.Error())
			continue
		}

		if err := execute(tbl, stmt); err != nil {
			fmt.Println(canonicalError(err).Error())
			continue
		}
		fmt.Println("Executed.")
	}
}

func execute(tbl *table.Table, stmt statement) error {
	switch stmt.kind {
	case statementInsert:
		return tbl.InsertRow(stmt.row)
	case statementSelect:
		return tbl.ScanAll(func(r table.Row) error {
			fmt.Printf("(%d, %s, %s)\n", r.ID, r.Username, r.Email)
			return nil
		})
	}
	return nil
}

// canonicalError strips the pager's context wrapping off an error so
// the REPL prints the bare golden message rather than an internal
// trace.
func canonicalError(err error) error {
	switch {
	case errors.Is(err, table.ErrDuplicateKey):
		return table.ErrDuplicateKey
	case errors.Is(err, pager.ErrTableFull):
		return pager.ErrTableFull
	default:
		return err
	}
}
