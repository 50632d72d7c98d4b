package table

import (
	"io"

	"bplusdb/pager"
)

// Table is the single fixed-schema table a database file holds: a
// pager plus the B+-tree layered over it. Page 0 always holds the
// tree's root, created fresh the first time a new file is opened.
type Table struct {
	Pager *pager.Pager
	tree  *BTree
}

// Open opens (or creates) the database file at path and prepares its
// table for use.
func Open(path string) (*Table, error) {
	p, err := pager.Open(path)
	if err != nil {
		return nil, err
	}
	if p.NumPages() == 0 {
		_, root, err := p.Allocate()
		if err != nil {
			return nil, err
		}
		initializeLeafNode(root, true)
	}
	return &Table{Pager: p, tree: newBTree(p)}, nil
}

// Close flushes every resident page and closes the underlying file.
func (t *Table) Close() error {
	return t.Pager.Close()
}

// InsertRow adds row to the table's tree, keyed by row.ID. The caller
// is responsible for validating row beforehand (positive id, field
// lengths): InsertRow only reports a duplicate key.
func (t *Table) InsertRow(row Row) error {
	return t.tree.Insert(row)
}

// ScanAll visits every row in ascending id order via emit. Scanning
// stops at the first error emit returns.
func (t *Table) ScanAll(emit func(Row) error) error {
	c, err := t.tree.startOfTable()
	if err != nil {
		return err
	}
	for !c.endOfTable {
		row, err := t.tree.cursorValue(c)
		if err != nil {
			return err
		}
		if err := emit(row); err != nil {
			return err
		}
		if err := t.tree.advance(c); err != nil {
			return err
		}
	}
	return nil
}

// PrintTree writes the `.btree` diagnostic dump to w.
func (t *Table) PrintTree(w io.Writer) error {
	return t.tree.Print(w)
}
