package table

import (
	"fmt"
	"io"
	"strings"
)

// Print writes a recursive tree dump to w in the format of the
// `.btree` meta-command: each leaf prints its size and keys, each
// internal node prints its size, children and separators in order, one
// extra two-space indent per level of depth.
func (t *BTree) Print(w io.Writer) error {
	return t.printNode(w, rootPageNum, 0)
}

func (t *BTree) printNode(w io.Writer, pageNum uint32, depth int) error {
	pg, err := t.pager.GetPage(pageNum)
	if err != nil {
		return err
	}
	indent := strings.Repeat("  ", depth)

	if getNodeType(pg) == nodeTypeLeaf {
		n := getLeafNumCells(pg)
		fmt.Fprintf(w, "%s- leaf (size %d)\n", indent, n)
		for i := uint32(0); i < n; i++ {
			fmt.Fprintf(w, "%s  - %d\n", indent, getLeafCellKey(pg, i))
		}
		return nil
	}

	n := getInternalNumKeys(pg)
	fmt.Fprintf(w, "%s- internal (size %d)\n", indent, n)
	for i := uint32(0); i < n; i++ {
		if err := t.printNode(w, getInternalCellChild(pg, i), depth+1); err != nil {
			return err
		}
		fmt.Fprintf(w, "%s  - key %d\n", indent, getInternalCellKey(pg, i))
	}
	return t.printNode(w, getInternalRightChild(pg), depth+1)
}
