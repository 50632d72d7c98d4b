package table

// cursor walks the leaf chain in key order, independent of tree depth.
// It is the only way rows are read back out: ScanAll drives one from
// the first leaf to the last via next_leaf pointers.
type cursor struct {
	pageNum    uint32
	cellNum    uint32
	endOfTable bool
}

func (t *BTree) startOfTable() (*cursor, error) {
	pageNum := uint32(rootPageNum)
	for {
		pg, err := t.pager.GetPage(pageNum)
		if err != nil {
			return nil, err
		}
		if getNodeType(pg) == nodeTypeLeaf {
			return &cursor{
				pageNum:    pageNum,
				cellNum:    0,
				endOfTable: getLeafNumCells(pg) == 0,
			}, nil
		}
		pageNum = childAt(pg, 0)
	}
}

func (t *BTree) cursorValue(c *cursor) (Row, error) {
	pg, err := t.pager.GetPage(c.pageNum)
	if err != nil {
		return Row{}, err
	}
	return Deserialize(leafCellValue(pg, c.cellNum)), nil
}

// advance moves the cursor to the next cell, crossing into the
// linked-list sibling leaf when the current one is exhausted.
func (t *BTree) advance(c *cursor) error {
	pg, err := t.pager.GetPage(c.pageNum)
	if err != nil {
		return err
	}
	c.cellNum++
	if c.cellNum < getLeafNumCells(pg) {
		return nil
	}
	next := getLeafNextLeaf(pg)
	if next == 0 {
		c.endOfTable = true
		return nil
	}
	c.pageNum = next
	c.cellNum = 0
	return nil
}
