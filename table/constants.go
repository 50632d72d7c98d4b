package table

import "fmt"

// Constants renders the node-layout constants reported by the
// `.constants` meta-command.
func Constants() string {
	return fmt.Sprintf(
		"ROW_SIZE: %d\nCOMMON_NODE_HEADER_SIZE: %d\nLEAF_NODE_HEADER_SIZE: %d\nLEAF_NODE_CELL_SIZE: %d\nLEAF_NODE_SPACE_FOR_CELLS: %d\nLEAF_NODE_MAX_CELLS: %d\n",
		RowSize, CommonNodeHeaderSize, LeafNodeHeaderSize, LeafNodeCellSize, LeafNodeSpaceForCells, LeafNodeMaxCells,
	)
}
