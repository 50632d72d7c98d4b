package table

import (
	"encoding/binary"

	"bplusdb/pager"
)

// Node type tags, stored in the first byte of every page.
const (
	nodeTypeInternal byte = 0
	nodeTypeLeaf     byte = 1
)

// Common node header: every page, leaf or internal, starts with these
// three fields.
const (
	nodeTypeOffset      = 0
	isRootOffset        = nodeTypeOffset + 1
	parentPointerOffset = isRootOffset + 1
	// CommonNodeHeaderSize is the byte width of the header shared by
	// leaf and internal nodes.
	CommonNodeHeaderSize = parentPointerOffset + 4
)

// Leaf node header and body layout.
const (
	leafNumCellsOffset = CommonNodeHeaderSize
	leafNextLeafOffset = leafNumCellsOffset + 4
	// LeafNodeHeaderSize is the common header plus num_cells and next_leaf.
	LeafNodeHeaderSize = leafNextLeafOffset + 4

	LeafNodeKeySize   = 4
	LeafNodeValueSize = RowSize
	// LeafNodeCellSize is one (key, row) cell.
	LeafNodeCellSize = LeafNodeKeySize + LeafNodeValueSize
	// LeafNodeSpaceForCells is the body space left after the header.
	LeafNodeSpaceForCells = pager.PageSize - LeafNodeHeaderSize
	// LeafNodeMaxCells is how many cells fit in one leaf page.
	LeafNodeMaxCells = LeafNodeSpaceForCells / LeafNodeCellSize

	// LeafNodeLeftSplitCount and LeafNodeRightSplitCount partition the
	// LeafNodeMaxCells+1 cells present at a leaf split: the lower half
	// stays, the upper half moves to the new sibling.
	LeafNodeLeftSplitCount  = (LeafNodeMaxCells + 1) / 2
	LeafNodeRightSplitCount = (LeafNodeMaxCells + 1) - LeafNodeLeftSplitCount
)

// Internal node header and body layout.
const (
	internalNumKeysOffset    = CommonNodeHeaderSize
	internalRightChildOffset = internalNumKeysOffset + 4
	// InternalNodeHeaderSize is the common header plus num_keys and right_child_ptr.
	InternalNodeHeaderSize = internalRightChildOffset + 4

	InternalNodeChildSize = 4
	InternalNodeKeySize   = 4
	// InternalNodeCellSize is one (child_ptr, key) separator cell.
	InternalNodeCellSize      = InternalNodeChildSize + InternalNodeKeySize
	internalNodeSpaceForCells = pager.PageSize - InternalNodeHeaderSize
)

// internalNodeMaxCells is a var, not a const, so tests can shrink it to
// exercise internal-node splitting without inserting hundreds of keys.
var internalNodeMaxCells = internalNodeSpaceForCells / InternalNodeCellSize

// SetInternalNodeMaxCellsForTest overrides the internal-node fanout for
// the duration of a test and returns a function that restores it.
func SetInternalNodeMaxCellsForTest(n int) (restore func()) {
	prev := internalNodeMaxCells
	internalNodeMaxCells = n
	return func() { internalNodeMaxCells = prev }
}

func getNodeType(p *pager.Page) byte { return p.Data[nodeTypeOffset] }
func setNodeType(p *pager.Page, t byte) {
	p.Data[nodeTypeOffset] = t
	p.Dirty = true
}

func getIsRoot(p *pager.Page) bool { return p.Data[isRootOffset] != 0 }
func setIsRoot(p *pager.Page, v bool) {
	if v {
		p.Data[isRootOffset] = 1
	} else {
		p.Data[isRootOffset] = 0
	}
	p.Dirty = true
}

func getParentPointer(p *pager.Page) uint32 {
	return binary.LittleEndian.Uint32(p.Data[parentPointerOffset : parentPointerOffset+4])
}
func setParentPointer(p *pager.Page, v uint32) {
	binary.LittleEndian.PutUint32(p.Data[parentPointerOffset:parentPointerOffset+4], v)
	p.Dirty = true
}

func getLeafNumCells(p *pager.Page) uint32 {
	return binary.LittleEndian.Uint32(p.Data[leafNumCellsOffset : leafNumCellsOffset+4])
}
func setLeafNumCells(p *pager.Page, v uint32) {
	binary.LittleEndian.PutUint32(p.Data[leafNumCellsOffset:leafNumCellsOffset+4], v)
	p.Dirty = true
}

func getLeafNextLeaf(p *pager.Page) uint32 {
	return binary.LittleEndian.Uint32(p.Data[leafNextLeafOffset : leafNextLeafOffset+4])
}
func setLeafNextLeaf(p *pager.Page, v uint32) {
	binary.LittleEndian.PutUint32(p.Data[leafNextLeafOffset:leafNextLeafOffset+4], v)
	p.Dirty = true
}

func leafCellOffset(i uint32) int {
	return LeafNodeHeaderSize + int(i)*LeafNodeCellSize
}

func getLeafCellKey(p *pager.Page, i uint32) uint32 {
	off := leafCellOffset(i)
	return binary.LittleEndian.Uint32(p.Data[off : off+4])
}
func setLeafCellKey(p *pager.Page, i uint32, key uint32) {
	off := leafCellOffset(i)
	binary.LittleEndian.PutUint32(p.Data[off:off+4], key)
	p.Dirty = true
}

func leafCellValue(p *pager.Page, i uint32) []byte {
	off := leafCellOffset(i) + LeafNodeKeySize
	return p.Data[off : off+LeafNodeValueSize]
}

// copyLeafCell copies cell src of page srcP to cell dst of page dstP.
func copyLeafCell(dstP *pager.Page, dst uint32, srcP *pager.Page, src uint32) {
	dOff := leafCellOffset(dst)
	sOff := leafCellOffset(src)
	copy(dstP.Data[dOff:dOff+LeafNodeCellSize], srcP.Data[sOff:sOff+LeafNodeCellSize])
	dstP.Dirty = true
}

func initializeLeafNode(p *pager.Page, isRoot bool) {
	setNodeType(p, nodeTypeLeaf)
	setIsRoot(p, isRoot)
	setLeafNumCells(p, 0)
	setLeafNextLeaf(p, 0)
}

func getInternalNumKeys(p *pager.Page) uint32 {
	return binary.LittleEndian.Uint32(p.Data[internalNumKeysOffset : internalNumKeysOffset+4])
}
func setInternalNumKeys(p *pager.Page, v uint32) {
	binary.LittleEndian.PutUint32(p.Data[internalNumKeysOffset:internalNumKeysOffset+4], v)
	p.Dirty = true
}

func getInternalRightChild(p *pager.Page) uint32 {
	return binary.LittleEndian.Uint32(p.Data[internalRightChildOffset : internalRightChildOffset+4])
}
func setInternalRightChild(p *pager.Page, v uint32) {
	binary.LittleEndian.PutUint32(p.Data[internalRightChildOffset:internalRightChildOffset+4], v)
	p.Dirty = true
}

func internalCellOffset(i uint32) int {
	return InternalNodeHeaderSize + int(i)*InternalNodeCellSize
}

func getInternalCellChild(p *pager.Page, i uint32) uint32 {
	off := internalCellOffset(i)
	return binary.LittleEndian.Uint32(p.Data[off : off+4])
}
func setInternalCellChild(p *pager.Page, i uint32, v uint32) {
	off := internalCellOffset(i)
	binary.LittleEndian.PutUint32(p.Data[off:off+4], v)
	p.Dirty = true
}

func getInternalCellKey(p *pager.Page, i uint32) uint32 {
	off := internalCellOffset(i) + InternalNodeChildSize
	return binary.LittleEndian.Uint32(p.Data[off : off+4])
}
func setInternalCellKey(p *pager.Page, i uint32, key uint32) {
	off := internalCellOffset(i) + InternalNodeChildSize
	binary.LittleEndian.PutUint32(p.Data[off:off+4], key)
	p.Dirty = true
}

// childAt returns the i-th child pointer of an internal node, where
// i == num_keys addresses the distinguished right child.
func childAt(p *pager.Page, i uint32) uint32 {
	if i == getInternalNumKeys(p) {
		return getInternalRightChild(p)
	}
	return getInternalCellChild(p, i)
}

func initializeInternalNode(p *pager.Page, isRoot bool) {
	setNodeType(p, nodeTypeInternal)
	setIsRoot(p, isRoot)
	setInternalNumKeys(p, 0)
	setInternalRightChild(p, 0)
}
