// Package table implements the B+-tree storage engine: node layout,
// search/insert/split, the ordered cursor, and the row codec, all
// layered over a pager.Pager. The tree's root always lives at page 0.
package table

import (
	"errors"
	"fmt"
	"log/slog"

	"bplusdb/pager"
)

// rootPageNum is the page number of the tree's root for the life of
// the table. It never changes, even across root splits: a root split
// allocates a new page to hold the root's old contents and rewrites
// page 0 in place as the new internal root.
const rootPageNum = 0

// ErrDuplicateKey is returned when inserting an id already present in
// the tree.
var ErrDuplicateKey = errors.New("Error: Duplicate key.")

// BTree is the search/insert/split machinery over a pager. It has no
// state of its own beyond the pager: the root page number is fixed.
type BTree struct {
	pager *pager.Pager
	log   *slog.Logger
}

func newBTree(p *pager.Pager) *BTree {
	return &BTree{pager: p, log: slog.Default()}
}

// Insert adds key/row into the tree, splitting and promoting up to
// (and including) the root as needed. Returns ErrDuplicateKey if the
// id is already present.
func (t *BTree) Insert(row Row) error {
	key := row.ID

	leafPage, idx, err := t.find(key)
	if err != nil {
		return err
	}

	pg, err := t.pager.GetPage(leafPage)
	if err != nil {
		return err
	}
	if idx < getLeafNumCells(pg) && getLeafCellKey(pg, idx) == key {
		return ErrDuplicateKey
	}

	var rowBytes [RowSize]byte
	Serialize(row, rowBytes[:])
	return t.insertIntoLeaf(leafPage, idx, key, rowBytes)
}

// find descends from the root to the leaf that should contain key,
// returning that leaf's page number and the cell index key belongs at
// (whether or not it is already present).
func (t *BTree) find(key uint32) (leafPage uint32, idx uint32, err error) {
	leafPage, err = t.findLeaf(key)
	if err != nil {
		return 0, 0, err
	}
	pg, err := t.pager.GetPage(leafPage)
	if err != nil {
		return 0, 0, err
	}
	idx = leafFindIndex(pg, key)
	return leafPage, idx, nil
}

func (t *BTree) findLeaf(key uint32) (uint32, error) {
	pageNum := uint32(rootPageNum)
	for {
		pg, err := t.pager.GetPage(pageNum)
		if err != nil {
			return 0, err
		}
		if getNodeType(pg) == nodeTypeLeaf {
			return pageNum, nil
		}
		pageNum = t.internalChildForKey(pg, key)
	}
}

// internalChildForKey picks the child subtree that may contain key:
// the smallest-indexed child whose separator is >= key, or the right
// child if key exceeds every separator.
func (t *BTree) internalChildForKey(pg *pager.Page, key uint32) uint32 {
	numKeys := getInternalNumKeys(pg)
	lo, hi := uint32(0), numKeys
	for lo < hi {
		mid := (lo + hi) / 2
		if key <= getInternalCellKey(pg, mid) {
			hi = mid
		} else {
			lo = mid + 1
		}
	}
	if lo == numKeys {
		return getInternalRightChild(pg)
	}
	return getInternalCellChild(pg, lo)
}

// leafFindIndex returns the smallest cell index i such that
// cells[i].key >= key (the insertion point, or the index of key if
// already present).
func leafFindIndex(pg *pager.Page, key uint32) uint32 {
	numCells := getLeafNumCells(pg)
	lo, hi := uint32(0), numCells
	for lo < hi {
		mid := (lo + hi) / 2
		if key <= getLeafCellKey(pg, mid) {
			hi = mid
		} else {
			lo = mid + 1
		}
	}
	return lo
}

// insertIntoLeaf writes (key, rowBytes) into leafPage at cell idx,
// shifting existing cells right, or splits the leaf if it is already
// full.
func (t *BTree) insertIntoLeaf(leafPage uint32, idx uint32, key uint32, rowBytes [RowSize]byte) error {
	pg, err := t.pager.GetPage(leafPage)
	if err != nil {
		return err
	}
	numCells := getLeafNumCells(pg)

	if numCells < LeafNodeMaxCells {
		for i := numCells; i > idx; i-- {
			copyLeafCell(pg, i, pg, i-1)
		}
		setLeafCellKey(pg, idx, key)
		copy(leafCellValue(pg, idx), rowBytes[:])
		setLeafNumCells(pg, numCells+1)
		return nil
	}
	return t.splitLeafAndInsert(leafPage, idx, key, rowBytes)
}

type leafCellData struct {
	key uint32
	val [RowSize]byte
}

// splitLeafAndInsert splits a full leaf (LeafNodeMaxCells cells) plus
// the incoming cell (LeafNodeMaxCells+1 total) into two leaves of
// LeafNodeLeftSplitCount/LeafNodeRightSplitCount cells each, then
// propagates the split to the parent (or builds a new root).
func (t *BTree) splitLeafAndInsert(oldPage uint32, idx uint32, key uint32, rowBytes [RowSize]byte) error {
	old, err := t.pager.GetPage(oldPage)
	if err != nil {
		return err
	}

	oldWasRoot := getIsRoot(old)
	oldParent := getParentPointer(old)
	oldNextLeaf := getLeafNextLeaf(old)

	total := LeafNodeMaxCells + 1
	merged := make([]leafCellData, total)
	for d := 0; d < total; d++ {
		switch {
		case uint32(d) < idx:
			merged[d].key = getLeafCellKey(old, uint32(d))
			copy(merged[d].val[:], leafCellValue(old, uint32(d)))
		case uint32(d) == idx:
			merged[d] = leafCellData{key: key, val: rowBytes}
		default:
			src := uint32(d - 1)
			merged[d].key = getLeafCellKey(old, src)
			copy(merged[d].val[:], leafCellValue(old, src))
		}
	}

	newPage, newPg, err := t.pager.Allocate()
	if err != nil {
		return err
	}
	initializeLeafNode(newPg, false)

	for d := 0; d < LeafNodeLeftSplitCount; d++ {
		setLeafCellKey(old, uint32(d), merged[d].key)
		copy(leafCellValue(old, uint32(d)), merged[d].val[:])
	}
	setLeafNumCells(old, LeafNodeLeftSplitCount)

	for d := 0; d < LeafNodeRightSplitCount; d++ {
		gd := LeafNodeLeftSplitCount + d
		setLeafCellKey(newPg, uint32(d), merged[gd].key)
		copy(leafCellValue(newPg, uint32(d)), merged[gd].val[:])
	}
	setLeafNumCells(newPg, LeafNodeRightSplitCount)

	setLeafNextLeaf(newPg, oldNextLeaf)
	setLeafNextLeaf(old, newPage)
	setParentPointer(newPg, oldParent)

	newMaxOfOld := getLeafCellKey(old, LeafNodeLeftSplitCount-1)
	newMaxOfSibling := getLeafCellKey(newPg, LeafNodeRightSplitCount-1)

	t.log.Debug("leaf split", "old_page", oldPage, "new_page", newPage, "was_root", oldWasRoot)

	if oldWasRoot {
		return t.splitRoot(oldPage, newPage, newMaxOfOld)
	}

	if err := t.updateChildKey(oldParent, oldPage, newMaxOfOld); err != nil {
		return err
	}
	return t.internalInsert(oldParent, newPage, newMaxOfSibling)
}

// updateChildKey rewrites the separator that parentPage records for
// childPage, if any. If childPage is currently parent's right child,
// there is no separator to rewrite.
func (t *BTree) updateChildKey(parentPage uint32, childPage uint32, newKey uint32) error {
	parent, err := t.pager.GetPage(parentPage)
	if err != nil {
		return err
	}
	numKeys := getInternalNumKeys(parent)
	for i := uint32(0); i < numKeys; i++ {
		if getInternalCellChild(parent, i) == childPage {
			setInternalCellKey(parent, i, newKey)
			return nil
		}
	}
	return nil
}

// internalInsert splices a new (child, maxKey) separator into parent,
// promoting the former right child to a regular separator if the new
// child becomes the new rightmost subtree. Splits parent in turn if
// it overflows.
func (t *BTree) internalInsert(parentPage uint32, newChildPage uint32, newChildMaxKey uint32) error {
	parent, err := t.pager.GetPage(parentPage)
	if err != nil {
		return err
	}

	rightChild := getInternalRightChild(parent)
	rightChildMax, err := t.maxKey(rightChild)
	if err != nil {
		return err
	}

	numKeys := getInternalNumKeys(parent)

	if newChildMaxKey > rightChildMax {
		setInternalCellChild(parent, numKeys, rightChild)
		setInternalCellKey(parent, numKeys, rightChildMax)
		setInternalRightChild(parent, newChildPage)
	} else {
		idx := uint32(0)
		for idx < numKeys && getInternalCellKey(parent, idx) < newChildMaxKey {
			idx++
		}
		for i := numKeys; i > idx; i-- {
			setInternalCellChild(parent, i, getInternalCellChild(parent, i-1))
			setInternalCellKey(parent, i, getInternalCellKey(parent, i-1))
		}
		setInternalCellChild(parent, idx, newChildPage)
		setInternalCellKey(parent, idx, newChildMaxKey)
	}
	numKeys++
	setInternalNumKeys(parent, numKeys)

	if int(numKeys) > internalNodeMaxCells {
		return t.splitInternal(parentPage)
	}
	return nil
}

// splitInternal splits an overflowing internal node: the median
// separator promotes to the node's parent (or a new root), the lower
// half of cells stays, and the upper half moves to a new sibling.
// Every child that moves to the sibling is re-parented to it.
func (t *BTree) splitInternal(nodePage uint32) error {
	node, err := t.pager.GetPage(nodePage)
	if err != nil {
		return err
	}

	numKeys := getInternalNumKeys(node)
	nodeWasRoot := getIsRoot(node)
	nodeParent := getParentPointer(node)
	oldRightChild := getInternalRightChild(node)

	mid := numKeys / 2
	medianChild := getInternalCellChild(node, mid)
	medianKey := getInternalCellKey(node, mid)

	siblingPage, siblingPg, err := t.pager.Allocate()
	if err != nil {
		return err
	}
	initializeInternalNode(siblingPg, false)
	setParentPointer(siblingPg, nodeParent)

	for i := mid + 1; i < numKeys; i++ {
		d := i - (mid + 1)
		setInternalCellChild(siblingPg, d, getInternalCellChild(node, i))
		setInternalCellKey(siblingPg, d, getInternalCellKey(node, i))
	}
	setInternalNumKeys(siblingPg, numKeys-(mid+1))
	setInternalRightChild(siblingPg, oldRightChild)

	for i := uint32(0); i < getInternalNumKeys(siblingPg); i++ {
		if err := t.setChildParent(getInternalCellChild(siblingPg, i), siblingPage); err != nil {
			return err
		}
	}
	if err := t.setChildParent(oldRightChild, siblingPage); err != nil {
		return err
	}

	setInternalNumKeys(node, mid)
	setInternalRightChild(node, medianChild)
	if err := t.setChildParent(medianChild, nodePage); err != nil {
		return err
	}

	t.log.Debug("internal split", "node_page", nodePage, "sibling_page", siblingPage, "was_root", nodeWasRoot)

	if nodeWasRoot {
		return t.splitRoot(nodePage, siblingPage, medianKey)
	}

	newNodeMax, err := t.maxKey(nodePage)
	if err != nil {
		return err
	}
	if err := t.updateChildKey(nodeParent, nodePage, newNodeMax); err != nil {
		return err
	}
	siblingMax, err := t.maxKey(siblingPage)
	if err != nil {
		return err
	}
	return t.internalInsert(nodeParent, siblingPage, siblingMax)
}

func (t *BTree) setChildParent(childPage uint32, parentPage uint32) error {
	pg, err := t.pager.GetPage(childPage)
	if err != nil {
		return err
	}
	setParentPointer(pg, parentPage)
	return nil
}

// splitRoot increases tree height by one: it moves the root's current
// contents (whichever page they occupy logically is always page 0) to
// a freshly allocated page, then reinitializes page 0 as a new
// internal root with one separator over the relocated left child and
// the already-split-off right child.
func (t *BTree) splitRoot(rootPage uint32, rightChildPage uint32, separatorKey uint32) error {
	if rootPage != rootPageNum {
		return fmt.Errorf("splitRoot: called on non-root page %d", rootPage)
	}

	root, err := t.pager.GetPage(rootPage)
	if err != nil {
		return err
	}

	leftPage, leftPg, err := t.pager.Allocate()
	if err != nil {
		return err
	}
	leftPg.Data = root.Data
	leftPg.Dirty = true
	setIsRoot(leftPg, false)
	setParentPointer(leftPg, rootPageNum)

	if getNodeType(leftPg) == nodeTypeInternal {
		nk := getInternalNumKeys(leftPg)
		for i := uint32(0); i < nk; i++ {
			if err := t.setChildParent(getInternalCellChild(leftPg, i), leftPage); err != nil {
				return err
			}
		}
		if err := t.setChildParent(getInternalRightChild(leftPg), leftPage); err != nil {
			return err
		}
	}

	if err := t.setChildParent(rightChildPage, rootPageNum); err != nil {
		return err
	}

	initializeInternalNode(root, true)
	setInternalNumKeys(root, 1)
	setInternalCellChild(root, 0, leftPage)
	setInternalCellKey(root, 0, separatorKey)
	setInternalRightChild(root, rightChildPage)

	t.log.Debug("root split", "left_page", leftPage, "right_page", rightChildPage, "separator", separatorKey)
	return nil
}

// maxKey returns the maximum key stored in the subtree rooted at
// pageNum: the last cell's key for a leaf, or the recursive max of the
// right child for an internal node.
func (t *BTree) maxKey(pageNum uint32) (uint32, error) {
	pg, err := t.pager.GetPage(pageNum)
	if err != nil {
		return 0, err
	}
	if getNodeType(pg) == nodeTypeLeaf {
		n := getLeafNumCells(pg)
		if n == 0 {
			return 0, fmt.Errorf("maxKey: empty leaf page %d", pageNum)
		}
		return getLeafCellKey(pg, n-1), nil
	}
	return t.maxKey(getInternalRightChild(pg))
}
