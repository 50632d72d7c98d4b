// Package pager mediates all access to the database file: a fixed-size
// array of page buffers, demand-loaded from disk and flushed on close.
package pager

import (
	"fmt"
	"io"
	"log/slog"
	"os"
)

const (
	// PageSize is the fixed size, in bytes, of every page in the file.
	PageSize = 4096
	// TableMaxPages bounds the pager's in-memory page cache. There is no
	// eviction, so this is also the hard ceiling on table size.
	TableMaxPages = 100
)

// Page is a single fixed-size buffer backing one page of the file.
type Page struct {
	Data  [PageSize]byte
	Dirty bool
}

// Pager owns the database file and the in-memory array of page buffers.
// Page number i is always at file offset i*PageSize.
type Pager struct {
	file     *os.File
	pages    [TableMaxPages]*Page
	numPages uint32

	log *slog.Logger
}

// Open opens (creating if absent) the database file at path. The file
// length must be a whole number of pages; a partial final page indicates
// a corrupted file.
func Open(path string) (*Pager, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0600)
	if err != nil {
		return nil, fmt.Errorf("pager: open %s: %w", path, err)
	}
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("pager: stat %s: %w", path, err)
	}
	size := fi.Size()
	if size%PageSize != 0 {
		f.Close()
		return nil, fmt.Errorf("pager: db file is not a whole number of pages (size=%d)", size)
	}

	p := &Pager{
		file:     f,
		numPages: uint32(size / PageSize),
		log:      slog.Default(),
	}
	p.log.Debug("pager opened", "path", path, "num_pages", p.numPages)
	return p, nil
}

// NumPages reports how many pages are known to the pager, whether or not
// they are currently resident in the cache.
func (p *Pager) NumPages() uint32 { return p.numPages }

// GetPage returns the page buffer for pageNum, loading it from disk on
// first access. If pageNum equals the current page count, a fresh
// zeroed page is materialized and the count grows by one. This is the
// only way new pages come into existence.
func (p *Pager) GetPage(pageNum uint32) (*Page, error) {
	if pageNum >= TableMaxPages {
		return nil, fmt.Errorf("pager: page %d out of bounds (max %d): %w", pageNum, TableMaxPages, ErrTableFull)
	}
	if pageNum > p.numPages {
		return nil, fmt.Errorf("pager: page %d requested beyond next free page %d", pageNum, p.numPages)
	}

	if p.pages[pageNum] == nil {
		pg := &Page{}
		if pageNum < p.numPages {
			if err := p.readPage(pageNum, pg); err != nil {
				return nil, err
			}
		}
		p.pages[pageNum] = pg
		if pageNum == p.numPages {
			p.numPages++
			pg.Dirty = true
		}
	}
	return p.pages[pageNum], nil
}

// Allocate hands out the next unused page number and returns its buffer.
// It is the only way the B+-tree grows the file.
func (p *Pager) Allocate() (uint32, *Page, error) {
	pageNum := p.numPages
	pg, err := p.GetPage(pageNum)
	if err != nil {
		return 0, nil, err
	}
	p.log.Debug("page allocated", "page", pageNum)
	return pageNum, pg, nil
}

func (p *Pager) readPage(pageNum uint32, pg *Page) error {
	off := int64(pageNum) * PageSize
	if _, err := p.file.Seek(off, io.SeekStart); err != nil {
		return fmt.Errorf("pager: seek page %d: %w", pageNum, err)
	}
	if _, err := io.ReadFull(p.file, pg.Data[:]); err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return fmt.Errorf("pager: read page %d: %w", pageNum, err)
	}
	return nil
}

// Flush writes the page at pageNum back to its file offset, retrying
// until the whole page is written.
func (p *Pager) Flush(pageNum uint32) error {
	pg := p.pages[pageNum]
	if pg == nil {
		return nil
	}
	off := int64(pageNum) * PageSize
	if _, err := p.file.Seek(off, io.SeekStart); err != nil {
		return fmt.Errorf("pager: seek page %d: %w", pageNum, err)
	}
	buf := pg.Data[:]
	for len(buf) > 0 {
		n, err := p.file.Write(buf)
		if err != nil {
			return fmt.Errorf("pager: write page %d: %w", pageNum, err)
		}
		buf = buf[n:]
	}
	pg.Dirty = false
	return nil
}

// Close flushes every resident page and closes the underlying file.
// Every resident page is considered dirty: it is written back whether
// or not its Dirty flag is set.
func (p *Pager) Close() error {
	for i := uint32(0); i < p.numPages; i++ {
		if p.pages[i] == nil {
			continue
		}
		if err := p.Flush(i); err != nil {
			return err
		}
	}
	p.log.Debug("pager closed", "num_pages", p.numPages)
	return p.file.Close()
}
