// Package postings implements the per-term posting-list store: one
// append-only, sorted, deduplicated file of big-endian uint64 page ids
// per term, addressed by a hash of the term (§4.4).
//
// The hard part of this package is Append's in-place insertion: rather
// than rewrite the whole file, it binary-searches for the insertion
// slot and shifts every trailing 8-byte entry one slot to the right.
// That keeps posting files small-file-friendly at the cost of O(n)
// writes per insert — acceptable per the spec because posting lists
// are small relative to page count and intersection-time I/O
// dominates total cost.
package postings

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"github.com/TheArchitect4855/ksearch/internal/ksearcherr"
)

const slotSize = 8

// Store is a filesystem-backed posting-list store rooted at Dir.
type Store struct {
	// Dir is the root directory under which per-term files live
	// (e.g. "indices").
	Dir string

	// Debug enables the post-condition checks called for in §4.4 step
	// 5 (strictly increasing, size a multiple of 8) after every
	// Append. It trades a full-file re-read for a stronger correctness
	// guarantee, so it is off by default.
	Debug bool
}

// New creates a Store rooted at dir.
func New(dir string) *Store {
	return &Store{Dir: dir}
}

// pathFor returns the fan-out path "<dir>/<hex[0:2]>/<hex[2:]>" for
// term, where hex is the lowercase hex SHA-256 of term.
func (s *Store) pathFor(term string) string {
	sum := sha256.Sum256([]byte(term))
	hexSum := hex.EncodeToString(sum[:])
	return filepath.Join(s.Dir, hexSum[:2], hexSum[2:])
}

// Append inserts pageID into term's posting list, keeping it sorted and
// deduplicated. It is idempotent: appending the same (term, pageID)
// more than once leaves the file unchanged after the first call.
func (s *Store) Append(term string, pageID uint64) error {
	path := s.pathFor(term)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return ksearcherr.Wrap(ksearcherr.PostingIO, "failed to create posting directory", err)
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return ksearcherr.Wrap(ksearcherr.PostingIO, "failed to open posting file", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return ksearcherr.Wrap(ksearcherr.PostingIO, "failed to stat posting file", err)
	}

	size := info.Size()
	if size == 0 {
		if err := writeSlotAt(f, 0, pageID); err != nil {
			return ksearcherr.Wrap(ksearcherr.PostingIO, "failed to write first posting", err)
		}
		return nil
	}

	n := int(size / slotSize)
	slot, found, err := search(f, n, pageID)
	if err != nil {
		return ksearcherr.Wrap(ksearcherr.PostingIO, "failed to search posting file", err)
	}
	if found {
		return nil
	}

	if err := shiftInsert(f, n, slot, pageID); err != nil {
		return ksearcherr.Wrap(ksearcherr.PostingIO, "failed to insert into posting file", err)
	}

	if s.Debug {
		if err := validate(f); err != nil {
			return ksearcherr.Wrap(ksearcherr.PostingIO, "posting file failed post-condition check", err)
		}
	}

	return nil
}

// Scan returns every page id in term's posting list, in ascending
// order. A missing file yields an empty slice and no error.
func (s *Store) Scan(term string) ([]uint64, error) {
	path := s.pathFor(term)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, ksearcherr.Wrap(ksearcherr.PostingIO, "failed to read posting file", err)
	}

	if len(data)%slotSize != 0 {
		return nil, ksearcherr.New(ksearcherr.PostingIO, fmt.Sprintf("posting file %s has invalid size %d", path, len(data)))
	}

	n := len(data) / slotSize
	ids := make([]uint64, n)
	for i := 0; i < n; i++ {
		ids[i] = binary.BigEndian.Uint64(data[i*slotSize : (i+1)*slotSize])
	}

	return ids, nil
}

// search performs a binary search for pageID among the n existing
// slots of f, returning the index it was found at (found=true) or the
// index it should be inserted at to keep the file sorted (found=false).
func search(f *os.File, n int, pageID uint64) (slot int, found bool, err error) {
	lo, hi := 0, n
	for lo < hi {
		mid := lo + (hi-lo)/2
		v, rerr := readSlotAt(f, mid)
		if rerr != nil {
			return 0, false, rerr
		}
		switch {
		case v == pageID:
			return mid, true, nil
		case v < pageID:
			lo = mid + 1
		default:
			hi = mid
		}
	}
	return lo, false, nil
}

// shiftInsert writes pageID at slot, shifting every existing entry from
// slot onward one position to the right. The file grows by exactly one
// slotSize.
func shiftInsert(f *os.File, n, slot int, pageID uint64) error {
	pending := pageID
	for i := slot; i < n; i++ {
		next, err := readSlotAt(f, i)
		if err != nil {
			return err
		}
		if err := writeSlotAt(f, i, pending); err != nil {
			return err
		}
		pending = next
	}
	return writeSlotAt(f, n, pending)
}

func readSlotAt(f *os.File, slot int) (uint64, error) {
	var buf [slotSize]byte
	if _, err := f.ReadAt(buf[:], int64(slot)*slotSize); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(buf[:]), nil
}

func writeSlotAt(f *os.File, slot int, value uint64) error {
	var buf [slotSize]byte
	binary.BigEndian.PutUint64(buf[:], value)
	_, err := f.WriteAt(buf[:], int64(slot)*slotSize)
	return err
}

// validate checks the post-conditions from §4.4 step 5: file size is a
// multiple of slotSize and decoded ids are strictly increasing.
func validate(f *os.File) error {
	info, err := f.Stat()
	if err != nil {
		return err
	}
	if info.Size()%slotSize != 0 {
		return fmt.Errorf("size %d is not a multiple of %d", info.Size(), slotSize)
	}

	n := int(info.Size() / slotSize)
	var prev uint64
	for i := 0; i < n; i++ {
		v, err := readSlotAt(f, i)
		if err != nil {
			return err
		}
		if i > 0 && v <= prev {
			return fmt.Errorf("entries not strictly increasing at slot %d", i)
		}
		prev = v
	}

	return nil
}
