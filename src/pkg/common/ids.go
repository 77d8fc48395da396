package common

import "fmt"

// FrameID names a fixed-size slot in the buffer pool. Frame ids are assigned
// by the pool; the replacer only tracks their evictability.
type FrameID uint64

type FileID uint64

type PageID uint64

// PageIdentity is the on-disk address of a page: which file it belongs to and
// its position within that file.
type PageIdentity struct {
	FileID FileID
	PageID PageID
}

func (p PageIdentity) String() string {
	return fmt.Sprintf("file=%d page=%d", p.FileID, p.PageID)
}
