package bufferpool

import (
	"container/list"
	"sync"

	"github.com/go-faster/errors"

	"github.com/daniilvolkov/pagecache/src/pkg/common"
)

// ErrNoVictim is returned by ChooseVictim when every frame is pinned. A pool
// full of pinned pages is an operational condition for the caller to handle,
// not a bug in the replacer.
var ErrNoVictim = errors.New("no victim available")

// LRUReplacer tracks which frames are currently evictable and picks the
// least recently unpinned one as the victim. The list keeps evictable frames
// in recency order, front = most recently unpinned; the map indexes list
// elements by frame id so membership checks and removal stay O(1).
//
// All methods take the same mutex: the list and the map must never disagree
// on membership, and two concurrent ChooseVictim calls must never pick the
// same frame.
type LRUReplacer struct {
	mu       sync.Mutex
	capacity uint64
	lru      *list.List
	frames   map[common.FrameID]*list.Element
}

var _ Replacer = &LRUReplacer{}

// NewLRUReplacer creates a replacer for a pool of capacity frames. The
// evictable set never grows past capacity; the bound is fixed for the
// replacer's lifetime.
func NewLRUReplacer(capacity uint64) *LRUReplacer {
	return &LRUReplacer{
		capacity: capacity,
		lru:      list.New(),
		frames:   make(map[common.FrameID]*list.Element, capacity),
	}
}

// Pin removes frameID from the evictable set. Pinning a frame that is not
// evictable is a no-op.
func (l *LRUReplacer) Pin(frameID common.FrameID) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if elem, ok := l.frames[frameID]; ok {
		l.lru.Remove(elem)
		delete(l.frames, frameID)
	}
}

// Unpin marks frameID as evictable at the most-recently-used position.
// Re-unpinning an already evictable frame is a no-op: the frame keeps the
// recency position of the first call. Calls that would grow the set past
// capacity are silently ignored; more unpins than frames means the caller
// broke its own invariant, and that is not diagnosed here.
func (l *LRUReplacer) Unpin(frameID common.FrameID) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.frames[frameID]; ok {
		return
	}

	if uint64(l.lru.Len()) >= l.capacity {
		return
	}

	l.frames[frameID] = l.lru.PushFront(frameID)
}

// ChooseVictim removes and returns the least recently unpinned frame.
// The frame stops being evictable until it is unpinned again.
func (l *LRUReplacer) ChooseVictim() (common.FrameID, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	elem := l.lru.Back()
	if elem == nil {
		return 0, ErrNoVictim
	}

	frameID := elem.Value.(common.FrameID)

	l.lru.Remove(elem)
	delete(l.frames, frameID)

	return frameID, nil
}

// GetSize returns the number of currently evictable frames.
func (l *LRUReplacer) GetSize() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()

	return uint64(len(l.frames))
}
