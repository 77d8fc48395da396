package bufferpool

import (
	"sync"

	"github.com/go-faster/errors"

	"github.com/daniilvolkov/pagecache/src"
	"github.com/daniilvolkov/pagecache/src/pkg/assert"
	"github.com/daniilvolkov/pagecache/src/pkg/common"
	"github.com/daniilvolkov/pagecache/src/pkg/metrics"
)

var ErrNoSuchPage = errors.New("no such page")

type Page interface {
	GetData() []byte
	SetData(d []byte)

	SetDirtiness(val bool)
	IsDirty() bool

	// latch methods
	Lock()
	Unlock()
	RLock()
	RUnlock()
}

// Replacer decides which frame the pool reclaims next. Frames become
// candidates via Unpin and stop being candidates via Pin or ChooseVictim.
type Replacer interface {
	Pin(frameID common.FrameID)
	Unpin(frameID common.FrameID)
	ChooseVictim() (common.FrameID, error)
	GetSize() uint64
}

type DiskManager[T Page] interface {
	ReadPage(pageIdent common.PageIdentity) (T, error)
	WritePage(page T, pageIdent common.PageIdentity) error
}

type BufferPool[T Page] interface {
	GetPage(common.PageIdentity) (T, error)
	Unpin(common.PageIdentity) error
	FlushPage(common.PageIdentity) error
	FlushAllPages() error
}

type frame[T Page] struct {
	page      T
	pinCount  int
	pageIdent common.PageIdentity
	occupied  bool
}

// Manager is the buffer pool: a fixed set of frames, a page table mapping
// resident pages to frames, and a replacer tracking which frames may be
// reclaimed. A frame enters the replacer when its pin count drops to zero
// and leaves it when the page is pinned again or the frame is reclaimed.
type Manager[T Page] struct {
	mu sync.Mutex

	poolSize    uint64
	frames      []frame[T]
	pageToFrame map[common.PageIdentity]common.FrameID
	freeFrames  []common.FrameID

	replacer Replacer
	disk     DiskManager[T]

	log   src.Logger
	stats *metrics.PoolMetrics
}

var _ BufferPool[Page] = &Manager[Page]{}

// New creates a pool of poolSize frames. stats may be nil.
func New[T Page](
	poolSize uint64,
	replacer Replacer,
	diskManager DiskManager[T],
	log src.Logger,
	stats *metrics.PoolMetrics,
) *Manager[T] {
	assert.Assert(poolSize > 0, "pool size must be greater than zero")

	freeFrames := make([]common.FrameID, poolSize)
	for i := range freeFrames {
		freeFrames[i] = common.FrameID(i)
	}

	return &Manager[T]{
		poolSize:    poolSize,
		frames:      make([]frame[T], poolSize),
		pageToFrame: make(map[common.PageIdentity]common.FrameID, poolSize),
		freeFrames:  freeFrames,
		replacer:    replacer,
		disk:        diskManager,
		log:         log,
		stats:       stats,
	}
}

// GetPage returns the page at pIdent pinned. Every successful call must be
// paired with an Unpin, or the frame stays ineligible for eviction forever.
func (m *Manager[T]) GetPage(pIdent common.PageIdentity) (T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var zero T

	if frameID, ok := m.pageToFrame[pIdent]; ok {
		m.pinFrame(frameID)
		m.stats.Hit()

		return m.frames[frameID].page, nil
	}

	m.stats.Miss()

	frameID, err := m.reclaimFrame()
	if err != nil {
		return zero, err
	}

	page, err := m.disk.ReadPage(pIdent)
	if err != nil {
		m.frames[frameID] = frame[T]{}
		m.freeFrames = append(m.freeFrames, frameID)

		return zero, errors.Wrapf(err, "read page %v", pIdent)
	}

	m.frames[frameID] = frame[T]{
		page:      page,
		pinCount:  1,
		pageIdent: pIdent,
		occupied:  true,
	}
	m.pageToFrame[pIdent] = frameID

	return page, nil
}

// Unpin releases one pin on the page at pIdent. When the last pin is
// released the frame becomes a candidate for eviction.
func (m *Manager[T]) Unpin(pIdent common.PageIdentity) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	frameID, ok := m.pageToFrame[pIdent]
	if !ok {
		return ErrNoSuchPage
	}

	f := &m.frames[frameID]

	assert.Assert(f.pinCount > 0, "unpin of page %v with pin count 0", pIdent)

	f.pinCount--
	if f.pinCount == 0 {
		m.replacer.Unpin(frameID)
	}

	return nil
}

func (m *Manager[T]) FlushPage(pIdent common.PageIdentity) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	frameID, ok := m.pageToFrame[pIdent]
	if !ok {
		return ErrNoSuchPage
	}

	return m.flushFrame(&m.frames[frameID])
}

func (m *Manager[T]) FlushAllPages() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.frames {
		f := &m.frames[i]
		if !f.occupied {
			continue
		}

		if err := m.flushFrame(f); err != nil {
			return err
		}
	}

	return nil
}

func (m *Manager[T]) pinFrame(frameID common.FrameID) {
	m.frames[frameID].pinCount++
	m.replacer.Pin(frameID)
}

// reclaimFrame hands out a frame ready to host a new page: a free one if any
// are left, otherwise the replacer's victim, written back first when dirty.
func (m *Manager[T]) reclaimFrame() (common.FrameID, error) {
	if len(m.freeFrames) > 0 {
		frameID := m.freeFrames[0]
		m.freeFrames = m.freeFrames[1:]

		return frameID, nil
	}

	frameID, err := m.replacer.ChooseVictim()
	if err != nil {
		return 0, errors.Wrap(err, "reclaim frame")
	}

	victim := &m.frames[frameID]

	assert.Assert(victim.occupied, "victim frame %d holds no page", frameID)
	assert.Assert(
		victim.pinCount == 0,
		"victim frame %d has pin count %d",
		frameID,
		victim.pinCount,
	)

	if victim.page.IsDirty() {
		if err := m.disk.WritePage(victim.page, victim.pageIdent); err != nil {
			// the frame stays resident and evictable
			m.replacer.Unpin(frameID)

			return 0, errors.Wrapf(
				err,
				"write back page %v",
				victim.pageIdent,
			)
		}

		victim.page.SetDirtiness(false)
		m.stats.WriteBack()
	}

	delete(m.pageToFrame, victim.pageIdent)
	m.stats.Eviction()
	m.log.Debugw(
		"evicted page",
		"page", victim.pageIdent,
		"frame", frameID,
	)

	return frameID, nil
}

func (m *Manager[T]) flushFrame(f *frame[T]) error {
	if !f.page.IsDirty() {
		return nil
	}

	if err := m.disk.WritePage(f.page, f.pageIdent); err != nil {
		return errors.Wrapf(err, "flush page %v", f.pageIdent)
	}

	f.page.SetDirtiness(false)
	m.stats.WriteBack()

	return nil
}
