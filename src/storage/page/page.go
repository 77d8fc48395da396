package page

import "sync"

// Size is the fixed page size in bytes.
const Size = 4096

// Page is one frame's worth of data plus the bookkeeping the buffer pool
// needs: a dirty flag and a latch. It knows nothing about record layout.
type Page struct {
	latch sync.RWMutex
	data  [Size]byte
	dirty bool
}

func New() *Page {
	return &Page{}
}

func (p *Page) GetData() []byte {
	return p.data[:]
}

// SetData copies d into the page buffer and truncates at the page size.
func (p *Page) SetData(d []byte) {
	copy(p.data[:], d)
}

func (p *Page) SetDirtiness(val bool) {
	p.dirty = val
}

func (p *Page) IsDirty() bool {
	return p.dirty
}

func (p *Page) Lock()    { p.latch.Lock() }
func (p *Page) Unlock()  { p.latch.Unlock() }
func (p *Page) RLock()   { p.latch.RLock() }
func (p *Page) RUnlock() { p.latch.RUnlock() }
