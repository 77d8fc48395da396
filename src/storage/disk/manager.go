package disk

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/go-faster/errors"
	"github.com/spf13/afero"

	"github.com/daniilvolkov/pagecache/src/pkg/common"
	"github.com/daniilvolkov/pagecache/src/storage/page"
)

// Manager stores pages of each file id in a separate file under basePath,
// at offset pageID * page.Size. The filesystem is abstracted behind afero.Fs
// so tests run on an in-memory fs.
type Manager struct {
	mu       sync.Mutex
	basePath string
	fs       afero.Fs
}

func New(basePath string, fs afero.Fs) *Manager {
	return &Manager{
		basePath: basePath,
		fs:       fs,
	}
}

func (m *Manager) pathFor(fileID common.FileID) string {
	return filepath.Join(m.basePath, fmt.Sprintf("%d.pages", fileID))
}

// ReadPage reads the page at pageIdent. A page that was never written reads
// back as a zero page, the same as a fresh file tail.
func (m *Manager) ReadPage(pageIdent common.PageIdentity) (*page.Page, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p := page.New()

	file, err := m.fs.Open(m.pathFor(pageIdent.FileID))
	if err != nil {
		if os.IsNotExist(err) {
			return p, nil
		}

		return nil, errors.Wrapf(err, "open file %d", pageIdent.FileID)
	}
	defer file.Close()

	offset := int64(pageIdent.PageID) * page.Size

	// a short read past EOF leaves the rest of the page zeroed
	if _, err := file.ReadAt(p.GetData(), offset); err != nil &&
		!errors.Is(err, io.EOF) {
		return nil, errors.Wrapf(err, "read page %v", pageIdent)
	}

	return p, nil
}

func (m *Manager) WritePage(p *page.Page, pageIdent common.PageIdentity) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	file, err := m.fs.OpenFile(
		m.pathFor(pageIdent.FileID),
		os.O_CREATE|os.O_RDWR,
		0o600,
	)
	if err != nil {
		return errors.Wrapf(err, "open file %d", pageIdent.FileID)
	}
	defer file.Close()

	offset := int64(pageIdent.PageID) * page.Size

	if _, err := file.WriteAt(p.GetData(), offset); err != nil {
		return errors.Wrapf(err, "write page %v", pageIdent)
	}

	return nil
}
