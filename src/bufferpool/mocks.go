package bufferpool

import (
	"github.com/stretchr/testify/mock"

	"github.com/daniilvolkov/pagecache/src/pkg/common"
	"github.com/daniilvolkov/pagecache/src/storage/page"
)

type MockDiskManager struct {
	mock.Mock
}

var _ DiskManager[*page.Page] = &MockDiskManager{}

func (m *MockDiskManager) ReadPage(
	pageIdent common.PageIdentity,
) (*page.Page, error) {
	args := m.Called(pageIdent)
	return args.Get(0).(*page.Page), args.Error(1)
}

func (m *MockDiskManager) WritePage(
	p *page.Page,
	pageIdent common.PageIdentity,
) error {
	args := m.Called(p, pageIdent)
	return args.Error(0)
}

type MockReplacer struct {
	mock.Mock
}

var _ Replacer = &MockReplacer{}

func (m *MockReplacer) Pin(frameID common.FrameID) {
	m.Called(frameID)
}

func (m *MockReplacer) Unpin(frameID common.FrameID) {
	m.Called(frameID)
}

func (m *MockReplacer) ChooseVictim() (common.FrameID, error) {
	args := m.Called()
	return args.Get(0).(common.FrameID), args.Error(1)
}

func (m *MockReplacer) GetSize() uint64 {
	args := m.Called()
	return args.Get(0).(uint64)
}
