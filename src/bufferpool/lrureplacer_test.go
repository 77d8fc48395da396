package bufferpool

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daniilvolkov/pagecache/src/pkg/common"
)

func TestLRUReplacerBasic(t *testing.T) {
	r := NewLRUReplacer(16)

	r.Unpin(1)
	r.Unpin(2)
	r.Unpin(3)

	assert.Equal(t, uint64(3), r.GetSize())

	r.Pin(2)
	assert.Equal(t, uint64(2), r.GetSize())

	victim, err := r.ChooseVictim()
	require.NoError(t, err)
	assert.Equal(t, common.FrameID(1), victim)

	assert.Equal(t, uint64(1), r.GetSize())

	r.Unpin(4)
	r.Unpin(5)

	assert.Equal(t, uint64(3), r.GetSize())

	v1, err := r.ChooseVictim()
	require.NoError(t, err)
	v2, err := r.ChooseVictim()
	require.NoError(t, err)

	assert.Equal(t, []common.FrameID{3, 4}, []common.FrameID{v1, v2})
	assert.Equal(t, uint64(1), r.GetSize())
}

func TestLRUReplacerRecencyOrder(t *testing.T) {
	r := NewLRUReplacer(8)

	r.Unpin(1)
	r.Unpin(2)
	r.Unpin(3)

	for i, want := range []common.FrameID{1, 2, 3} {
		victim, err := r.ChooseVictim()
		require.NoError(t, err)
		assert.Equal(t, want, victim)
		assert.Equal(t, uint64(2-i), r.GetSize())
	}
}

func TestLRUChooseVictimEmpty(t *testing.T) {
	r := NewLRUReplacer(8)

	_, err := r.ChooseVictim()
	require.ErrorIs(t, err, ErrNoVictim)
	assert.Equal(t, uint64(0), r.GetSize())

	// the failed call must not have mutated anything
	r.Unpin(7)

	victim, err := r.ChooseVictim()
	require.NoError(t, err)
	assert.Equal(t, common.FrameID(7), victim)
}

func TestLRUReplacerDuplicateUnpin(t *testing.T) {
	r := NewLRUReplacer(8)

	r.Unpin(1)
	r.Unpin(2)
	r.Unpin(1) // no duplicate, no move to the front

	assert.Equal(t, uint64(2), r.GetSize())

	v1, err := r.ChooseVictim()
	require.NoError(t, err)
	v2, err := r.ChooseVictim()
	require.NoError(t, err)

	assert.Equal(t, common.FrameID(1), v1)
	assert.Equal(t, common.FrameID(2), v2)

	_, err = r.ChooseVictim()
	require.ErrorIs(t, err, ErrNoVictim)
}

func TestLRUReplacerCapacity(t *testing.T) {
	r := NewLRUReplacer(3)

	r.Unpin(1)
	r.Unpin(2)
	r.Unpin(3)
	r.Unpin(4) // rejected, the set is full

	assert.Equal(t, uint64(3), r.GetSize())

	for _, want := range []common.FrameID{1, 2, 3} {
		victim, err := r.ChooseVictim()
		require.NoError(t, err)
		assert.Equal(t, want, victim)
	}

	_, err := r.ChooseVictim()
	require.ErrorIs(t, err, ErrNoVictim)
}

func TestLRUReplacerDuplicateUnpinAtCapacity(t *testing.T) {
	r := NewLRUReplacer(2)

	r.Unpin(1)
	r.Unpin(2)

	// 1 is part of the full set; re-unpinning it must stay a no-op rather
	// than be rejected as an over-capacity insertion
	r.Unpin(1)

	assert.Equal(t, uint64(2), r.GetSize())

	v1, err := r.ChooseVictim()
	require.NoError(t, err)
	v2, err := r.ChooseVictim()
	require.NoError(t, err)

	assert.Equal(t, common.FrameID(1), v1)
	assert.Equal(t, common.FrameID(2), v2)
}

func TestLRUReplacerPinRemoves(t *testing.T) {
	r := NewLRUReplacer(8)

	r.Unpin(1)
	r.Pin(1)

	assert.Equal(t, uint64(0), r.GetSize())

	_, err := r.ChooseVictim()
	require.ErrorIs(t, err, ErrNoVictim)

	// pinned frames stay out until unpinned again
	r.Unpin(2)

	victim, err := r.ChooseVictim()
	require.NoError(t, err)
	assert.Equal(t, common.FrameID(2), victim)
}

func TestLRUReplacerPinUnknown(t *testing.T) {
	r := NewLRUReplacer(8)

	r.Pin(42) // never unpinned, must be a no-op

	assert.Equal(t, uint64(0), r.GetSize())
}

func TestLRUReplacerConcurrentUnpin(t *testing.T) {
	const numFrames = 200

	r := NewLRUReplacer(numFrames)

	var wg sync.WaitGroup
	wg.Add(numFrames)
	for i := 0; i < numFrames; i++ {
		i := i
		go func() {
			defer wg.Done()
			r.Unpin(common.FrameID(i))
		}()
	}
	wg.Wait()

	assert.Equal(t, uint64(numFrames), r.GetSize())

	victims := make([]common.FrameID, 0, numFrames)
	for i := 0; i < numFrames; i++ {
		v, err := r.ChooseVictim()
		require.NoError(t, err)
		victims = append(victims, v)
	}

	expected := make([]common.FrameID, 0, numFrames)
	for i := 0; i < numFrames; i++ {
		expected = append(expected, common.FrameID(i))
	}
	assert.ElementsMatch(t, expected, victims)
	assert.Equal(t, uint64(0), r.GetSize())
}

func TestLRUReplacerConcurrentPinAndUnpin(t *testing.T) {
	const initial = 150
	const added = 100

	r := NewLRUReplacer(initial + added)

	for i := 0; i < initial; i++ {
		r.Unpin(common.FrameID(i))
	}
	assert.Equal(t, uint64(initial), r.GetSize())

	var wg sync.WaitGroup

	// concurrently pin all initial frames, removing them
	wg.Add(initial)
	for i := 0; i < initial; i++ {
		i := i
		go func() {
			defer wg.Done()
			r.Pin(common.FrameID(i))
		}()
	}

	// concurrently unpin a disjoint set
	wg.Add(added)
	for i := initial; i < initial+added; i++ {
		i := i
		go func() {
			defer wg.Done()
			r.Unpin(common.FrameID(i))
		}()
	}

	wg.Wait()

	assert.Equal(t, uint64(added), r.GetSize())

	victims := make([]common.FrameID, 0, added)
	for i := 0; i < added; i++ {
		v, err := r.ChooseVictim()
		require.NoError(t, err)
		victims = append(victims, v)
	}

	expected := make([]common.FrameID, 0, added)
	for i := initial; i < initial+added; i++ {
		expected = append(expected, common.FrameID(i))
	}
	assert.ElementsMatch(t, expected, victims)
	assert.Equal(t, uint64(0), r.GetSize())
}

// Each worker unpins its own distinct frame and immediately claims a victim.
// Two workers must never be handed the same frame: victims plus whatever is
// left in the set must add up to every frame exactly once.
func TestLRUReplacerConcurrentUnpinThenVictim(t *testing.T) {
	const numWorkers = 64

	r := NewLRUReplacer(numWorkers)

	var wg sync.WaitGroup
	victimsCh := make(chan common.FrameID, numWorkers)

	wg.Add(numWorkers)
	for w := 0; w < numWorkers; w++ {
		w := w
		go func() {
			defer wg.Done()

			r.Unpin(common.FrameID(w))

			if size := r.GetSize(); size > numWorkers {
				t.Errorf("evictable set outgrew capacity: %d", size)
			}

			v, err := r.ChooseVictim()
			if err != nil {
				// other workers drained the set faster than this one
				// inserted; the frame stays behind for the final drain
				return
			}
			victimsCh <- v
		}()
	}

	wg.Wait()
	close(victimsCh)

	collected := make([]common.FrameID, 0, numWorkers)
	for v := range victimsCh {
		collected = append(collected, v)
	}

	// drain what the workers left behind
	for {
		v, err := r.ChooseVictim()
		if err != nil {
			require.ErrorIs(t, err, ErrNoVictim)
			break
		}
		collected = append(collected, v)
	}

	expected := make([]common.FrameID, 0, numWorkers)
	for i := 0; i < numWorkers; i++ {
		expected = append(expected, common.FrameID(i))
	}
	assert.ElementsMatch(t, expected, collected)
	assert.Equal(t, uint64(0), r.GetSize())
}

func TestLRUReplacerParallelChooseVictim(t *testing.T) {
	const numFrames = 128

	r := NewLRUReplacer(numFrames)

	for i := 0; i < numFrames; i++ {
		r.Unpin(common.FrameID(i))
	}

	var wg sync.WaitGroup
	victimsCh := make(chan common.FrameID, numFrames)
	errsCh := make(chan error, numFrames)

	wg.Add(numFrames)
	for i := 0; i < numFrames; i++ {
		go func() {
			defer wg.Done()
			v, err := r.ChooseVictim()
			if err != nil {
				errsCh <- err
				return
			}
			victimsCh <- v
		}()
	}

	wg.Wait()
	close(victimsCh)
	close(errsCh)

	// no errors expected because we seeded exactly numFrames
	for err := range errsCh {
		require.NoError(t, err)
	}

	victims := make([]common.FrameID, 0, numFrames)
	for v := range victimsCh {
		victims = append(victims, v)
	}

	expected := make([]common.FrameID, 0, numFrames)
	for i := 0; i < numFrames; i++ {
		expected = append(expected, common.FrameID(i))
	}
	assert.ElementsMatch(t, expected, victims)
	assert.Equal(t, uint64(0), r.GetSize())
}
