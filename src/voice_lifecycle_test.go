package sampler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func testModule(nvoices int) *Module {
	return NewModule(44100, 1, 2, nvoices, NewPipeStack(nil))
}

func Test_ActivateInactivate_RoundTrip(t *testing.T) {
	m := testModule(4)
	c := &Channel{Index: 0, Module: m}

	v := m.AllocVoice()
	require.NotNil(t, v)
	v.Channel = c

	v.Activate(ModeMono16)
	assert.Equal(t, ModeMono16, v.mode)
	assert.Same(t, v, c.RunningVoices)

	v.Inactivate(true)
	assert.Equal(t, ModeInactive, v.mode)
	assert.Nil(t, v.Channel)
	assert.Same(t, v, m.freeVoices)
}

func Test_Activate_PanicsOnAlreadyActive(t *testing.T) {
	m := testModule(1)
	c := &Channel{Index: 0, Module: m}
	v := m.AllocVoice()
	v.Channel = c
	v.Activate(ModeMono16)

	assert.Panics(t, func() {
		v.Activate(ModeMono16)
	})
}

// Test_FreeRunningListsAreDisjoint checks the invariant that every voice in
// the pool is, at all times, in exactly one of the module's free list or
// its channel's running list, never both and never neither.
func Test_FreeRunningListsAreDisjoint(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(1, 16).Draw(t, "n")
		m := testModule(n)
		c := &Channel{Index: 0, Module: m}

		steps := rapid.IntRange(0, 64).Draw(t, "steps")
		var held []*Voice
		for i := 0; i < steps; i++ {
			if rapid.Bool().Draw(t, "activate") && len(held) < n {
				v := m.AllocVoice()
				if v != nil {
					v.Channel = c
					v.Activate(ModeMono16)
					held = append(held, v)
				}
			} else if len(held) > 0 {
				idx := rapid.IntRange(0, len(held)-1).Draw(t, "idx")
				v := held[idx]
				v.Inactivate(true)
				held = append(held[:idx], held[idx+1:]...)
			}
		}

		seen := map[*Voice]int{}
		for f := m.freeVoices; f != nil; f = f.next {
			seen[f]++
		}
		for r := c.RunningVoices; r != nil; r = r.next {
			seen[r]++
		}
		assert.Len(t, seen, n, "every pooled voice must appear in exactly one list")
		for _, count := range seen {
			assert.Equal(t, 1, count, "a voice must never appear in both the free and running lists")
		}
	})
}

func Test_Release_DelayInterruptForcesInactivate(t *testing.T) {
	m := testModule(1)
	c := &Channel{Index: 0, Module: m}
	v := m.AllocVoice()
	v.Channel = c
	v.module = m
	v.Activate(ModeMono16)
	v.LoopMode = LoopSustain
	v.Layer = &LayerData{Count: 0}
	v.Age = 0
	v.Delay = uint64(2 * BlockSize)

	v.Release(false)

	assert.True(t, v.Released)
	assert.Equal(t, ModeInactive, v.mode)
}

func Test_Release_IgnoresMismatchedPolyaftertouchGate(t *testing.T) {
	m := testModule(1)
	c := &Channel{Index: 0, Module: m}
	v := m.AllocVoice()
	v.Channel = c
	v.module = m
	v.Activate(ModeMono16)
	v.LoopMode = LoopOneShotChokeable
	v.Layer = &LayerData{Count: 0}

	v.Release(false) // is_polyaft=false but loop is chokeable -> gate mismatch, no-op

	assert.False(t, v.Released)
	assert.Equal(t, ModeMono16, v.mode)
}
