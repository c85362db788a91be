package sampler

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_Status_ReportsPoolOccupancy(t *testing.T) {
	m := testModule(4)
	c := &Channel{Index: 0, Module: m}

	v1 := m.AllocVoice()
	v1.Channel = c
	v1.Activate(ModeMono16)

	s := Status(m)
	assert.Equal(t, 1, s.ActiveVoices)
	assert.Equal(t, 3, s.FreeVoices)
	assert.Equal(t, 4, s.PoolSize)
}

func Test_Regions_ListsAllLayers(t *testing.T) {
	p := NewProgram(0, "test", "", "")
	l := NewLayerData()
	l.LoKey, l.HiKey = 36, 48
	l.EffWaveform = &Waveform{Name: "kick"}
	p.AddLayer(l, nil)

	regions := Regions(p)
	assert.Len(t, regions, 1)
	assert.Equal(t, "kick", regions[0].Waveform)
	assert.Equal(t, 36, regions[0].LoKey)
}

func Test_NewGroup_AssignsUniqueIDs(t *testing.T) {
	p := NewProgram(0, "test", "", "")
	r1 := NewGroup(p, "drums")
	r2 := NewGroup(p, "drums")
	assert.NotEqual(t, r1.ID, r2.ID)
	assert.Len(t, p.Groups, 3) // default + 2 new
}
