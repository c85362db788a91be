package sampler

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_Program_RLLPartitionsByTrigger(t *testing.T) {
	p := NewProgram(0, "test", "", "")
	attack := NewLayerData()
	attack.EffWaveform = &Waveform{Name: "a", Channels: 1, Frames: 1}
	release := NewLayerData()
	release.Trigger = TriggerRelease
	release.EffWaveform = &Waveform{Name: "r", Channels: 1, Frames: 1}

	p.AddLayer(attack, nil)
	p.AddLayer(release, nil)

	rll := p.RLL()
	assert.Len(t, rll.AttackLayers, 1)
	assert.Len(t, rll.ReleaseLayers, 1)
	assert.Same(t, attack, rll.AttackLayers[0])
	assert.Same(t, release, rll.ReleaseLayers[0])
}

func Test_Program_EditInvalidatesCachedRLL(t *testing.T) {
	p := NewProgram(0, "test", "", "")
	l := NewLayerData()
	l.EffWaveform = &Waveform{Name: "a", Channels: 1, Frames: 1}
	p.AddLayer(l, nil)

	first := p.RLL()
	assert.Len(t, first.AttackLayers, 1)

	l2 := NewLayerData()
	l2.EffWaveform = &Waveform{Name: "b", Channels: 1, Frames: 1}
	p.AddLayer(l2, nil)

	second := p.RLL()
	assert.Len(t, second.AttackLayers, 2)
}

func Test_Program_DeleteLayerRemovesFromGroupsToo(t *testing.T) {
	p := NewProgram(0, "test", "", "")
	g := p.AddGroup("lead")
	l := NewLayerData()
	l.EffWaveform = &Waveform{Name: "a", Channels: 1, Frames: 1}
	p.AddLayer(l, g)

	assert.Len(t, g.Layers, 1)
	p.DeleteLayer(l)
	assert.Len(t, g.Layers, 0)
	assert.Len(t, p.AllLayers, 0)
}
