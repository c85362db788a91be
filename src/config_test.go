package sampler

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubLoader struct {
	layers []*LayerData
	err    error
}

func (s *stubLoader) LoadProgram(sfzPath, sampleDir string) ([]*LayerData, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.layers, nil
}

func testDoc() []byte {
	return []byte(`
spgm:piano:
  sfz: piano.sfz
  sample_path: samples/piano
  name: Grand Piano
`)
}

func Test_BuildProgram_ResolvesNamedSection(t *testing.T) {
	tree, err := LoadConfigTree(testDoc())
	require.NoError(t, err)

	l := NewLayerData()
	l.EffWaveform = &Waveform{Name: "a", Channels: 1, Frames: 1}
	loader := &stubLoader{layers: []*LayerData{l}}

	p, err := BuildProgram(tree, "piano", 0, loader)
	require.NoError(t, err)
	assert.Equal(t, "Grand Piano", p.Name)
	assert.Equal(t, "samples/piano", p.SampleDir)
	assert.Len(t, p.AllLayers, 1)
}

func Test_BuildProgram_MissingSectionIsAnError(t *testing.T) {
	tree, err := LoadConfigTree(testDoc())
	require.NoError(t, err)

	p, err := BuildProgram(tree, "nonexistent", 0, &stubLoader{})
	assert.Nil(t, p)
	require.Error(t, err)
	var cfgErr *Error
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, ErrConfigNotFound, cfgErr.Kind)
}

func Test_BuildProgram_BangPrefixBypassesConfigTree(t *testing.T) {
	l := NewLayerData()
	l.EffWaveform = &Waveform{Name: "a", Channels: 1, Frames: 1}
	loader := &stubLoader{layers: []*LayerData{l}}

	p, err := BuildProgram(&ConfigTree{}, "!/abs/path/foo.sfz", 0, loader)
	require.NoError(t, err)
	assert.Equal(t, "/abs/path/foo.sfz", p.SourceFile)
}

func Test_BuildProgram_LoaderErrorWraps(t *testing.T) {
	tree, err := LoadConfigTree(testDoc())
	require.NoError(t, err)

	loader := &stubLoader{err: fmt.Errorf("boom")}
	p, err := BuildProgram(tree, "piano", 0, loader)
	assert.Nil(t, p)
	require.Error(t, err)
	var cfgErr *Error
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, ErrSFZLoadFailed, cfgErr.Kind)
}
