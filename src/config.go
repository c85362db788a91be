package sampler

import (
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"
)

/*------------------------------------------------------------------
 *
 * Name:	config
 *
 * Purpose:	spgm:<section> config-driven program construction (spec.md
 *		§6): a YAML document holds one section per program, each
 *		naming an SFZ source and sample directory; BuildProgram
 *		resolves a section into a loaded Program. SFZ text parsing
 *		itself is an external collaborator (spec.md §1); this only
 *		owns section lookup and Program assembly.
 *
 *---------------------------------------------------------------*/

// SFZLoader parses one SFZ source into runtime-ready layers. Implementations
// live outside this package.
type SFZLoader interface {
	LoadProgram(sfzPath, sampleDir string) ([]*LayerData, error)
}

// ConfigTree is a parsed config document: one map of opcode/value pairs per
// "spgm:<name>" section, the same shape as a cbox config file's [spgm:name]
// sections.
type ConfigTree struct {
	sections map[string]map[string]string
}

// LoadConfigTree parses a YAML document of the form:
//
//	spgm:piano:
//	  sfz: piano.sfz
//	  sample_path: samples/piano
//	spgm:pad:
//	  sfz_path: /abs/path/pad.sfz
func LoadConfigTree(data []byte) (*ConfigTree, error) {
	var raw map[string]map[string]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, newError(ErrConfigNotFound, "<document>", err)
	}
	return &ConfigTree{sections: raw}, nil
}

// Section returns the raw opcode map for "spgm:<name>", or false if absent.
func (t *ConfigTree) Section(name string) (map[string]string, bool) {
	s, ok := t.sections["spgm:"+name]
	return s, ok
}

// BuildProgram resolves a "spgm:<name>" config section (or, with a leading
// "!", treats name as a direct filesystem path to an SFZ file bypassing the
// config tree entirely) into a loaded Program. A missing section is a real
// error, not a nil return disguised as success (spec.md §9 open question).
func BuildProgram(tree *ConfigTree, name string, progNo int, loader SFZLoader) (*Program, error) {
	if len(name) > 0 && name[0] == '!' {
		path := name[1:]
		layers, err := loader.LoadProgram(path, "")
		if err != nil {
			return nil, newError(ErrSFZLoadFailed, path, err)
		}
		p := NewProgram(progNo, path, "", path)
		for _, l := range layers {
			l.PrepareRuntime()
			p.AddLayer(l, nil)
		}
		return p, nil
	}

	section, ok := tree.Section(name)
	if !ok {
		return nil, newError(ErrConfigNotFound, "spgm:"+name, nil)
	}

	sfzPath := section["sfz_path"]
	if sfzPath == "" {
		sfzPath = section["sfz"]
	}
	if sfzPath == "" {
		return nil, newError(ErrSFZLoadFailed, name, fmt.Errorf("section has neither sfz nor sfz_path"))
	}
	sampleDir := section["sample_path"]

	layers, err := loader.LoadProgram(sfzPath, sampleDir)
	if err != nil {
		return nil, newError(ErrSFZLoadFailed, sfzPath, err)
	}

	progName := section["name"]
	if progName == "" {
		progName = name
	}
	if s := section["program"]; s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			progNo = n
		}
	}

	p := NewProgram(progNo, progName, sampleDir, sfzPath)
	for _, l := range layers {
		l.PrepareRuntime()
		p.AddLayer(l, nil)
	}
	return p, nil
}
