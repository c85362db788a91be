package sampler

/*------------------------------------------------------------------
 *
 * Name:	program
 *
 * Purpose:	Program is the ordered collection of layers (and the groups
 *		they belong to) a Channel plays against, with a lazily-built
 *		run-time layer list cached until the next edit invalidates it
 *		(spec.md §3, §4.2), mirroring sampler_program in
 *		original_source/sampler_prg.c.
 *
 *---------------------------------------------------------------*/

// Group is a named collection of layers that share default parameters;
// parameter inheritance from a group into its layers happens before a layer
// reaches this package (spec.md §1), so Group here is just an identity and
// membership marker for control-surface reporting.
type Group struct {
	Name   string
	Layers []*LayerData
}

// Program owns every layer a channel can trigger, grouped for reporting
// purposes, plus the lazily rebuilt run-time layer list the matcher reads.
type Program struct {
	ProgNo     int
	Name       string
	SampleDir  string
	SourceFile string

	AllLayers    []*LayerData
	Groups       []*Group
	DefaultGroup *Group

	rll *RLL
}

// NewProgram returns an empty program with its default group created.
func NewProgram(progNo int, name, sampleDir, sourceFile string) *Program {
	p := &Program{
		ProgNo:     progNo,
		Name:       name,
		SampleDir:  sampleDir,
		SourceFile: sourceFile,
	}
	p.DefaultGroup = &Group{Name: "<default>"}
	p.Groups = append(p.Groups, p.DefaultGroup)
	return p
}

// AddGroup appends a new named group, returning it for layer assignment.
func (p *Program) AddGroup(name string) *Group {
	g := &Group{Name: name}
	p.Groups = append(p.Groups, g)
	return g
}

// AddLayer appends l to the program (and, if g is non-nil, to that group),
// invalidating the cached RLL. Precondition: l.PrepareRuntime has already
// been called (spec.md §3 invariant) — this method does not call it, since
// a layer may still be under construction across several edits.
func (p *Program) AddLayer(l *LayerData, g *Group) {
	p.AllLayers = append(p.AllLayers, l)
	if g == nil {
		g = p.DefaultGroup
	}
	g.Layers = append(g.Layers, l)
	p.rll = nil
}

// DeleteLayer removes l from the program and every group it was filed
// under, invalidating the cached RLL.
func (p *Program) DeleteLayer(l *LayerData) {
	p.AllLayers = removeLayer(p.AllLayers, l)
	for _, g := range p.Groups {
		g.Layers = removeLayer(g.Layers, l)
	}
	p.rll = nil
}

func removeLayer(layers []*LayerData, target *LayerData) []*LayerData {
	out := layers[:0]
	for _, l := range layers {
		if l != target {
			out = append(out, l)
		}
	}
	return out
}

// RLL returns the program's run-time layer list, building it on first use
// after construction or any edit (spec.md §4.2).
func (p *Program) RLL() *RLL {
	if p.rll == nil {
		p.rll = buildRLL(p.AllLayers)
	}
	return p.rll
}

// Destroy releases a program's layers and groups. Go's garbage collector
// reclaims the memory; this exists so callers can drop every reference in
// one call, mirroring sampler_program_destroy's ordering guarantee that a
// destroyed program is never matched against again.
func (p *Program) Destroy() {
	p.AllLayers = nil
	p.Groups = nil
	p.DefaultGroup = nil
	p.rll = nil
}
