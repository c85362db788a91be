package sampler

import "github.com/google/uuid"

/*------------------------------------------------------------------
 *
 * Name:	control
 *
 * Purpose:	Control-surface queries (spec.md §6): /status, /regions,
 *		/groups, /new_group. Dispatch over OSC or any other transport
 *		is an external collaborator (spec.md §1); this owns only the
 *		reply payloads themselves.
 *
 *---------------------------------------------------------------*/

// StatusReply answers "/status": a snapshot of pool occupancy.
type StatusReply struct {
	ActiveVoices int
	FreeVoices   int
	PoolSize     int
}

// Status reports the module's current voice pool occupancy.
func Status(m *Module) StatusReply {
	free := 0
	for v := m.freeVoices; v != nil; v = v.next {
		free++
	}
	return StatusReply{
		ActiveVoices: len(m.voices) - free,
		FreeVoices:   free,
		PoolSize:     len(m.voices),
	}
}

// RegionInfo answers one entry of "/regions": a layer's matchable ranges
// and the waveform it plays, enough for a control surface to render a
// keyboard map without reaching into LayerData internals.
type RegionInfo struct {
	LoKey, HiKey int
	LoVel, HiVel int
	Trigger      Trigger
	Waveform     string
}

// Regions lists every layer in a program as a RegionInfo.
func Regions(p *Program) []RegionInfo {
	out := make([]RegionInfo, 0, len(p.AllLayers))
	for _, l := range p.AllLayers {
		name := ""
		if l.EffWaveform != nil {
			name = l.EffWaveform.Name
		}
		out = append(out, RegionInfo{
			LoKey: l.LoKey, HiKey: l.HiKey,
			LoVel: l.LoVel, HiVel: l.HiVel,
			Trigger:  l.Trigger,
			Waveform: name,
		})
	}
	return out
}

// GroupInfo answers one entry of "/groups".
type GroupInfo struct {
	Name        string
	RegionCount int
}

// Groups lists every group in a program.
func Groups(p *Program) []GroupInfo {
	out := make([]GroupInfo, 0, len(p.Groups))
	for _, g := range p.Groups {
		out = append(out, GroupInfo{Name: g.Name, RegionCount: len(g.Layers)})
	}
	return out
}

// NewGroupReply answers "/new_group": the freshly created group's name and
// a freshly generated unique id. The id exists only in this reply: it is not
// stored on the Group, and nothing in this package looks a group up by it.
type NewGroupReply struct {
	ID   uuid.UUID
	Name string
}

// NewGroup creates and appends a new named group to p, returning its id.
func NewGroup(p *Program, name string) NewGroupReply {
	p.AddGroup(name)
	return NewGroupReply{ID: uuid.New(), Name: name}
}
