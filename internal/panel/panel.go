// Package panel is the presentation model of the matte panel: a mesh →
// material → ID tree and a multimatte → R/G/B table that mirror the domain
// model and turn user edits into domain calls.
package panel

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/mattework/internal/matte"
	"github.com/Faultbox/mattework/internal/scene"
)

var (
	// ErrBusy is returned for an edit that arrives while the panel is
	// still applying or announcing a previous one.
	ErrBusy = errors.New("panel is updating")

	// ErrNoSelection is returned by actions that need selected rows.
	ErrNoSelection = errors.New("nothing selected")

	// ErrUnknownChannel is returned for a channel other than red, green or blue.
	ErrUnknownChannel = errors.New("unknown channel")
)

// EventKind classifies panel notifications.
type EventKind int

const (
	MaterialChanged EventKind = iota
	MaterialHidden
	MeshesChanged
	MattesChanged
)

// Event is delivered to subscribers after the action producing it returns.
type Event struct {
	Kind EventKind
	Row  Row
}

// Panel holds the display rows. It is driven from a single control thread.
type Panel struct {
	model *matte.Model
	log   *zap.Logger

	meshes   []*MeshRow
	mattes   []*MatteRow
	selected []Row

	subscribers []func(Event)
	pending     []Event
	busy        bool

	status string
}

// New creates an empty panel over model. A nil logger disables logging.
func New(model *matte.Model, log *zap.Logger) *Panel {
	if log == nil {
		log = zap.NewNop()
	}
	return &Panel{model: model, log: log}
}

// Model returns the domain model behind the panel.
func (p *Panel) Model() *matte.Model {
	return p.model
}

// Subscribe registers fn for notifications. Notifications raised during an
// action are delivered once the action has finished.
func (p *Panel) Subscribe(fn func(Event)) {
	p.subscribers = append(p.subscribers, fn)
}

// Status returns the message of the last user action.
func (p *Panel) Status() string {
	return p.status
}

// Meshes returns the bound mesh rows in binding order.
func (p *Panel) Meshes() []*MeshRow {
	return append([]*MeshRow(nil), p.meshes...)
}

// Mesh returns the row of a bound mesh, or nil.
func (p *Panel) Mesh(mesh scene.MeshRef) *MeshRow {
	for _, r := range p.meshes {
		if r.Mesh == mesh {
			return r
		}
	}
	return nil
}

// MaterialRows returns every visible material row, mesh by mesh.
func (p *Panel) MaterialRows() []*MaterialRow {
	var out []*MaterialRow
	for _, m := range p.meshes {
		out = append(out, m.Materials()...)
	}
	return out
}

// Mattes returns the multimatte rows.
func (p *Panel) Mattes() []*MatteRow {
	return append([]*MatteRow(nil), p.mattes...)
}

// Matte returns the row of the named multimatte, or nil.
func (p *Panel) Matte(name string) *MatteRow {
	for _, r := range p.mattes {
		if r.Label() == name {
			return r
		}
	}
	return nil
}

// Select replaces the selection. Order is kept: it decides which row of a
// multi-row edit is applied last.
func (p *Panel) Select(rows ...Row) {
	p.selected = p.selected[:0]
	p.AddToSelection(rows...)
}

// AddToSelection appends rows not already selected.
func (p *Panel) AddToSelection(rows ...Row) {
	for _, r := range rows {
		if !p.IsSelected(r) {
			p.selected = append(p.selected, r)
		}
	}
}

// Deselect drops rows from the selection.
func (p *Panel) Deselect(rows ...Row) {
	kept := p.selected[:0]
	for _, s := range p.selected {
		drop := false
		for _, r := range rows {
			if s == r {
				drop = true
				break
			}
		}
		if !drop {
			kept = append(kept, s)
		}
	}
	p.selected = kept
}

// SelectAll selects every mesh row and its material rows.
func (p *Panel) SelectAll() {
	p.selected = p.selected[:0]
	for _, m := range p.meshes {
		p.selected = append(p.selected, m)
		for _, r := range m.Materials() {
			p.selected = append(p.selected, r)
		}
	}
}

// SelectMaterials selects the visible rows showing the given materials, in
// the order the materials are given.
func (p *Panel) SelectMaterials(refs ...scene.MaterialRef) int {
	p.selected = p.selected[:0]
	for _, ref := range refs {
		for _, r := range p.MaterialRows() {
			if r.ref == ref {
				p.AddToSelection(r)
			}
		}
	}
	return len(p.selected)
}

// Selected returns the selection in selection order.
func (p *Panel) Selected() []Row {
	return append([]Row(nil), p.selected...)
}

// IsSelected reports whether r is selected.
func (p *Panel) IsSelected(r Row) bool {
	for _, s := range p.selected {
		if s == r {
			return true
		}
	}
	return false
}

// Activate selects the node behind a row in the host scene, the way a
// double click does.
func (p *Panel) Activate(r Row) error {
	var name string
	switch row := r.(type) {
	case *MeshRow:
		name = string(row.Mesh)
	case *MaterialRow:
		name = string(row.ref)
	case *MatteRow:
		name = row.Label()
	case *ChannelCell:
		name = row.matte.Label()
	default:
		return fmt.Errorf("activate: unsupported row %T", r)
	}
	if err := p.model.Scene().Select(name); err != nil {
		return p.warn("select in scene", err)
	}
	return nil
}

// ExpandAll expands every mesh row. It does not touch the scene.
func (p *Panel) ExpandAll() {
	for _, m := range p.meshes {
		m.Expanded = true
	}
}

// CollapseAll collapses every mesh row. It does not touch the scene.
func (p *Panel) CollapseAll() {
	for _, m := range p.meshes {
		m.Expanded = false
	}
}

func (p *Panel) emit(e Event) {
	p.pending = append(p.pending, e)
	if !p.busy {
		p.flush()
	}
}

// flush delivers queued notifications. Edits made by subscribers while
// they are being notified are refused with ErrBusy.
func (p *Panel) flush() {
	if len(p.pending) == 0 {
		return
	}
	p.busy = true
	defer func() { p.busy = false }()
	for len(p.pending) > 0 {
		e := p.pending[0]
		p.pending = p.pending[1:]
		for _, fn := range p.subscribers {
			fn(e)
		}
	}
}

// begin marks the start of an action; the returned func ends it. Only the
// outermost action delivers the notifications raised meanwhile: an action
// run by a subscriber during flush leaves the panel busy.
func (p *Panel) begin() func() {
	outer := !p.busy
	p.busy = true
	return func() {
		if !outer {
			return
		}
		p.busy = false
		p.flush()
	}
}

func (p *Panel) setStatus(format string, args ...interface{}) {
	p.status = fmt.Sprintf(format, args...)
}

// fail records the status of an action whose failure the domain model has
// already logged.
func (p *Panel) fail(action string, err error) error {
	p.setStatus("%s: %v", action, err)
	p.log.Debug(action+" failed", zap.Error(err))
	return err
}

// warn records the status of a failed action and logs it.
func (p *Panel) warn(action string, err error) error {
	p.setStatus("%s: %v", action, err)
	if errors.Is(err, scene.ErrNoAvailableID) {
		p.log.Error(action+" failed", zap.Error(err))
	} else {
		p.log.Warn(action+" failed", zap.Error(err))
	}
	return err
}
