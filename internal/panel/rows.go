package panel

import (
	"github.com/Faultbox/mattework/internal/matte"
	"github.com/Faultbox/mattework/internal/scene"
)

// Row is any row or cell of the two panel tables.
type Row interface {
	// Label is the text the row displays in its first column.
	Label() string
	row()
}

// MeshRow groups the material rows of one bound mesh.
type MeshRow struct {
	Mesh      scene.MeshRef
	Expanded  bool
	materials []*MaterialRow
}

// Label returns the namespace-stripped mesh name.
func (r *MeshRow) Label() string {
	return scene.ShortName(string(r.Mesh))
}

// Materials returns the visible material rows, assigned IDs first.
func (r *MeshRow) Materials() []*MaterialRow {
	out := make([]*MaterialRow, 0, len(r.materials))
	for _, m := range r.materials {
		if !m.hidden {
			out = append(out, m)
		}
	}
	return out
}

func (r *MeshRow) row() {}

// MaterialRow shows one material of a mesh and its editable ID cell.
type MaterialRow struct {
	mesh     *MeshRow
	ref      scene.MaterialRef
	material *matte.Material
	text     string
	hidden   bool
	panel    *Panel
}

// Label returns the namespace-stripped material name.
func (r *MaterialRow) Label() string {
	return scene.ShortName(string(r.ref))
}

// Ref returns the material's scene name.
func (r *MaterialRow) Ref() scene.MaterialRef {
	return r.ref
}

// Mesh returns the mesh row this material belongs to.
func (r *MaterialRow) Mesh() *MeshRow {
	return r.mesh
}

// Text returns the ID cell text. An unset ID shows as "".
func (r *MaterialRow) Text() string {
	return r.text
}

// Hidden reports whether the material vanished from the scene.
func (r *MaterialRow) Hidden() bool {
	return r.hidden
}

// ShowID is called by the domain model with a confirmed value. It only
// updates the cell and queues a notification.
func (r *MaterialRow) ShowID(id scene.ID) {
	r.setText(id.String())
}

func (r *MaterialRow) setText(text string) {
	if text == r.text {
		return
	}
	r.text = text
	r.panel.emit(Event{Kind: MaterialChanged, Row: r})
}

// Hide is called by the domain model when the material no longer exists.
func (r *MaterialRow) Hide() {
	if r.hidden {
		return
	}
	r.hidden = true
	r.panel.emit(Event{Kind: MaterialHidden, Row: r})
}

func (r *MaterialRow) row() {}

// Channel indexes the red, green and blue cells of a matte row.
type Channel int

const (
	Red Channel = iota
	Green
	Blue
)

func (c Channel) String() string {
	switch c {
	case Red:
		return "red"
	case Green:
		return "green"
	case Blue:
		return "blue"
	default:
		return "unknown"
	}
}

// MatteRow shows one multimatte record and its channel cells.
type MatteRow struct {
	record *matte.Record
	Cells  [3]*ChannelCell
}

func newMatteRow(rec *matte.Record) *MatteRow {
	r := &MatteRow{record: rec}
	for i := range r.Cells {
		r.Cells[i] = &ChannelCell{matte: r, Channel: Channel(i)}
	}
	r.sync()
	return r
}

// Label returns the record name.
func (r *MatteRow) Label() string {
	return r.record.Name()
}

// Record returns the domain record behind the row.
func (r *MatteRow) Record() *matte.Record {
	return r.record
}

func (r *MatteRow) sync() {
	for i, id := range r.record.Channels().Slice() {
		r.Cells[i].text = id.String()
	}
}

func (r *MatteRow) row() {}

// ChannelCell is the editable red, green or blue cell of a matte row.
type ChannelCell struct {
	matte   *MatteRow
	Channel Channel
	text    string
}

// Label returns the cell text: the channel ID, or "" when unset.
func (c *ChannelCell) Label() string {
	return c.text
}

// Matte returns the row the cell belongs to.
func (c *ChannelCell) Matte() *MatteRow {
	return c.matte
}

func (c *ChannelCell) row() {}
