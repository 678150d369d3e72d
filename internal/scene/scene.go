// Package scene defines the boundary to the host application's scene graph.
//
// Everything the matte panel knows about materials and multimatte render
// elements is read from and written to an Adapter. The host scene is the
// single source of truth; nothing above this package persists state.
package scene

import "strings"

// MeshRef names a mesh shape node in the host scene.
type MeshRef string

// MaterialRef names a shading material node in the host scene.
type MaterialRef string

// MatteRef names a multimatte render element node in the host scene.
type MatteRef string

// ShortName strips any namespace prefix ("char:body_MTL" -> "body_MTL").
func ShortName(name string) string {
	if i := strings.LastIndex(name, ":"); i >= 0 {
		return name[i+1:]
	}
	return name
}

// Channels holds the three channel IDs of a multimatte record.
type Channels struct {
	Red            ID
	Green          ID
	Blue           ID
	UsesMaterialID bool
}

// Slice returns the channels in red, green, blue order.
func (c Channels) Slice() [3]ID {
	return [3]ID{c.Red, c.Green, c.Blue}
}

// Adapter is the host scene capability consumed by the domain model.
//
// Mutating calls that belong to one logical user action must run inside
// WithUndoScope so a single undo reverts all of them.
type Adapter interface {
	// SelectedMeshes returns the meshes currently selected in the viewport.
	SelectedMeshes() []MeshRef

	// Select replaces the host selection with the named nodes.
	Select(names ...string) error

	// MaterialsForMesh groups the materials assigned to mesh by their
	// current ID. Materials without an ID are grouped under the unset ID.
	MaterialsForMesh(mesh MeshRef) (map[ID][]MaterialRef, error)

	// AllMaterials lists every material that is assigned through a shading group.
	AllMaterials() []MaterialRef

	// MaterialExists reports whether ref still resolves to a live material.
	MaterialExists(ref MaterialRef) bool

	MaterialID(ref MaterialRef) (ID, error)
	SetMaterialID(ref MaterialRef, id ID) error

	// LowestUnusedID returns the smallest ID not assigned to any material.
	// Zero is only eligible when includeZero is true.
	LowestUnusedID(includeZero bool) (int, error)

	// Multimattes lists multimatte records in creation order.
	Multimattes(onlyMaterialIDBased bool) []MatteRef

	CreateMultimatte() (MatteRef, error)

	// RenameMultimatte renames ref and returns the name the host actually
	// used, which may differ from name when it collides.
	RenameMultimatte(ref MatteRef, name string) (MatteRef, error)

	DeleteMultimattes(refs []MatteRef) error

	Channels(ref MatteRef) (Channels, error)
	SetChannels(ref MatteRef, red, green, blue ID) error
	SetUsesMaterialID(ref MatteRef, uses bool) error

	// WithUndoScope runs fn with every mutation recorded into one undo
	// transaction. The transaction is closed on every exit path; mutations
	// made before a failure stay committed.
	WithUndoScope(fn func() error) error

	// Undo reverts the most recent transaction.
	Undo() error
}
