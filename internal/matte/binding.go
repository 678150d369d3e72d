package matte

import (
	"sort"

	"github.com/Faultbox/mattework/internal/scene"
)

// MaterialEntry is one material applied to a mesh with the ID it had when
// the mesh was scanned.
type MaterialEntry struct {
	Ref scene.MaterialRef
	ID  scene.ID
}

// MeshBinding groups a mesh with its materials, partitioned by whether an
// ID is assigned.
type MeshBinding struct {
	Mesh       scene.MeshRef
	Assigned   []MaterialEntry
	Unassigned []MaterialEntry
}

// Entries returns assigned materials (by ID) followed by unassigned ones.
func (b MeshBinding) Entries() []MaterialEntry {
	out := make([]MaterialEntry, 0, len(b.Assigned)+len(b.Unassigned))
	out = append(out, b.Assigned...)
	return append(out, b.Unassigned...)
}

// SelectedMeshes returns the meshes selected in the host viewport.
func (m *Model) SelectedMeshes() []scene.MeshRef {
	return m.scene.SelectedMeshes()
}

// ScanMesh reads the materials applied to mesh.
func (m *Model) ScanMesh(mesh scene.MeshRef) (MeshBinding, error) {
	groups, err := m.scene.MaterialsForMesh(mesh)
	if err != nil {
		return MeshBinding{}, err
	}
	b := MeshBinding{Mesh: mesh}
	for id, refs := range groups {
		for _, ref := range refs {
			e := MaterialEntry{Ref: ref, ID: id}
			if id.IsSet() {
				b.Assigned = append(b.Assigned, e)
			} else {
				b.Unassigned = append(b.Unassigned, e)
			}
		}
	}
	sort.Slice(b.Assigned, func(i, j int) bool {
		if b.Assigned[i].ID != b.Assigned[j].ID {
			return b.Assigned[i].ID.Int() < b.Assigned[j].ID.Int()
		}
		return b.Assigned[i].Ref < b.Assigned[j].Ref
	})
	sort.Slice(b.Unassigned, func(i, j int) bool { return b.Unassigned[i].Ref < b.Unassigned[j].Ref })
	return b, nil
}
