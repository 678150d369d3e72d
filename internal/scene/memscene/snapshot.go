package memscene

import (
	"fmt"

	"github.com/Faultbox/mattework/internal/scene"
)

// Snapshot is the serializable state of a Scene. Undo history is not part
// of a snapshot.
type Snapshot struct {
	Meshes    []Mesh     `yaml:"meshes" json:"meshes"`
	Materials []Material `yaml:"materials" json:"materials"`
	Mattes    []Matte    `yaml:"mattes" json:"mattes"`
	Selection []string   `yaml:"selection,omitempty" json:"selection,omitempty"`
}

// Snapshot exports the current state. Materials are sorted by name.
func (s *Scene) Snapshot() Snapshot {
	var snap Snapshot
	for _, ref := range s.Meshes() {
		m := s.meshes[string(ref)]
		snap.Meshes = append(snap.Meshes, Mesh{Name: m.Name, Materials: append([]string(nil), m.Materials...)})
	}
	for _, ref := range s.AllMaterials() {
		snap.Materials = append(snap.Materials, *s.materials[string(ref)])
	}
	for _, m := range s.mattes {
		snap.Mattes = append(snap.Mattes, *m)
	}
	snap.Selection = s.Selection()
	return snap
}

// Validate rejects negative material and channel IDs.
func (snap Snapshot) Validate() error {
	for _, m := range snap.Materials {
		if v, ok := m.ID.Get(); ok && v < 0 {
			return fmt.Errorf("material %s: negative id %d", m.Name, v)
		}
	}
	for _, m := range snap.Mattes {
		for _, id := range []scene.ID{m.Red, m.Green, m.Blue} {
			if v, ok := id.Get(); ok && v < 0 {
				return fmt.Errorf("multimatte %s: negative id %d", m.Name, v)
			}
		}
	}
	return nil
}

// FromSnapshot builds a scene from exported state.
func FromSnapshot(snap Snapshot, opts ...Option) *Scene {
	s := New(opts...)
	for _, m := range snap.Materials {
		mtl := s.AddMaterial(m.Name, m.ID)
		mtl.Locked = m.Locked
	}
	for _, m := range snap.Meshes {
		s.AddMesh(m.Name, m.Materials...)
	}
	for _, m := range snap.Mattes {
		s.AddMatte(m)
	}
	s.SetSelection(snap.Selection...)
	return s
}
