// Package memscene is an in-memory host scene implementing scene.Adapter.
//
// It models the parts of a host document the matte panel touches: meshes
// with their shading assignments, materials carrying an optional ID
// attribute, and multimatte render elements. Mutations are recorded as
// inverse operations grouped into undo transactions.
package memscene

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Faultbox/mattework/internal/scene"
)

// DefaultMaxID is the largest material ID handed out by LowestUnusedID.
const DefaultMaxID = 65535

// DefaultMatteName is the node name given to freshly created multimattes.
const DefaultMatteName = "vrayRE_Multi_Matte"

// Mesh is a mesh shape with the materials assigned to it.
type Mesh struct {
	Name      string   `yaml:"name" json:"name"`
	Materials []string `yaml:"materials" json:"materials"`
}

// Material is a shading material node.
type Material struct {
	Name   string   `yaml:"name" json:"name"`
	ID     scene.ID `yaml:"id" json:"id"`
	Locked bool     `yaml:"locked,omitempty" json:"locked,omitempty"`
}

// Matte is a multimatte render element node.
type Matte struct {
	Name           string   `yaml:"name" json:"name"`
	Label          string   `yaml:"label,omitempty" json:"label,omitempty"`
	Red            scene.ID `yaml:"red" json:"red"`
	Green          scene.ID `yaml:"green" json:"green"`
	Blue           scene.ID `yaml:"blue" json:"blue"`
	UsesMaterialID bool     `yaml:"use_material_id" json:"use_material_id"`
	Locked         bool     `yaml:"locked,omitempty" json:"locked,omitempty"`
}

type transaction struct {
	id      uuid.UUID
	inverse []func()
}

// Scene is an in-memory host document. It is not safe for concurrent use;
// the panel drives it from a single control thread.
type Scene struct {
	meshes    map[string]*Mesh
	meshOrder []string
	materials map[string]*Material
	mattes    []*Matte
	selection []string

	maxID int

	history   []*transaction
	open      *transaction
	replaying bool

	writes   int
	idWrites map[string]int

	log *zap.Logger
}

// Option configures a Scene.
type Option func(*Scene)

// WithLogger sets the logger used for undo bookkeeping.
func WithLogger(log *zap.Logger) Option {
	return func(s *Scene) {
		if log != nil {
			s.log = log
		}
	}
}

// WithMaxID bounds the IDs LowestUnusedID may return.
func WithMaxID(max int) Option {
	return func(s *Scene) {
		if max >= 0 {
			s.maxID = max
		}
	}
}

// New creates an empty scene.
func New(opts ...Option) *Scene {
	s := &Scene{
		meshes:    make(map[string]*Mesh),
		materials: make(map[string]*Material),
		maxID:     DefaultMaxID,
		idWrites:  make(map[string]int),
		log:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ scene.Adapter = (*Scene)(nil)

// AddMaterial adds a material node outside of undo. Used to build scenes.
func (s *Scene) AddMaterial(name string, id scene.ID) *Material {
	m := &Material{Name: name, ID: id}
	s.materials[name] = m
	return m
}

// AddMesh adds a mesh assigned to the given materials outside of undo.
func (s *Scene) AddMesh(name string, materials ...string) *Mesh {
	if _, ok := s.meshes[name]; !ok {
		s.meshOrder = append(s.meshOrder, name)
	}
	m := &Mesh{Name: name, Materials: append([]string(nil), materials...)}
	s.meshes[name] = m
	return m
}

// AddMatte adds a multimatte node outside of undo.
func (s *Scene) AddMatte(m Matte) *Matte {
	if m.Label == "" {
		m.Label = m.Name
	}
	mm := m
	s.mattes = append(s.mattes, &mm)
	return &mm
}

// RemoveMaterial deletes a material out of band, as if another tool did it.
func (s *Scene) RemoveMaterial(name string) {
	delete(s.materials, name)
}

// RenameMaterial renames a material out of band. Mesh assignments follow.
func (s *Scene) RenameMaterial(oldName, newName string) {
	m, ok := s.materials[oldName]
	if !ok {
		return
	}
	delete(s.materials, oldName)
	m.Name = newName
	s.materials[newName] = m
	for _, mesh := range s.meshes {
		for i, name := range mesh.Materials {
			if name == oldName {
				mesh.Materials[i] = newName
			}
		}
	}
}

// SetSelection replaces the viewport selection without validation.
func (s *Scene) SetSelection(names ...string) {
	s.selection = append([]string(nil), names...)
}

// Selection returns the current viewport selection.
func (s *Scene) Selection() []string {
	return append([]string(nil), s.selection...)
}

// Writes counts committed mutations, including undo replays.
func (s *Scene) Writes() int {
	return s.writes
}

// IDWrites counts SetMaterialID calls that reached the named material.
func (s *Scene) IDWrites(material string) int {
	return s.idWrites[material]
}

// UndoDepth returns the number of undoable transactions.
func (s *Scene) UndoDepth() int {
	return len(s.history)
}

// Meshes lists all meshes in insertion order.
func (s *Scene) Meshes() []scene.MeshRef {
	refs := make([]scene.MeshRef, 0, len(s.meshOrder))
	for _, name := range s.meshOrder {
		if _, ok := s.meshes[name]; ok {
			refs = append(refs, scene.MeshRef(name))
		}
	}
	return refs
}

// SelectedMeshes returns selected nodes that are meshes.
func (s *Scene) SelectedMeshes() []scene.MeshRef {
	var refs []scene.MeshRef
	for _, name := range s.selection {
		if _, ok := s.meshes[name]; ok {
			refs = append(refs, scene.MeshRef(name))
		}
	}
	return refs
}

// Select replaces the selection. Every name must resolve to a node.
func (s *Scene) Select(names ...string) error {
	for _, name := range names {
		if !s.nodeExists(name) {
			return fmt.Errorf("select %q: %w", name, scene.ErrInvalidReference)
		}
	}
	s.SetSelection(names...)
	return nil
}

// MaterialsForMesh groups the mesh's materials by ID. Assignments to
// materials that no longer exist are skipped.
func (s *Scene) MaterialsForMesh(mesh scene.MeshRef) (map[scene.ID][]scene.MaterialRef, error) {
	m, ok := s.meshes[string(mesh)]
	if !ok {
		return nil, fmt.Errorf("mesh %q: %w", mesh, scene.ErrInvalidReference)
	}
	groups := make(map[scene.ID][]scene.MaterialRef)
	seen := make(map[string]bool)
	for _, name := range m.Materials {
		mtl, ok := s.materials[name]
		if !ok || seen[name] {
			continue
		}
		seen[name] = true
		groups[mtl.ID] = append(groups[mtl.ID], scene.MaterialRef(name))
	}
	return groups, nil
}

// AllMaterials lists every material node sorted by name.
func (s *Scene) AllMaterials() []scene.MaterialRef {
	names := make([]string, 0, len(s.materials))
	for name := range s.materials {
		names = append(names, name)
	}
	sort.Strings(names)
	refs := make([]scene.MaterialRef, len(names))
	for i, name := range names {
		refs[i] = scene.MaterialRef(name)
	}
	return refs
}

// MaterialExists reports whether ref names a live material.
func (s *Scene) MaterialExists(ref scene.MaterialRef) bool {
	_, ok := s.materials[string(ref)]
	return ok
}

// MaterialID returns the ID attribute of a material.
func (s *Scene) MaterialID(ref scene.MaterialRef) (scene.ID, error) {
	m, ok := s.materials[string(ref)]
	if !ok {
		return scene.NoID, fmt.Errorf("material %q: %w", ref, scene.ErrInvalidReference)
	}
	return m.ID, nil
}

// SetMaterialID sets or clears the ID attribute of a material.
func (s *Scene) SetMaterialID(ref scene.MaterialRef, id scene.ID) error {
	m, ok := s.materials[string(ref)]
	if !ok {
		return fmt.Errorf("material %q is not a valid material: %w", ref, scene.ErrInvalidReference)
	}
	if m.Locked {
		return fmt.Errorf("material %q is locked: %w", ref, scene.ErrMutation)
	}
	if v, set := id.Get(); set && v < 0 {
		return fmt.Errorf("material %q: negative id %d: %w", ref, v, scene.ErrMutation)
	}
	prev := m.ID
	m.ID = id
	s.idWrites[m.Name]++
	s.record(func() { m.ID = prev })
	return nil
}

// LowestUnusedID returns the smallest ID no material carries.
func (s *Scene) LowestUnusedID(includeZero bool) (int, error) {
	used := make(map[int]bool, len(s.materials))
	for _, m := range s.materials {
		if v, ok := m.ID.Get(); ok {
			used[v] = true
		}
	}
	start := 1
	if includeZero {
		start = 0
	}
	for n := start; n <= s.maxID; n++ {
		if !used[n] {
			return n, nil
		}
	}
	return 0, fmt.Errorf("all ids in [%d, %d] are taken: %w", start, s.maxID, scene.ErrNoAvailableID)
}

// Multimattes lists multimatte nodes in creation order.
func (s *Scene) Multimattes(onlyMaterialIDBased bool) []scene.MatteRef {
	var refs []scene.MatteRef
	for _, m := range s.mattes {
		if onlyMaterialIDBased && !m.UsesMaterialID {
			continue
		}
		refs = append(refs, scene.MatteRef(m.Name))
	}
	return refs
}

// CreateMultimatte adds a multimatte with default settings.
func (s *Scene) CreateMultimatte() (scene.MatteRef, error) {
	name := s.uniqueName(DefaultMatteName)
	m := &Matte{Name: name, Label: name}
	s.mattes = append(s.mattes, m)
	s.record(func() { s.removeMatte(m) })
	return scene.MatteRef(name), nil
}

// RenameMultimatte renames a multimatte, making the name unique.
func (s *Scene) RenameMultimatte(ref scene.MatteRef, name string) (scene.MatteRef, error) {
	m := s.matte(string(ref))
	if m == nil {
		return ref, fmt.Errorf("multimatte %q: %w", ref, scene.ErrInvalidReference)
	}
	name = strings.TrimSpace(name)
	if name == "" || m.Locked {
		return ref, fmt.Errorf("rename %q to %q: %w", ref, name, scene.ErrMutation)
	}
	if name == m.Name {
		return ref, nil
	}
	prevName, prevLabel := m.Name, m.Label
	m.Name = s.uniqueName(name)
	m.Label = m.Name
	s.record(func() { m.Name, m.Label = prevName, prevLabel })
	return scene.MatteRef(m.Name), nil
}

// DeleteMultimattes removes the named multimattes. Nothing is deleted if
// any reference does not resolve.
func (s *Scene) DeleteMultimattes(refs []scene.MatteRef) error {
	targets := make(map[*Matte]bool, len(refs))
	for _, ref := range refs {
		m := s.matte(string(ref))
		if m == nil {
			return fmt.Errorf("delete %q: %w", ref, scene.ErrInvalidReference)
		}
		if m.Locked {
			return fmt.Errorf("delete %q: locked: %w", ref, scene.ErrMutation)
		}
		targets[m] = true
	}
	if len(targets) == 0 {
		return nil
	}
	prev := append([]*Matte(nil), s.mattes...)
	kept := s.mattes[:0:0]
	for _, m := range s.mattes {
		if !targets[m] {
			kept = append(kept, m)
		}
	}
	s.mattes = kept
	s.record(func() { s.mattes = prev })
	return nil
}

// Channels returns the channel attributes of a multimatte.
func (s *Scene) Channels(ref scene.MatteRef) (scene.Channels, error) {
	m := s.matte(string(ref))
	if m == nil {
		return scene.Channels{}, fmt.Errorf("multimatte %q: %w", ref, scene.ErrInvalidReference)
	}
	return scene.Channels{Red: m.Red, Green: m.Green, Blue: m.Blue, UsesMaterialID: m.UsesMaterialID}, nil
}

// SetChannels writes all three channel IDs of a multimatte.
func (s *Scene) SetChannels(ref scene.MatteRef, red, green, blue scene.ID) error {
	m := s.matte(string(ref))
	if m == nil {
		return fmt.Errorf("multimatte %q: %w", ref, scene.ErrInvalidReference)
	}
	if m.Locked {
		return fmt.Errorf("multimatte %q is locked: %w", ref, scene.ErrMutation)
	}
	for _, id := range []scene.ID{red, green, blue} {
		if v, set := id.Get(); set && v < 0 {
			return fmt.Errorf("multimatte %q: negative id %d: %w", ref, v, scene.ErrMutation)
		}
	}
	r, g, b := m.Red, m.Green, m.Blue
	m.Red, m.Green, m.Blue = red, green, blue
	s.record(func() { m.Red, m.Green, m.Blue = r, g, b })
	return nil
}

// SetUsesMaterialID toggles whether the multimatte selects by material ID.
func (s *Scene) SetUsesMaterialID(ref scene.MatteRef, uses bool) error {
	m := s.matte(string(ref))
	if m == nil {
		return fmt.Errorf("multimatte %q: %w", ref, scene.ErrInvalidReference)
	}
	if m.Locked {
		return fmt.Errorf("multimatte %q is locked: %w", ref, scene.ErrMutation)
	}
	prev := m.UsesMaterialID
	m.UsesMaterialID = uses
	s.record(func() { m.UsesMaterialID = prev })
	return nil
}

// WithUndoScope groups the mutations made by fn into one transaction.
// Nested scopes join the outermost one.
func (s *Scene) WithUndoScope(fn func() error) error {
	if s.open != nil {
		return fn()
	}
	txn := &transaction{id: uuid.New()}
	s.open = txn
	defer func() {
		s.open = nil
		if len(txn.inverse) > 0 {
			s.history = append(s.history, txn)
			s.log.Debug("undo scope closed",
				zap.Stringer("txn", txn.id),
				zap.Int("mutations", len(txn.inverse)))
		}
	}()
	return fn()
}

// Undo reverts the most recent transaction. An empty history is a no-op.
func (s *Scene) Undo() error {
	if s.open != nil {
		return fmt.Errorf("undo inside an open undo scope: %w", scene.ErrMutation)
	}
	if len(s.history) == 0 {
		s.log.Debug("nothing to undo")
		return nil
	}
	txn := s.history[len(s.history)-1]
	s.history = s.history[:len(s.history)-1]

	s.replaying = true
	for i := len(txn.inverse) - 1; i >= 0; i-- {
		txn.inverse[i]()
		s.writes++
	}
	s.replaying = false

	s.log.Debug("undo", zap.Stringer("txn", txn.id), zap.Int("mutations", len(txn.inverse)))
	return nil
}

func (s *Scene) record(inverse func()) {
	s.writes++
	if s.replaying {
		return
	}
	if s.open != nil {
		s.open.inverse = append(s.open.inverse, inverse)
		return
	}
	s.history = append(s.history, &transaction{id: uuid.New(), inverse: []func(){inverse}})
}

func (s *Scene) matte(name string) *Matte {
	for _, m := range s.mattes {
		if m.Name == name {
			return m
		}
	}
	return nil
}

func (s *Scene) removeMatte(target *Matte) {
	for i, m := range s.mattes {
		if m == target {
			s.mattes = append(s.mattes[:i:i], s.mattes[i+1:]...)
			return
		}
	}
}

func (s *Scene) nodeExists(name string) bool {
	if _, ok := s.meshes[name]; ok {
		return true
	}
	if _, ok := s.materials[name]; ok {
		return true
	}
	return s.matte(name) != nil
}

// uniqueName returns base, or base with a numeric suffix when taken.
func (s *Scene) uniqueName(base string) string {
	if !s.nodeExists(base) {
		return base
	}
	stem := strings.TrimRight(base, "0123456789")
	if stem == "" {
		stem = base
	}
	for n := 1; ; n++ {
		candidate := stem + strconv.Itoa(n)
		if !s.nodeExists(candidate) {
			return candidate
		}
	}
}
