// Package matte is the domain model of the matte panel: the registry of
// materials shown in the panel, the multimatte records of the scene, and
// the batching of material IDs into RGB mattes.
package matte

import (
	"errors"
	"fmt"
	"sort"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Faultbox/mattework/internal/scene"
)

// DefaultSuffix is appended to generated multimatte names.
const DefaultSuffix = "_matte"

// Config holds domain model settings.
type Config struct {
	// Suffix is appended to generated multimatte names.
	Suffix string
	// IncludeZero lets ID allocation hand out 0. The renderer treats 0 as
	// "no matte", so it is off by default.
	IncludeZero bool
}

// DefaultConfig returns the default domain settings.
func DefaultConfig() Config {
	return Config{Suffix: DefaultSuffix}
}

// Model owns the material and multimatte registries. All scene access goes
// through the adapter.
type Model struct {
	scene     scene.Adapter
	cfg       Config
	log       *zap.Logger
	materials map[scene.MaterialRef]*Material
	mattes    []*Record
}

// New creates a model over adapter. A nil logger disables logging.
func New(adapter scene.Adapter, cfg Config, log *zap.Logger) *Model {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.Suffix == "" {
		cfg.Suffix = DefaultSuffix
	}
	return &Model{
		scene:     adapter,
		cfg:       cfg,
		log:       log,
		materials: make(map[scene.MaterialRef]*Material),
	}
}

// Scene returns the adapter the model works on.
func (m *Model) Scene() scene.Adapter {
	return m.scene
}

// Bind attaches view to the material named ref, registering the material
// on first use.
func (m *Model) Bind(ref scene.MaterialRef, view IDView) (*Material, error) {
	mat, ok := m.materials[ref]
	if !ok {
		id, err := m.scene.MaterialID(ref)
		if err != nil {
			return nil, err
		}
		mat = &Material{ref: ref, id: id, model: m}
		m.materials[ref] = mat
	}
	mat.views = append(mat.views, view)
	view.ShowID(mat.id)
	return mat, nil
}

// Material returns the registered material for ref, or nil.
func (m *Model) Material(ref scene.MaterialRef) *Material {
	return m.materials[ref]
}

// Materials returns the registered materials sorted by name.
func (m *Model) Materials() []*Material {
	out := make([]*Material, 0, len(m.materials))
	for _, mat := range m.materials {
		out = append(out, mat)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ref < out[j].ref })
	return out
}

// Refresh reconciles the registries with the scene. Materials that no
// longer exist hide their rows and leave the registry; surviving ones
// re-read their ID and push it to their rows.
func (m *Model) Refresh() error {
	var errs error
	for _, mat := range m.Materials() {
		if !m.scene.MaterialExists(mat.ref) {
			m.log.Debug("material gone", zap.String("material", string(mat.ref)))
			m.drop(mat)
			continue
		}
		if err := mat.Sync(); err != nil && !errors.Is(err, scene.ErrInvalidReference) {
			errs = multierr.Append(errs, err)
		}
	}
	return multierr.Append(errs, m.ReloadMattes())
}

// Undo reverts the last scene transaction and refreshes.
func (m *Model) Undo() error {
	if err := m.scene.Undo(); err != nil {
		return fmt.Errorf("undo: %w", err)
	}
	m.log.Info("undo")
	return m.Refresh()
}

// LowestUnusedID returns the next free material ID.
func (m *Model) LowestUnusedID(includeZero bool) (int, error) {
	return m.scene.LowestUnusedID(includeZero)
}

// MaterialsWithID lists the scene materials carrying id.
func (m *Model) MaterialsWithID(id int) []scene.MaterialRef {
	var out []scene.MaterialRef
	for _, ref := range m.scene.AllMaterials() {
		got, err := m.scene.MaterialID(ref)
		if err != nil {
			continue
		}
		if v, ok := got.Get(); ok && v == id {
			out = append(out, ref)
		}
	}
	return out
}

func (m *Model) drop(mat *Material) {
	mat.hide()
	delete(m.materials, mat.ref)
}
