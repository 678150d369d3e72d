package matte

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/mattework/internal/scene"
)

// IDView is a display row bound to a material's ID.
//
// ShowID is a programmatic update: implementations must not call back into
// the model from it.
type IDView interface {
	ShowID(id scene.ID)
	Hide()
}

// Material wraps one live scene material, its cached ID and the rows
// currently showing it.
type Material struct {
	ref   scene.MaterialRef
	id    scene.ID
	views []IDView
	model *Model
}

// Ref returns the full scene name of the material.
func (m *Material) Ref() scene.MaterialRef {
	return m.ref
}

// Name returns the namespace-stripped display name.
func (m *Material) Name() string {
	return scene.ShortName(string(m.ref))
}

// ID returns the last confirmed ID.
func (m *Material) ID() scene.ID {
	return m.id
}

// Views returns the number of bound rows.
func (m *Material) Views() int {
	return len(m.views)
}

// ChangeID validates text, writes it to the scene, re-reads the committed
// value and shows it on every bound row. Invalid text leaves the scene
// untouched and reverts the rows to the last confirmed value.
func (m *Material) ChangeID(text string) error {
	id, err := ParseID(text)
	if err != nil {
		m.show(m.id)
		return err
	}
	return m.Assign(id, true)
}

// Assign writes id to the scene. With looping set the committed value is
// re-read and fanned out to all bound rows; without it only the cache is
// updated and no row is notified.
//
// Clearing a material that has no ID in the scene is a no-op and never
// writes. The scene is re-read first since the cache may be stale.
func (m *Material) Assign(id scene.ID, looping bool) error {
	if !id.IsSet() {
		if current, err := m.model.scene.MaterialID(m.ref); err == nil {
			m.id = current
		}
		if !m.id.IsSet() {
			return nil
		}
	}
	if !m.model.scene.MaterialExists(m.ref) {
		m.model.drop(m)
		return fmt.Errorf("material %s: %w", m.ref, scene.ErrInvalidReference)
	}
	if err := m.model.scene.SetMaterialID(m.ref, id); err != nil {
		if errors.Is(err, scene.ErrInvalidReference) {
			m.model.drop(m)
		} else {
			m.show(m.id)
		}
		return err
	}
	if !looping {
		m.id = id
		return nil
	}
	m.model.log.Debug("material id changed",
		zap.String("material", string(m.ref)),
		zap.Stringer("id", id))
	return m.Sync()
}

// Sync re-reads the ID from the scene and shows it on every bound row.
func (m *Material) Sync() error {
	id, err := m.model.scene.MaterialID(m.ref)
	if err != nil {
		if errors.Is(err, scene.ErrInvalidReference) {
			m.model.drop(m)
		}
		return err
	}
	m.id = id
	m.show(id)
	return nil
}

// Unbind detaches a row. A material left without rows leaves the registry.
func (m *Material) Unbind(v IDView) {
	for i, view := range m.views {
		if view == v {
			m.views = append(m.views[:i], m.views[i+1:]...)
			break
		}
	}
	if len(m.views) == 0 {
		delete(m.model.materials, m.ref)
	}
}

func (m *Material) show(id scene.ID) {
	for _, v := range m.views {
		v.ShowID(id)
	}
}

func (m *Material) hide() {
	for _, v := range m.views {
		v.Hide()
	}
	m.views = nil
}
