package matte

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Faultbox/mattework/internal/scene"
)

// channelsPerMatte is the number of IDs one multimatte can carry.
const channelsPerMatte = 3

// ShortForm is the part of a material name used in generated matte names:
// the namespace-stripped name up to its first underscore.
func ShortForm(ref scene.MaterialRef) string {
	name := scene.ShortName(string(ref))
	if i := strings.Index(name, "_"); i > 0 {
		return name[:i]
	}
	return name
}

// MatteName joins the short forms of materials with "_" and appends suffix.
func MatteName(materials []scene.MaterialRef, suffix string) string {
	parts := make([]string, len(materials))
	for i, ref := range materials {
		parts[i] = ShortForm(ref)
	}
	return strings.Join(parts, "_") + suffix
}

// MakeMultimatte builds material-ID multimattes from materials, in order.
//
// Materials without an ID get the lowest unused one, written to the scene
// before the next material is resolved. Materials sharing an ID collapse to
// the first one seen. Distinct IDs are packed three per record into red,
// green and blue; a short final chunk leaves its remaining channels unset.
//
// Everything runs in one undo scope. When a step fails the operation stops
// and returns the records already created together with the error; those
// records stay in the scene.
func (m *Model) MakeMultimatte(materials []scene.MaterialRef) ([]*Record, error) {
	var created []*Record
	err := m.scene.WithUndoScope(func() error {
		var order []scene.ID
		first := make(map[scene.ID]scene.MaterialRef)
		for _, ref := range materials {
			id, err := m.resolveID(ref)
			if err != nil {
				return err
			}
			if _, seen := first[id]; seen {
				continue
			}
			first[id] = ref
			order = append(order, id)
		}

		for start := 0; start < len(order); start += channelsPerMatte {
			end := start + channelsPerMatte
			if end > len(order) {
				end = len(order)
			}
			chunk := order[start:end]
			names := make([]scene.MaterialRef, len(chunk))
			for i, id := range chunk {
				names[i] = first[id]
			}
			rec, err := m.createRecord(chunk, names)
			if err != nil {
				return err
			}
			created = append(created, rec)
		}
		return nil
	})

	for _, ref := range materials {
		if mat := m.materials[ref]; mat != nil {
			if syncErr := mat.Sync(); syncErr != nil && !errors.Is(syncErr, scene.ErrInvalidReference) {
				err = multierr.Append(err, syncErr)
			}
		}
	}
	err = multierr.Append(err, m.ReloadMattes())
	for i, rec := range created {
		if loaded := m.Matte(rec.Name()); loaded != nil {
			created[i] = loaded
		}
	}

	if err != nil {
		if errors.Is(err, scene.ErrNoAvailableID) {
			m.log.Error("make multimatte failed", zap.Int("created", len(created)), zap.Error(err))
		} else {
			m.log.Warn("make multimatte failed", zap.Int("created", len(created)), zap.Error(err))
		}
		return created, err
	}
	m.log.Info("made multimattes", zap.Int("materials", len(materials)), zap.Int("created", len(created)))
	return created, nil
}

// resolveID returns the material's ID, allocating and persisting the
// lowest unused one when it has none.
func (m *Model) resolveID(ref scene.MaterialRef) (scene.ID, error) {
	id, err := m.scene.MaterialID(ref)
	if err != nil {
		return scene.NoID, fmt.Errorf("resolving %s: %w", ref, err)
	}
	if id.IsSet() {
		return id, nil
	}
	n, err := m.scene.LowestUnusedID(m.cfg.IncludeZero)
	if err != nil {
		return scene.NoID, err
	}
	if err := m.scene.SetMaterialID(ref, scene.IDOf(n)); err != nil {
		return scene.NoID, fmt.Errorf("assigning id %d to %s: %w", n, ref, err)
	}
	m.log.Info("assigned new unique id", zap.String("material", string(ref)), zap.Int("id", n))
	// The host is authoritative for the committed value.
	id, err = m.scene.MaterialID(ref)
	if err != nil {
		return scene.NoID, err
	}
	if !id.IsSet() {
		return scene.NoID, fmt.Errorf("id of %s not committed: %w", ref, scene.ErrMutation)
	}
	return id, nil
}

func (m *Model) createRecord(ids []scene.ID, materials []scene.MaterialRef) (*Record, error) {
	ref, err := m.scene.CreateMultimatte()
	if err != nil {
		return nil, err
	}
	if err := m.scene.SetUsesMaterialID(ref, true); err != nil {
		return nil, err
	}
	var ch [channelsPerMatte]scene.ID
	copy(ch[:], ids)
	if err := m.scene.SetChannels(ref, ch[0], ch[1], ch[2]); err != nil {
		return nil, err
	}
	ref, err = m.scene.RenameMultimatte(ref, MatteName(materials, m.cfg.Suffix))
	if err != nil {
		return nil, err
	}
	channels, err := m.scene.Channels(ref)
	if err != nil {
		return nil, err
	}
	m.log.Debug("created multimatte", zap.String("matte", string(ref)),
		zap.Stringer("red", channels.Red), zap.Stringer("green", channels.Green), zap.Stringer("blue", channels.Blue))
	return &Record{ref: ref, channels: channels}, nil
}
