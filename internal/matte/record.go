package matte

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/mattework/internal/scene"
)

// Record is a multimatte render element grouping up to three material IDs
// into red, green and blue channels.
type Record struct {
	ref      scene.MatteRef
	channels scene.Channels
}

// Name returns the record's node name.
func (r *Record) Name() string {
	return string(r.ref)
}

// Ref returns the record's scene reference.
func (r *Record) Ref() scene.MatteRef {
	return r.ref
}

// Channels returns the last read channel values.
func (r *Record) Channels() scene.Channels {
	return r.channels
}

// Uses reports whether any channel carries id.
func (r *Record) Uses(id int) bool {
	for _, ch := range r.channels.Slice() {
		if v, ok := ch.Get(); ok && v == id {
			return true
		}
	}
	return false
}

// Mattes returns the material-ID multimattes found at the last reload.
func (m *Model) Mattes() []*Record {
	return append([]*Record(nil), m.mattes...)
}

// Matte returns the record named name, or nil.
func (m *Model) Matte(name string) *Record {
	for _, r := range m.mattes {
		if r.Name() == name {
			return r
		}
	}
	return nil
}

// MattesUsing returns the records whose channels reference any of ids.
func (m *Model) MattesUsing(ids ...int) []*Record {
	var out []*Record
	for _, r := range m.mattes {
		for _, id := range ids {
			if r.Uses(id) {
				out = append(out, r)
				break
			}
		}
	}
	return out
}

// ReloadMattes rebuilds the record list from every material-ID multimatte
// in the scene.
func (m *Model) ReloadMattes() error {
	var records []*Record
	for _, ref := range m.scene.Multimattes(true) {
		ch, err := m.scene.Channels(ref)
		if errors.Is(err, scene.ErrInvalidReference) {
			continue
		}
		if err != nil {
			return fmt.Errorf("reading multimatte %s: %w", ref, err)
		}
		records = append(records, &Record{ref: ref, channels: ch})
	}
	m.mattes = records
	return nil
}

// SetChannels writes all three channels of rec and re-reads them.
func (m *Model) SetChannels(rec *Record, red, green, blue scene.ID) error {
	err := m.scene.WithUndoScope(func() error {
		return m.scene.SetChannels(rec.ref, red, green, blue)
	})
	if err != nil {
		m.log.Warn("set channels failed", zap.String("matte", rec.Name()), zap.Error(err))
		return err
	}
	ch, err := m.scene.Channels(rec.ref)
	if err != nil {
		return err
	}
	rec.channels = ch
	return nil
}

// RenameMatte renames rec. The host may alter the name to keep it unique;
// the record takes the name actually used. On failure the old name stays.
func (m *Model) RenameMatte(rec *Record, name string) (string, error) {
	var actual scene.MatteRef
	err := m.scene.WithUndoScope(func() error {
		var err error
		actual, err = m.scene.RenameMultimatte(rec.ref, name)
		return err
	})
	if err != nil {
		m.log.Warn("rename matte failed", zap.String("matte", rec.Name()), zap.Error(err))
		return rec.Name(), err
	}
	rec.ref = actual
	return rec.Name(), nil
}

// IsAutoLabel reports whether name is a purely numeric label rather than a
// multimatte name. Such names are never deleted.
func IsAutoLabel(name string) bool {
	return IsDigits(name)
}

// DeleteMattes deletes the named multimattes in one undo scope. Purely
// numeric names are skipped without touching the scene.
func (m *Model) DeleteMattes(names []string) error {
	var refs []scene.MatteRef
	for _, name := range names {
		if IsAutoLabel(name) {
			m.log.Debug("skipping numeric label", zap.String("name", name))
			continue
		}
		refs = append(refs, scene.MatteRef(name))
	}
	if len(refs) == 0 {
		return nil
	}
	err := m.scene.WithUndoScope(func() error {
		return m.scene.DeleteMultimattes(refs)
	})
	if err != nil {
		m.log.Warn("delete mattes failed", zap.Error(err))
		return err
	}
	m.log.Info("deleted mattes", zap.Int("count", len(refs)))
	return m.ReloadMattes()
}
