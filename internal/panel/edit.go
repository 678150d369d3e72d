package panel

import (
	"fmt"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Faultbox/mattework/internal/matte"
	"github.com/Faultbox/mattework/internal/scene"
)

// fanOutTargets returns the selected visible material rows with edited
// moved (or added) to the end. The last row is the one whose material
// announces the confirmed value to every bound row.
func (p *Panel) fanOutTargets(edited *MaterialRow) []*MaterialRow {
	var rows []*MaterialRow
	for _, s := range p.selected {
		r, ok := s.(*MaterialRow)
		if !ok || r == edited || r.hidden {
			continue
		}
		rows = append(rows, r)
	}
	return append(rows, edited)
}

// EditMaterialID applies text typed into row's ID cell to row and to every
// other selected material row.
//
// Text that is neither empty nor a non-negative integer is rejected here:
// the cell reverts to its last confirmed value and the scene is untouched.
// Otherwise, all rows but the last write their material without fan-out,
// each distinct material once; the last row writes its material, re-reads
// the committed value and pushes it to every row bound to it, including
// rows outside the selection. The whole edit is one undo scope. Materials
// written without fan-out are re-synced after the edit so all of their
// rows show the committed value.
func (p *Panel) EditMaterialID(row *MaterialRow, text string) error {
	if p.busy {
		p.log.Debug("edit ignored while updating", zap.String("material", string(row.ref)))
		return ErrBusy
	}
	if row.hidden {
		return p.warn("edit material id", scene.ErrInvalidReference)
	}
	id, err := matte.ParseID(text)
	if err != nil {
		row.setText(row.material.ID().String())
		p.setStatus("invalid id %q", text)
		return err
	}

	end := p.begin()
	defer end()

	targets := p.fanOutTargets(row)
	last := targets[len(targets)-1]
	var silent []*matte.Material
	written := make(map[*matte.Material]bool)

	err = p.model.Scene().WithUndoScope(func() error {
		for _, r := range targets[:len(targets)-1] {
			r.setText(id.String())
			if r.material == last.material || written[r.material] {
				continue
			}
			written[r.material] = true
			silent = append(silent, r.material)
			if err := r.material.Assign(id, false); err != nil {
				return err
			}
		}
		last.setText(id.String())
		return last.material.Assign(id, true)
	})

	var syncErr error
	for _, mat := range silent {
		syncErr = multierr.Append(syncErr, mat.Sync())
	}
	if err != nil {
		syncErr = multierr.Append(syncErr, last.material.Sync())
		if syncErr != nil {
			p.log.Debug("resync after failed edit", zap.Error(syncErr))
		}
		return p.warn("edit material id", err)
	}
	if syncErr != nil {
		return p.warn("edit material id", syncErr)
	}
	p.setStatus("set id %q on %d row(s)", id.String(), len(targets))
	return nil
}

// EditChannel applies text typed into one channel cell of a matte row.
// The record's three channels are written together and read back.
func (p *Panel) EditChannel(row *MatteRow, ch Channel, text string) error {
	if ch < Red || ch > Blue {
		return fmt.Errorf("%w: %d", ErrUnknownChannel, int(ch))
	}
	texts := [3]string{row.Cells[Red].text, row.Cells[Green].text, row.Cells[Blue].text}
	texts[ch] = text
	if err := p.EditChannels(row, texts[0], texts[1], texts[2]); err != nil {
		return err
	}
	p.setStatus("%s %s = %q", row.Label(), ch, row.Cells[ch].text)
	return nil
}

// EditChannels replaces all three channels of a matte row. Every text is
// validated before the scene is touched, and the write is one undo step.
func (p *Panel) EditChannels(row *MatteRow, red, green, blue string) error {
	if p.busy {
		return ErrBusy
	}
	var ids [3]scene.ID
	for i, text := range []string{red, green, blue} {
		id, err := matte.ParseID(text)
		if err != nil {
			row.sync()
			p.setStatus("invalid %s id %q", Channel(i), text)
			return err
		}
		ids[i] = id
	}

	end := p.begin()
	defer end()

	if err := p.model.SetChannels(row.record, ids[0], ids[1], ids[2]); err != nil {
		row.sync()
		return p.fail("edit channels", err)
	}
	row.sync()
	p.emit(Event{Kind: MattesChanged, Row: row})
	p.setStatus("%s = (%q, %q, %q)", row.Label(), row.Cells[Red].text, row.Cells[Green].text, row.Cells[Blue].text)
	return nil
}

// RenameMatte renames the record behind row. The row shows the name the
// host actually used.
func (p *Panel) RenameMatte(row *MatteRow, name string) error {
	if p.busy {
		return ErrBusy
	}
	end := p.begin()
	defer end()

	actual, err := p.model.RenameMatte(row.record, name)
	if err != nil {
		return p.fail("rename matte", err)
	}
	p.emit(Event{Kind: MattesChanged, Row: row})
	p.setStatus("renamed to %s", actual)
	return nil
}
