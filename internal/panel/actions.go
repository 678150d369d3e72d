package panel

import (
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Faultbox/mattework/internal/matte"
	"github.com/Faultbox/mattework/internal/scene"
)

// Open builds both tables from the scene: the meshes selected in the
// viewport and every material-ID multimatte.
func (p *Panel) Open() error {
	end := p.begin()
	defer end()

	err := p.bindMeshes(p.model.SelectedMeshes())
	if reloadErr := p.model.ReloadMattes(); reloadErr != nil {
		err = multierr.Append(err, reloadErr)
	}
	p.rebuildMattes()
	if err != nil {
		return p.warn("open", err)
	}
	return nil
}

// AddSelection binds the meshes selected in the viewport that are not
// already shown.
func (p *Panel) AddSelection() error {
	return p.AddMeshes(p.model.SelectedMeshes()...)
}

// AddMeshes binds the given meshes that are not already shown.
func (p *Panel) AddMeshes(meshes ...scene.MeshRef) error {
	end := p.begin()
	defer end()

	if err := p.bindMeshes(meshes); err != nil {
		return p.warn("add selection", err)
	}
	p.setStatus("%d mesh(es) shown", len(p.meshes))
	return nil
}

func (p *Panel) bindMeshes(meshes []scene.MeshRef) error {
	var errs error
	added := 0
	for _, mesh := range meshes {
		if p.Mesh(mesh) != nil {
			continue
		}
		binding, err := p.model.ScanMesh(mesh)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		row := &MeshRow{Mesh: mesh, Expanded: true}
		for _, e := range binding.Entries() {
			mr := &MaterialRow{mesh: row, ref: e.Ref, panel: p}
			mat, err := p.model.Bind(e.Ref, mr)
			if err != nil {
				errs = multierr.Append(errs, err)
				continue
			}
			mr.material = mat
			row.materials = append(row.materials, mr)
		}
		p.meshes = append(p.meshes, row)
		added++
	}
	if added > 0 {
		p.emit(Event{Kind: MeshesChanged})
		p.log.Debug("bound meshes", zap.Int("added", added))
	}
	return errs
}

// RemoveSelection unbinds the selected mesh rows.
func (p *Panel) RemoveSelection() error {
	end := p.begin()
	defer end()

	err := p.refresh()
	removed := 0
	kept := p.meshes[:0]
	for _, m := range p.meshes {
		if p.IsSelected(m) {
			p.unbindMesh(m)
			removed++
			continue
		}
		kept = append(kept, m)
	}
	p.meshes = kept
	p.pruneSelection()
	if removed > 0 {
		p.emit(Event{Kind: MeshesChanged})
	}
	err = multierr.Append(err, p.refresh())
	if err != nil {
		return p.warn("remove selection", err)
	}
	p.setStatus("removed %d mesh(es)", removed)
	return nil
}

// ClearSelection unbinds every mesh.
func (p *Panel) ClearSelection() error {
	p.SelectAll()
	return p.RemoveSelection()
}

func (p *Panel) unbindMesh(m *MeshRow) {
	for _, r := range m.materials {
		if r.material != nil {
			r.material.Unbind(r)
		}
	}
	m.materials = nil
}

// Refresh reconciles both tables with the scene. Rows of materials that no
// longer exist are removed. The selection is kept for rows that survive.
func (p *Panel) Refresh() error {
	end := p.begin()
	defer end()

	if err := p.refresh(); err != nil {
		return p.warn("refresh", err)
	}
	return nil
}

func (p *Panel) refresh() error {
	err := p.model.Refresh()
	for _, m := range p.meshes {
		kept := m.materials[:0]
		for _, r := range m.materials {
			if !r.hidden {
				kept = append(kept, r)
			}
		}
		m.materials = kept
	}
	p.rebuildMattes()
	p.pruneSelection()
	return err
}

// rebuildMattes mirrors the model's records, keeping selected rows
// selected by name.
func (p *Panel) rebuildMattes() {
	selected := make(map[string]bool)
	for _, s := range p.selected {
		if r, ok := s.(*MatteRow); ok {
			selected[r.Label()] = true
		}
	}
	p.Deselect(p.matteRows()...)

	rows := make([]*MatteRow, 0, len(p.model.Mattes()))
	for _, rec := range p.model.Mattes() {
		r := newMatteRow(rec)
		rows = append(rows, r)
		if selected[r.Label()] {
			p.selected = append(p.selected, r)
		}
	}
	p.mattes = rows
	p.emit(Event{Kind: MattesChanged})
}

func (p *Panel) matteRows() []Row {
	var rows []Row
	for _, r := range p.mattes {
		rows = append(rows, r)
		for _, c := range r.Cells {
			rows = append(rows, c)
		}
	}
	return rows
}

// pruneSelection drops selected rows that are no longer displayed.
func (p *Panel) pruneSelection() {
	shown := make(map[Row]bool)
	for _, m := range p.meshes {
		shown[m] = true
		for _, r := range m.materials {
			shown[r] = true
		}
	}
	for _, r := range p.matteRows() {
		shown[r] = true
	}
	kept := p.selected[:0]
	for _, s := range p.selected {
		if shown[s] {
			kept = append(kept, s)
		}
	}
	p.selected = kept
}

// MakeMatte builds multimattes from the selected material rows, in
// selection order.
func (p *Panel) MakeMatte() error {
	end := p.begin()
	defer end()

	if err := p.refresh(); err != nil {
		return p.warn("make matte", err)
	}
	var refs []scene.MaterialRef
	for _, s := range p.selected {
		if r, ok := s.(*MaterialRow); ok && !r.hidden {
			refs = append(refs, r.ref)
		}
	}
	if len(refs) == 0 {
		p.setStatus("select materials to make a matte")
		return ErrNoSelection
	}

	created, err := p.model.MakeMultimatte(refs)
	refreshErr := p.refresh()
	if err != nil {
		return p.fail("make matte", err)
	}
	if refreshErr != nil {
		return p.warn("make matte", refreshErr)
	}
	names := make([]string, len(created))
	for i, rec := range created {
		names[i] = rec.Name()
	}
	p.setStatus("created %v", names)
	return nil
}

// DeleteSelectedMattes deletes the multimattes whose rows are selected.
// Selected cells showing only digits are never treated as matte names.
func (p *Panel) DeleteSelectedMattes() error {
	end := p.begin()
	defer end()

	var names []string
	for _, s := range p.selected {
		switch r := s.(type) {
		case *MatteRow, *ChannelCell:
			label := r.Label()
			if label == "" || matte.IsAutoLabel(label) {
				continue
			}
			names = append(names, label)
		}
	}
	if len(names) == 0 {
		p.setStatus("select mattes to delete")
		return ErrNoSelection
	}
	err := p.model.DeleteMattes(names)
	p.rebuildMattes()
	p.pruneSelection()
	if err != nil {
		return p.fail("delete mattes", err)
	}
	p.setStatus("deleted %d matte(s)", len(names))
	return nil
}

// Undo reverts the last scene transaction and refreshes.
func (p *Panel) Undo() error {
	end := p.begin()
	defer end()

	err := p.model.Undo()
	err = multierr.Append(err, p.refresh())
	if err != nil {
		return p.warn("undo", err)
	}
	p.setStatus("undone")
	return nil
}
