package memscene

import (
	"errors"
	"testing"

	"github.com/Faultbox/mattework/internal/scene"
)

func TestLowestUnusedID(t *testing.T) {
	tests := []struct {
		name        string
		ids         []scene.ID
		includeZero bool
		expected    int
	}{
		{name: "empty scene", expected: 1},
		{name: "empty scene with zero", includeZero: true, expected: 0},
		{name: "gap", ids: []scene.ID{scene.IDOf(1), scene.IDOf(2), scene.IDOf(4)}, expected: 3},
		{name: "zero in use", ids: []scene.ID{scene.IDOf(0), scene.IDOf(1)}, includeZero: true, expected: 2},
		{name: "unset ids ignored", ids: []scene.ID{scene.NoID, scene.IDOf(1)}, expected: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New()
			for i, id := range tt.ids {
				s.AddMaterial(string(rune('a'+i)), id)
			}
			got, err := s.LowestUnusedID(tt.includeZero)
			if err != nil {
				t.Fatalf("LowestUnusedID failed: %v", err)
			}
			if got != tt.expected {
				t.Errorf("expected %d, got %d", tt.expected, got)
			}
			if !tt.includeZero && got == 0 {
				t.Error("zero returned without includeZero")
			}
		})
	}
}

func TestLowestUnusedIDExhausted(t *testing.T) {
	s := New(WithMaxID(2))
	s.AddMaterial("a", scene.IDOf(1))
	s.AddMaterial("b", scene.IDOf(2))

	_, err := s.LowestUnusedID(false)
	if !errors.Is(err, scene.ErrNoAvailableID) {
		t.Errorf("expected ErrNoAvailableID, got %v", err)
	}
}

func TestMaterialsForMesh(t *testing.T) {
	s := New()
	s.AddMaterial("red_MTL", scene.IDOf(1))
	s.AddMaterial("blue_MTL", scene.IDOf(1))
	s.AddMaterial("grey_MTL", scene.NoID)
	s.AddMesh("bodyShape", "red_MTL", "blue_MTL", "grey_MTL", "red_MTL", "gone_MTL")

	groups, err := s.MaterialsForMesh("bodyShape")
	if err != nil {
		t.Fatalf("MaterialsForMesh failed: %v", err)
	}
	if len(groups[scene.IDOf(1)]) != 2 {
		t.Errorf("expected 2 materials with id 1, got %v", groups[scene.IDOf(1)])
	}
	if len(groups[scene.NoID]) != 1 || groups[scene.NoID][0] != "grey_MTL" {
		t.Errorf("expected grey_MTL in unset bucket, got %v", groups[scene.NoID])
	}

	if _, err := s.MaterialsForMesh("missingShape"); !errors.Is(err, scene.ErrInvalidReference) {
		t.Errorf("expected ErrInvalidReference, got %v", err)
	}
}

func TestSetMaterialIDErrors(t *testing.T) {
	s := New()
	s.AddMaterial("locked_MTL", scene.NoID).Locked = true

	if err := s.SetMaterialID("missing", scene.IDOf(1)); !errors.Is(err, scene.ErrInvalidReference) {
		t.Errorf("expected ErrInvalidReference, got %v", err)
	}
	if err := s.SetMaterialID("locked_MTL", scene.IDOf(1)); !errors.Is(err, scene.ErrMutation) {
		t.Errorf("expected ErrMutation, got %v", err)
	}
	if s.UndoDepth() != 0 {
		t.Errorf("failed mutations must not be recorded, depth %d", s.UndoDepth())
	}
}

func TestChannelsRoundTrip(t *testing.T) {
	s := New()
	ref, err := s.CreateMultimatte()
	if err != nil {
		t.Fatalf("CreateMultimatte failed: %v", err)
	}
	if err := s.SetUsesMaterialID(ref, true); err != nil {
		t.Fatalf("SetUsesMaterialID failed: %v", err)
	}
	if err := s.SetChannels(ref, scene.IDOf(5), scene.NoID, scene.IDOf(7)); err != nil {
		t.Fatalf("SetChannels failed: %v", err)
	}

	ch, err := s.Channels(ref)
	if err != nil {
		t.Fatalf("Channels failed: %v", err)
	}
	want := scene.Channels{Red: scene.IDOf(5), Green: scene.NoID, Blue: scene.IDOf(7), UsesMaterialID: true}
	if ch != want {
		t.Errorf("expected %+v, got %+v", want, ch)
	}
}

func TestRenameCollision(t *testing.T) {
	s := New()
	first, _ := s.CreateMultimatte()
	second, _ := s.CreateMultimatte()
	if second != DefaultMatteName+"1" {
		t.Errorf("expected second default name %s1, got %s", DefaultMatteName, second)
	}

	got, err := s.RenameMultimatte(first, "red_matte")
	if err != nil || got != "red_matte" {
		t.Fatalf("expected red_matte, got %s (%v)", got, err)
	}
	got, err = s.RenameMultimatte(second, "red_matte")
	if err != nil {
		t.Fatalf("RenameMultimatte failed: %v", err)
	}
	if got != "red_matte1" {
		t.Errorf("expected red_matte1, got %s", got)
	}
}

func TestUndoScope(t *testing.T) {
	s := New()
	s.AddMaterial("a", scene.NoID)
	s.AddMaterial("b", scene.NoID)

	err := s.WithUndoScope(func() error {
		if err := s.SetMaterialID("a", scene.IDOf(1)); err != nil {
			return err
		}
		if _, err := s.CreateMultimatte(); err != nil {
			return err
		}
		// Nested scopes join the outer transaction.
		return s.WithUndoScope(func() error {
			return s.SetMaterialID("b", scene.IDOf(2))
		})
	})
	if err != nil {
		t.Fatalf("WithUndoScope failed: %v", err)
	}
	if s.UndoDepth() != 1 {
		t.Fatalf("expected 1 transaction, got %d", s.UndoDepth())
	}

	if err := s.Undo(); err != nil {
		t.Fatalf("Undo failed: %v", err)
	}
	for _, name := range []scene.MaterialRef{"a", "b"} {
		if id, _ := s.MaterialID(name); id.IsSet() {
			t.Errorf("expected %s unset after undo, got %s", name, id)
		}
	}
	if n := len(s.Multimattes(false)); n != 0 {
		t.Errorf("expected no multimattes after undo, got %d", n)
	}
}

func TestUndoScopeKeepsCommittedOnFailure(t *testing.T) {
	s := New()
	s.AddMaterial("a", scene.NoID)

	boom := errors.New("boom")
	err := s.WithUndoScope(func() error {
		if err := s.SetMaterialID("a", scene.IDOf(3)); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if id, _ := s.MaterialID("a"); id != scene.IDOf(3) {
		t.Errorf("expected committed id 3, got %s", id)
	}
	if s.UndoDepth() != 1 {
		t.Errorf("expected the partial transaction to be undoable, depth %d", s.UndoDepth())
	}
}

func TestDeleteMultimattesAtomicValidation(t *testing.T) {
	s := New()
	s.AddMatte(Matte{Name: "a_matte", UsesMaterialID: true})
	s.AddMatte(Matte{Name: "b_matte", UsesMaterialID: true})

	err := s.DeleteMultimattes([]scene.MatteRef{"a_matte", "missing"})
	if !errors.Is(err, scene.ErrInvalidReference) {
		t.Fatalf("expected ErrInvalidReference, got %v", err)
	}
	if n := len(s.Multimattes(true)); n != 2 {
		t.Errorf("expected nothing deleted, got %d mattes", n)
	}

	if err := s.DeleteMultimattes([]scene.MatteRef{"a_matte"}); err != nil {
		t.Fatalf("DeleteMultimattes failed: %v", err)
	}
	if refs := s.Multimattes(true); len(refs) != 1 || refs[0] != "b_matte" {
		t.Errorf("expected only b_matte, got %v", refs)
	}

	if err := s.Undo(); err != nil {
		t.Fatalf("Undo failed: %v", err)
	}
	if refs := s.Multimattes(true); len(refs) != 2 || refs[0] != "a_matte" {
		t.Errorf("expected order restored, got %v", refs)
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	s := New()
	s.AddMaterial("a", scene.IDOf(0))
	s.AddMesh("m", "a")
	s.AddMatte(Matte{Name: "x", Red: scene.IDOf(0), UsesMaterialID: true})
	s.SetSelection("m")

	restored := FromSnapshot(s.Snapshot())
	if id, _ := restored.MaterialID("a"); id != scene.IDOf(0) {
		t.Errorf("expected id 0 preserved, got %q", id)
	}
	if sel := restored.SelectedMeshes(); len(sel) != 1 || sel[0] != "m" {
		t.Errorf("expected selection [m], got %v", sel)
	}
	ch, err := restored.Channels("x")
	if err != nil {
		t.Fatalf("Channels failed: %v", err)
	}
	if ch.Red != scene.IDOf(0) || ch.Green.IsSet() {
		t.Errorf("unexpected channels %+v", ch)
	}
}

func TestSnapshotValidate(t *testing.T) {
	tests := []struct {
		name  string
		snap  Snapshot
		valid bool
	}{
		{"empty", Snapshot{}, true},
		{"zero and unset", Snapshot{Materials: []Material{{Name: "a", ID: scene.IDOf(0)}, {Name: "b"}}}, true},
		{"negative material", Snapshot{Materials: []Material{{Name: "a", ID: scene.IDOf(-1)}}}, false},
		{"negative channel", Snapshot{Mattes: []Matte{{Name: "m", Blue: scene.IDOf(-3)}}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.snap.Validate()
			if tt.valid && err != nil {
				t.Errorf("expected valid, got %v", err)
			}
			if !tt.valid && err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}
