package matte

import (
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Faultbox/mattework/internal/scene"
	"github.com/Faultbox/mattework/internal/scene/memscene"
)

// fakeView records what the model pushes to a bound row.
type fakeView struct {
	text   string
	hidden bool
	shows  int
}

func (v *fakeView) ShowID(id scene.ID) {
	v.text = id.String()
	v.shows++
}

func (v *fakeView) Hide() {
	v.hidden = true
}

func newTestModel(t *testing.T, s *memscene.Scene) *Model {
	t.Helper()
	return New(s, DefaultConfig(), zaptest.NewLogger(t))
}

func bind(t *testing.T, m *Model, ref scene.MaterialRef) (*Material, *fakeView) {
	t.Helper()
	v := &fakeView{}
	mat, err := m.Bind(ref, v)
	if err != nil {
		t.Fatalf("Bind(%s) failed: %v", ref, err)
	}
	return mat, v
}

func TestParseID(t *testing.T) {
	tests := []struct {
		in      string
		want    scene.ID
		wantErr bool
	}{
		{in: "", want: scene.NoID},
		{in: "  ", want: scene.NoID},
		{in: "0", want: scene.IDOf(0)},
		{in: "42", want: scene.IDOf(42)},
		{in: " 7 ", want: scene.IDOf(7)},
		{in: "007", want: scene.IDOf(7)},
		{in: "-1", wantErr: true},
		{in: "+3", wantErr: true},
		{in: "1.5", wantErr: true},
		{in: "abc", wantErr: true},
		{in: "99999999999999999999999", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseID(tt.in)
		if tt.wantErr {
			if !errors.Is(err, ErrInvalidInput) {
				t.Errorf("ParseID(%q): expected ErrInvalidInput, got %v", tt.in, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseID(%q): unexpected error %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseID(%q): expected %q, got %q", tt.in, tt.want, got)
		}
	}
}

func TestMatteName(t *testing.T) {
	refs := []scene.MaterialRef{"char:skin_MTL", "cloth_shirt_MTL", "eyes"}
	if got := MatteName(refs, "_matte"); got != "skin_cloth_eyes_matte" {
		t.Errorf("expected skin_cloth_eyes_matte, got %s", got)
	}
	if got := ShortForm("_hidden_MTL"); got != "_hidden_MTL" {
		t.Errorf("expected leading underscore name kept whole, got %s", got)
	}
}

func TestChangeIDClearOnUnsetIsNoop(t *testing.T) {
	s := memscene.New()
	s.AddMaterial("grey_MTL", scene.NoID)
	m := newTestModel(t, s)
	mat, v := bind(t, m, "grey_MTL")

	if err := mat.ChangeID(""); err != nil {
		t.Fatalf("ChangeID failed: %v", err)
	}
	if n := s.IDWrites("grey_MTL"); n != 0 {
		t.Errorf("expected no scene writes, got %d", n)
	}
	if mat.ID().IsSet() || v.text != "" {
		t.Errorf("expected id to stay unset, got %q / %q", mat.ID(), v.text)
	}
}

func TestChangeIDClearSeesOutOfBandID(t *testing.T) {
	s := memscene.New()
	s.AddMaterial("grey_MTL", scene.NoID)
	m := newTestModel(t, s)
	mat, v := bind(t, m, "grey_MTL")

	// Another tool assigns an id after the row was bound.
	if err := s.SetMaterialID("grey_MTL", scene.IDOf(6)); err != nil {
		t.Fatalf("SetMaterialID failed: %v", err)
	}
	if err := mat.ChangeID(""); err != nil {
		t.Fatalf("ChangeID failed: %v", err)
	}
	if id, _ := s.MaterialID("grey_MTL"); id.IsSet() {
		t.Errorf("expected id cleared in the scene, got %q", id)
	}
	if v.text != "" {
		t.Errorf("expected row to show empty, got %q", v.text)
	}
}

func TestChangeIDFansOutToAllRows(t *testing.T) {
	for _, text := range []string{"0", "12", "007"} {
		t.Run(text, func(t *testing.T) {
			s := memscene.New()
			s.AddMaterial("red_MTL", scene.NoID)
			m := newTestModel(t, s)
			mat, v1 := bind(t, m, "red_MTL")
			_, v2 := bind(t, m, "red_MTL")

			if err := mat.ChangeID(text); err != nil {
				t.Fatalf("ChangeID failed: %v", err)
			}
			want, _ := ParseID(text)
			got, _ := s.MaterialID("red_MTL")
			if got != want {
				t.Errorf("expected scene id %q, got %q", want, got)
			}
			for i, v := range []*fakeView{v1, v2} {
				if v.text != want.String() {
					t.Errorf("row %d: expected %q, got %q", i, want.String(), v.text)
				}
			}
		})
	}
}

func TestChangeIDClearsAssignedID(t *testing.T) {
	s := memscene.New()
	s.AddMaterial("red_MTL", scene.IDOf(4))
	m := newTestModel(t, s)
	mat, v := bind(t, m, "red_MTL")

	if err := mat.ChangeID(""); err != nil {
		t.Fatalf("ChangeID failed: %v", err)
	}
	if got, _ := s.MaterialID("red_MTL"); got.IsSet() {
		t.Errorf("expected id cleared, got %q", got)
	}
	if v.text != "" {
		t.Errorf("expected empty row, got %q", v.text)
	}
}

func TestChangeIDInvalidInput(t *testing.T) {
	s := memscene.New()
	s.AddMaterial("red_MTL", scene.IDOf(4))
	m := newTestModel(t, s)
	mat, v := bind(t, m, "red_MTL")
	v.text = "garbage"

	err := mat.ChangeID("-3")
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if s.IDWrites("red_MTL") != 0 {
		t.Error("invalid input must not write to the scene")
	}
	if v.text != "4" {
		t.Errorf("expected row reverted to 4, got %q", v.text)
	}
}

func TestChangeIDLockedMaterial(t *testing.T) {
	s := memscene.New()
	s.AddMaterial("ref:red_MTL", scene.IDOf(4)).Locked = true
	m := newTestModel(t, s)
	mat, v := bind(t, m, "ref:red_MTL")

	err := mat.ChangeID("9")
	if !errors.Is(err, scene.ErrMutation) {
		t.Fatalf("expected ErrMutation, got %v", err)
	}
	if v.text != "4" || mat.ID() != scene.IDOf(4) {
		t.Errorf("expected id 4 kept, got %q / %q", v.text, mat.ID())
	}
}

func TestAssignWithoutLoopingSkipsFanOut(t *testing.T) {
	s := memscene.New()
	s.AddMaterial("red_MTL", scene.IDOf(1))
	m := newTestModel(t, s)
	mat, v := bind(t, m, "red_MTL")
	shows := v.shows

	if err := mat.Assign(scene.IDOf(5), false); err != nil {
		t.Fatalf("Assign failed: %v", err)
	}
	if got, _ := s.MaterialID("red_MTL"); got != scene.IDOf(5) {
		t.Errorf("expected scene id 5, got %q", got)
	}
	if v.shows != shows {
		t.Errorf("expected no row notification, got %d", v.shows-shows)
	}
	if mat.ID() != scene.IDOf(5) {
		t.Errorf("expected cache 5, got %q", mat.ID())
	}
}

func TestRefreshIdempotent(t *testing.T) {
	s := memscene.New()
	s.AddMaterial("a_MTL", scene.IDOf(1))
	s.AddMaterial("b_MTL", scene.NoID)
	s.AddMatte(memscene.Matte{Name: "a_matte", Red: scene.IDOf(1), UsesMaterialID: true})
	m := newTestModel(t, s)
	_, va := bind(t, m, "a_MTL")
	_, vb := bind(t, m, "b_MTL")

	snapshot := func() []string {
		var out []string
		for _, mat := range m.Materials() {
			out = append(out, string(mat.Ref())+"="+mat.ID().String())
		}
		for _, r := range m.Mattes() {
			out = append(out, r.Name())
		}
		return append(out, va.text, vb.text)
	}

	if err := m.Refresh(); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	first := snapshot()
	writes := s.Writes()
	if err := m.Refresh(); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	second := snapshot()

	if len(first) != len(second) {
		t.Fatalf("expected identical state, got %v then %v", first, second)
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("entry %d: %q then %q", i, first[i], second[i])
		}
	}
	if s.Writes() != writes {
		t.Error("refresh must not write to the scene")
	}
}

func TestRefreshPrunesDeletedMaterials(t *testing.T) {
	s := memscene.New()
	s.AddMaterial("a_MTL", scene.IDOf(1))
	s.AddMaterial("b_MTL", scene.IDOf(2))
	m := newTestModel(t, s)
	_, va := bind(t, m, "a_MTL")
	_, vb := bind(t, m, "b_MTL")

	s.RemoveMaterial("a_MTL")
	s.SetMaterialID("b_MTL", scene.IDOf(8))

	if err := m.Refresh(); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	if !va.hidden {
		t.Error("expected row of deleted material hidden")
	}
	if m.Material("a_MTL") != nil {
		t.Error("expected deleted material dropped from registry")
	}
	if vb.text != "8" {
		t.Errorf("expected surviving row to show 8, got %q", vb.text)
	}
}

func TestUnbindPrunesMaterial(t *testing.T) {
	s := memscene.New()
	s.AddMaterial("a_MTL", scene.IDOf(1))
	m := newTestModel(t, s)
	mat, v1 := bind(t, m, "a_MTL")
	_, v2 := bind(t, m, "a_MTL")

	mat.Unbind(v1)
	if m.Material("a_MTL") == nil {
		t.Fatal("material with a remaining row must stay registered")
	}
	mat.Unbind(v2)
	if m.Material("a_MTL") != nil {
		t.Error("material without rows must leave the registry")
	}
}

func TestMakeMultimatteThreeIDs(t *testing.T) {
	s := memscene.New()
	s.AddMaterial("red_MTL", scene.IDOf(1))
	s.AddMaterial("green_MTL", scene.IDOf(2))
	s.AddMaterial("blue_MTL", scene.IDOf(3))
	m := newTestModel(t, s)

	recs, err := m.MakeMultimatte([]scene.MaterialRef{"red_MTL", "green_MTL", "blue_MTL"})
	if err != nil {
		t.Fatalf("MakeMultimatte failed: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("expected 1 record, got %d", len(recs))
	}
	want := scene.Channels{Red: scene.IDOf(1), Green: scene.IDOf(2), Blue: scene.IDOf(3), UsesMaterialID: true}
	if recs[0].Channels() != want {
		t.Errorf("expected %+v, got %+v", want, recs[0].Channels())
	}
	if recs[0].Name() != "red_green_blue_matte" {
		t.Errorf("expected red_green_blue_matte, got %s", recs[0].Name())
	}
	if refs := s.Multimattes(true); len(refs) != 1 || refs[0] != "red_green_blue_matte" {
		t.Errorf("expected scene to list the new matte, got %v", refs)
	}
}

func TestMakeMultimatteFourIDs(t *testing.T) {
	s := memscene.New()
	for i, name := range []string{"a_MTL", "b_MTL", "c_MTL", "d_MTL"} {
		s.AddMaterial(name, scene.IDOf(i+1))
	}
	m := newTestModel(t, s)

	recs, err := m.MakeMultimatte([]scene.MaterialRef{"a_MTL", "b_MTL", "c_MTL", "d_MTL"})
	if err != nil {
		t.Fatalf("MakeMultimatte failed: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("expected 2 records, got %d", len(recs))
	}
	first, second := recs[0].Channels(), recs[1].Channels()
	if first.Red != scene.IDOf(1) || first.Green != scene.IDOf(2) || first.Blue != scene.IDOf(3) {
		t.Errorf("unexpected first record %+v", first)
	}
	if second.Red != scene.IDOf(4) || second.Green.IsSet() || second.Blue.IsSet() {
		t.Errorf("expected second record red only, got %+v", second)
	}
	if recs[1].Name() != "d_matte" {
		t.Errorf("expected d_matte, got %s", recs[1].Name())
	}
}

func TestMakeMultimatteAllocatesAndCollapses(t *testing.T) {
	s := memscene.New()
	s.AddMaterial("used1_MTL", scene.IDOf(1))
	s.AddMaterial("used2_MTL", scene.IDOf(2))
	s.AddMaterial("used4_MTL", scene.IDOf(4))
	s.AddMaterial("new_MTL", scene.NoID)
	s.AddMaterial("other_MTL", scene.NoID)
	s.AddMaterial("twin_MTL", scene.IDOf(2))
	m := newTestModel(t, s)
	mat, v := bind(t, m, "new_MTL")

	recs, err := m.MakeMultimatte([]scene.MaterialRef{"new_MTL", "used2_MTL", "new_MTL", "twin_MTL", "other_MTL"})
	if err != nil {
		t.Fatalf("MakeMultimatte failed: %v", err)
	}

	if id, _ := s.MaterialID("new_MTL"); id != scene.IDOf(3) {
		t.Errorf("expected new_MTL to get 3, got %q", id)
	}
	if id, _ := s.MaterialID("other_MTL"); id != scene.IDOf(5) {
		t.Errorf("expected other_MTL to get 5, got %q", id)
	}
	if mat.ID() != scene.IDOf(3) || v.text != "3" {
		t.Errorf("expected bound row to show 3, got %q / %q", mat.ID(), v.text)
	}

	if len(recs) != 1 {
		t.Fatalf("expected 1 record, got %d", len(recs))
	}
	ch := recs[0].Channels()
	if ch.Red != scene.IDOf(3) || ch.Green != scene.IDOf(2) || ch.Blue != scene.IDOf(5) {
		t.Errorf("unexpected channels %+v", ch)
	}
	if recs[0].Name() != "new_used2_other_matte" {
		t.Errorf("expected new_used2_other_matte, got %s", recs[0].Name())
	}
}

func TestMakeMultimatteNameCollision(t *testing.T) {
	s := memscene.New()
	s.AddMaterial("red_MTL", scene.IDOf(1))
	s.AddMatte(memscene.Matte{Name: "red_matte", Red: scene.IDOf(9), UsesMaterialID: true})
	m := newTestModel(t, s)

	recs, err := m.MakeMultimatte([]scene.MaterialRef{"red_MTL"})
	if err != nil {
		t.Fatalf("MakeMultimatte failed: %v", err)
	}
	if recs[0].Name() != "red_matte1" {
		t.Errorf("expected host-chosen name red_matte1, got %s", recs[0].Name())
	}
}

func TestMakeMultimatteSingleUndo(t *testing.T) {
	s := memscene.New()
	for _, name := range []string{"a_MTL", "b_MTL", "c_MTL", "d_MTL"} {
		s.AddMaterial(name, scene.NoID)
	}
	m := newTestModel(t, s)

	if _, err := m.MakeMultimatte([]scene.MaterialRef{"a_MTL", "b_MTL", "c_MTL", "d_MTL"}); err != nil {
		t.Fatalf("MakeMultimatte failed: %v", err)
	}
	if s.UndoDepth() != 1 {
		t.Fatalf("expected one undo transaction, got %d", s.UndoDepth())
	}
	if err := m.Undo(); err != nil {
		t.Fatalf("Undo failed: %v", err)
	}
	if len(m.Mattes()) != 0 {
		t.Errorf("expected no mattes after undo, got %d", len(m.Mattes()))
	}
	if id, _ := s.MaterialID("a_MTL"); id.IsSet() {
		t.Errorf("expected allocated id reverted, got %q", id)
	}
}

func TestMakeMultimatteInvalidReference(t *testing.T) {
	s := memscene.New()
	s.AddMaterial("a_MTL", scene.NoID)
	m := newTestModel(t, s)

	recs, err := m.MakeMultimatte([]scene.MaterialRef{"a_MTL", "ghost_MTL"})
	if !errors.Is(err, scene.ErrInvalidReference) {
		t.Fatalf("expected ErrInvalidReference, got %v", err)
	}
	if len(recs) != 0 || len(s.Multimattes(false)) != 0 {
		t.Error("expected no record created")
	}
	// Steps committed before the failure stay.
	if id, _ := s.MaterialID("a_MTL"); id != scene.IDOf(1) {
		t.Errorf("expected a_MTL to keep allocated id 1, got %q", id)
	}
}

// flakyScene fails multimatte creation after a number of successes.
type flakyScene struct {
	*memscene.Scene
	creates int
	limit   int
}

func (f *flakyScene) CreateMultimatte() (scene.MatteRef, error) {
	if f.creates >= f.limit {
		return "", scene.ErrMutation
	}
	f.creates++
	return f.Scene.CreateMultimatte()
}

func TestMakeMultimattePartialCompletion(t *testing.T) {
	s := memscene.New()
	for i, name := range []string{"a_MTL", "b_MTL", "c_MTL", "d_MTL"} {
		s.AddMaterial(name, scene.IDOf(i+1))
	}
	core, logs := observer.New(zapcore.WarnLevel)
	m := New(&flakyScene{Scene: s, limit: 1}, DefaultConfig(), zap.New(core))

	recs, err := m.MakeMultimatte([]scene.MaterialRef{"a_MTL", "b_MTL", "c_MTL", "d_MTL"})
	if !errors.Is(err, scene.ErrMutation) {
		t.Fatalf("expected ErrMutation, got %v", err)
	}
	if len(recs) != 1 || recs[0].Name() != "a_b_c_matte" {
		t.Fatalf("expected the first record to survive, got %v", recs)
	}
	if len(s.Multimattes(true)) != 1 {
		t.Errorf("expected one committed matte, got %v", s.Multimattes(true))
	}
	if n := logs.FilterMessage("make multimatte failed").Len(); n != 1 {
		t.Errorf("expected the failure logged once, got %d", n)
	}
}

func TestMakeMultimatteNoAvailableID(t *testing.T) {
	s := memscene.New(memscene.WithMaxID(1))
	s.AddMaterial("a_MTL", scene.IDOf(1))
	s.AddMaterial("b_MTL", scene.NoID)
	core, logs := observer.New(zapcore.ErrorLevel)
	m := New(s, DefaultConfig(), zap.New(core))

	_, err := m.MakeMultimatte([]scene.MaterialRef{"b_MTL"})
	if !errors.Is(err, scene.ErrNoAvailableID) {
		t.Fatalf("expected ErrNoAvailableID, got %v", err)
	}
	if logs.Len() != 1 {
		t.Errorf("expected one error log, got %d", logs.Len())
	}
}

func TestMakeMultimatteEmpty(t *testing.T) {
	m := newTestModel(t, memscene.New())
	recs, err := m.MakeMultimatte(nil)
	if err != nil || len(recs) != 0 {
		t.Errorf("expected nothing to happen, got %v, %v", recs, err)
	}
}

func TestSetChannelsRoundTrip(t *testing.T) {
	s := memscene.New()
	s.AddMatte(memscene.Matte{Name: "x_matte", UsesMaterialID: true})
	m := newTestModel(t, s)
	if err := m.ReloadMattes(); err != nil {
		t.Fatalf("ReloadMattes failed: %v", err)
	}
	rec := m.Matte("x_matte")
	if rec == nil {
		t.Fatal("expected x_matte loaded")
	}

	if err := m.SetChannels(rec, scene.IDOf(5), scene.NoID, scene.IDOf(7)); err != nil {
		t.Fatalf("SetChannels failed: %v", err)
	}
	got, err := s.Channels("x_matte")
	if err != nil {
		t.Fatalf("Channels failed: %v", err)
	}
	want := scene.Channels{Red: scene.IDOf(5), Blue: scene.IDOf(7), UsesMaterialID: true}
	if got != want || rec.Channels() != want {
		t.Errorf("expected %+v, got scene %+v record %+v", want, got, rec.Channels())
	}
}

func TestDeleteMattes(t *testing.T) {
	s := memscene.New()
	s.AddMatte(memscene.Matte{Name: "a_matte", UsesMaterialID: true})
	s.AddMatte(memscene.Matte{Name: "12", UsesMaterialID: true})
	m := newTestModel(t, s)
	if err := m.ReloadMattes(); err != nil {
		t.Fatalf("ReloadMattes failed: %v", err)
	}

	writes := s.Writes()
	if err := m.DeleteMattes([]string{"12"}); err != nil {
		t.Fatalf("DeleteMattes failed: %v", err)
	}
	if s.Writes() != writes {
		t.Error("numeric label must not reach the scene")
	}

	if err := m.DeleteMattes([]string{"a_matte", "7"}); err != nil {
		t.Fatalf("DeleteMattes failed: %v", err)
	}
	for _, ref := range s.Multimattes(true) {
		if ref == "a_matte" {
			t.Error("expected a_matte deleted from the scene")
		}
	}
	if m.Matte("a_matte") != nil {
		t.Error("expected a_matte removed from the model")
	}
}

func TestRenameMatte(t *testing.T) {
	s := memscene.New()
	s.AddMatte(memscene.Matte{Name: "a_matte", UsesMaterialID: true})
	s.AddMatte(memscene.Matte{Name: "b_matte", UsesMaterialID: true})
	m := newTestModel(t, s)
	if err := m.ReloadMattes(); err != nil {
		t.Fatalf("ReloadMattes failed: %v", err)
	}

	got, err := m.RenameMatte(m.Matte("b_matte"), "a_matte")
	if err != nil {
		t.Fatalf("RenameMatte failed: %v", err)
	}
	if got != "a_matte1" {
		t.Errorf("expected a_matte1, got %s", got)
	}

	rec := m.Matte("a_matte")
	got, err = m.RenameMatte(rec, "  ")
	if !errors.Is(err, scene.ErrMutation) {
		t.Errorf("expected ErrMutation, got %v", err)
	}
	if got != "a_matte" || rec.Name() != "a_matte" {
		t.Errorf("expected old name kept, got %s", got)
	}
}

func TestMattesUsingAndMaterialsWithID(t *testing.T) {
	s := memscene.New()
	s.AddMaterial("a_MTL", scene.IDOf(3))
	s.AddMaterial("b_MTL", scene.IDOf(3))
	s.AddMaterial("c_MTL", scene.IDOf(4))
	s.AddMatte(memscene.Matte{Name: "x_matte", Green: scene.IDOf(3), UsesMaterialID: true})
	s.AddMatte(memscene.Matte{Name: "y_matte", Red: scene.IDOf(4), UsesMaterialID: true})
	s.AddMatte(memscene.Matte{Name: "obj_matte", Red: scene.IDOf(3)})
	m := newTestModel(t, s)
	if err := m.ReloadMattes(); err != nil {
		t.Fatalf("ReloadMattes failed: %v", err)
	}

	recs := m.MattesUsing(3)
	if len(recs) != 1 || recs[0].Name() != "x_matte" {
		t.Errorf("expected only x_matte, got %v", recs)
	}
	refs := m.MaterialsWithID(3)
	if len(refs) != 2 || refs[0] != "a_MTL" || refs[1] != "b_MTL" {
		t.Errorf("expected [a_MTL b_MTL], got %v", refs)
	}
}

// readFaultScene fails MaterialID reads of one material once its budget
// of successful reads is spent.
type readFaultScene struct {
	*memscene.Scene
	ref     scene.MaterialRef
	okReads int
}

func (f *readFaultScene) MaterialID(ref scene.MaterialRef) (scene.ID, error) {
	if ref == f.ref {
		if f.okReads == 0 {
			return scene.NoID, scene.ErrMutation
		}
		f.okReads--
	}
	return f.Scene.MaterialID(ref)
}

func TestMakeMultimatteReportsResyncFailure(t *testing.T) {
	s := memscene.New()
	s.AddMaterial("a_MTL", scene.IDOf(1))
	s.AddMaterial("b_MTL", scene.IDOf(2))
	core, logs := observer.New(zapcore.WarnLevel)
	// One read for Bind, one for resolving the id; the resync read fails.
	m := New(&readFaultScene{Scene: s, ref: "a_MTL", okReads: 2}, DefaultConfig(), zap.New(core))
	bind(t, m, "a_MTL")

	recs, err := m.MakeMultimatte([]scene.MaterialRef{"a_MTL", "b_MTL"})
	if !errors.Is(err, scene.ErrMutation) {
		t.Fatalf("expected ErrMutation, got %v", err)
	}
	if len(recs) != 1 || recs[0].Name() != "a_b_matte" {
		t.Errorf("expected the created record returned, got %v", recs)
	}
	if logs.Len() != 1 {
		t.Errorf("expected the failure logged once, got %d", logs.Len())
	}
}
