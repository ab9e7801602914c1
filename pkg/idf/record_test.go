package idf_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/calvinalkan/idfpatch/pkg/idf"
)

const branchFixture = `
Branch,B1,,Pipe:Adiabatic,P1,N1,N2,Pump:VariableSpeed,PU1,N2,N3;
`

func loadBranch(t *testing.T) (*idf.Store, *idf.Record) {
	t.Helper()

	s := newLoadedStore(t, branchFixture)

	b, err := s.FindByKey("Branch", "B1")
	if err != nil {
		t.Fatal(err)
	}

	return s, b
}

func Test_Record_InsertFields_Shifts_Later_Fields_When_Inserted_Mid_Record(t *testing.T) {
	t.Parallel()

	_, b := loadBranch(t)

	// Field 2 is the first component type; the record type is not a field.
	if b.Field(2) != "Pipe:Adiabatic" {
		t.Fatalf("field 2 = %q, want Pipe:Adiabatic", b.Field(2))
	}

	shape := b.Shape()

	if err := b.InsertFields(6, "Coil:Heating:Water", "C1", "N2", "N2a"); err != nil {
		t.Fatalf("insert: %v", err)
	}

	want := []string{
		"B1", "",
		"Pipe:Adiabatic", "P1", "N1", "N2",
		"Coil:Heating:Water", "C1", "N2", "N2a",
		"Pump:VariableSpeed", "PU1", "N2", "N3",
	}
	if diff := cmp.Diff(want, b.Fields()); diff != "" {
		t.Fatalf("fields mismatch (-want +got):\n%s", diff)
	}

	if b.Shape() == shape {
		t.Fatal("shape unchanged after shifting edit")
	}

	// Name resolution follows the shift.
	i, err := b.FieldIndex("Component 3 Name")
	if err != nil {
		t.Fatal(err)
	}

	if b.Field(i) != "PU1" {
		t.Fatalf("Component 3 Name = %q, want PU1", b.Field(i))
	}
}

func Test_Record_RemoveFields_Shifts_Later_Fields_When_Removed_Mid_Record(t *testing.T) {
	t.Parallel()

	_, b := loadBranch(t)

	if err := b.RemoveFields(2, 4); err != nil {
		t.Fatalf("remove: %v", err)
	}

	want := []string{"B1", "", "Pump:VariableSpeed", "PU1", "N2", "N3"}
	if diff := cmp.Diff(want, b.Fields()); diff != "" {
		t.Fatalf("fields mismatch (-want +got):\n%s", diff)
	}

	if err := b.RemoveFields(4, 3); !errors.Is(err, idf.ErrFieldIndex) {
		t.Fatalf("err = %v, want ErrFieldIndex", err)
	}
}

func Test_Mark_Follows_Field_When_Fields_Shift(t *testing.T) {
	t.Parallel()

	_, b := loadBranch(t)

	pumpInlet, err := b.MarkField("Component 2 Inlet Node Name")
	if err != nil {
		t.Fatal(err)
	}

	pipeName, err := b.Mark(3)
	if err != nil {
		t.Fatal(err)
	}

	if err := b.InsertFields(6, "Coil:Heating:Water", "C1", "N2", "N2a"); err != nil {
		t.Fatal(err)
	}

	if i, _ := pumpInlet.Index(); i != 12 {
		t.Fatalf("pump inlet index = %d, want 12", i)
	}

	if err := pumpInlet.Set("N2a"); err != nil {
		t.Fatal(err)
	}

	if b.Field(12) != "N2a" {
		t.Fatalf("field 12 = %q, want N2a", b.Field(12))
	}

	// Removing the pipe quadruple makes the pipe mark stale and shifts the pump mark.
	if err := b.RemoveFields(2, 4); err != nil {
		t.Fatal(err)
	}

	if _, err := pipeName.Value(); !errors.Is(err, idf.ErrStaleMark) {
		t.Fatalf("err = %v, want ErrStaleMark", err)
	}

	if v, err := pumpInlet.Value(); err != nil || v != "N2a" {
		t.Fatalf("pump inlet = %q, %v, want N2a", v, err)
	}

	pumpInlet.Release()

	if _, err := pumpInlet.Index(); !errors.Is(err, idf.ErrStaleMark) {
		t.Fatalf("err = %v, want ErrStaleMark after release", err)
	}
}

func Test_Record_Mark_Fails_When_Index_Is_Out_Of_Range(t *testing.T) {
	t.Parallel()

	_, b := loadBranch(t)

	for _, i := range []int{-1, b.Len()} {
		m, err := b.Mark(i)
		if !errors.Is(err, idf.ErrFieldIndex) || m != nil {
			t.Fatalf("Mark(%d) = %v, %v, want nil, ErrFieldIndex", i, m, err)
		}
	}
}

func Test_Record_Set_Rejects_Index_When_Out_Of_Range(t *testing.T) {
	t.Parallel()

	_, b := loadBranch(t)

	for _, i := range []int{-1, b.Len()} {
		err := b.Set(i, "x")
		if !errors.Is(err, idf.ErrFieldIndex) {
			t.Fatalf("Set(%d) err = %v, want ErrFieldIndex", i, err)
		}

		var rErr *idf.Error
		if !errors.As(err, &rErr) || rErr.Type != "Branch" || rErr.Key != "B1" {
			t.Fatalf("err = %#v, want record context", err)
		}
	}
}

func Test_Record_Set_Rejects_Value_When_It_Would_Break_Text_Form(t *testing.T) {
	t.Parallel()

	_, b := loadBranch(t)

	for _, v := range []string{"a,b", "a;b", "a!b", "a\nb", " P2", "P2\t", "  "} {
		if err := b.Set(3, v); !errors.Is(err, idf.ErrInvalidValue) {
			t.Fatalf("Set(%q) err = %v, want ErrInvalidValue", v, err)
		}
	}

	if b.Field(3) != "P1" {
		t.Fatalf("field 3 = %q, want unchanged P1", b.Field(3))
	}
}

func Test_Record_SetField_Pads_Record_When_Field_Is_Past_End(t *testing.T) {
	t.Parallel()

	s := newLoadedStore(t, "Pipe:Outdoor,P1;")

	p, _ := s.Lookup("Pipe:Outdoor", "P1")

	if err := p.SetField("Fluid Outlet Node Name", "Out"); err != nil {
		t.Fatalf("set field: %v", err)
	}

	want := []string{"P1", "", "", "Out"}
	if diff := cmp.Diff(want, p.Fields()); diff != "" {
		t.Fatalf("fields mismatch (-want +got):\n%s", diff)
	}

	got, err := p.Get("fluid outlet node name")
	if err != nil || got != "Out" {
		t.Fatalf("Get = %q, %v, want Out", got, err)
	}

	_, err = p.Get("No Such Field")
	if !errors.Is(err, idf.ErrUnknownField) {
		t.Fatalf("err = %v, want ErrUnknownField", err)
	}
}

func Test_Record_Key_Edit_Reindexes_When_Field_Zero_Changes(t *testing.T) {
	t.Parallel()

	s, b := loadBranch(t)

	if err := b.Set(0, "B2"); err != nil {
		t.Fatal(err)
	}

	if _, ok := s.Lookup("Branch", "B1"); ok {
		t.Fatal("old key still indexed")
	}

	if got, _ := s.Lookup("Branch", "b2"); got != b {
		t.Fatal("new key not indexed")
	}

	// A shift at position 0 changes the key too.
	if err := b.InsertFields(0, "B0"); err != nil {
		t.Fatal(err)
	}

	if got, _ := s.Lookup("Branch", "B0"); got != b {
		t.Fatal("shifted key not indexed")
	}

	if err := s.Verify(); err != nil {
		t.Fatal(err)
	}
}

func Test_Record_FieldIndex_Fails_When_Record_Is_Detached(t *testing.T) {
	t.Parallel()

	r := idf.NewRecord("Pipe:Adiabatic", "P1", "In", "Out")

	if _, err := r.FieldIndex("Inlet Node Name"); !errors.Is(err, idf.ErrDetached) {
		t.Fatalf("err = %v, want ErrDetached", err)
	}

	// Raw-index edits work without a store.
	if err := r.Set(1, "In2"); err != nil {
		t.Fatal(err)
	}

	if got := r.String(); got != "Pipe:Adiabatic, P1, In2, Out;" {
		t.Fatalf("String = %q", got)
	}
}
