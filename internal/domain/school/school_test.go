package school

import "testing"

func TestPatchApply_OnlyTouchesProvidedFields(t *testing.T) {
	s := NewFromCreateRequest(CreateSchoolRequest{
		Name:         "Hillside High",
		Level:        "secondary",
		Location:     "Nairobi",
		StudentCount: 420,
		TeacherCount: 31,
	})

	location := "Mombasa"
	teachers := 0
	Patch{Location: &location, TeacherCount: &teachers}.Apply(&s)

	if s.Location != "Mombasa" {
		t.Fatalf("got location %q, want Mombasa", s.Location)
	}
	if s.TeacherCount != 0 {
		t.Fatalf("explicit zero should be applied, got %d", s.TeacherCount)
	}
	if s.Name != "Hillside High" || s.Level != "secondary" || s.StudentCount != 420 {
		t.Fatalf("untouched fields changed: %+v", s)
	}
}

func TestNewFromCreateRequest_SetsTimestamps(t *testing.T) {
	s := NewFromCreateRequest(CreateSchoolRequest{Name: "x"})

	if s.CreatedAt.IsZero() || !s.CreatedAt.Equal(s.UpdatedAt) {
		t.Fatalf("expected equal non-zero timestamps, got %v / %v", s.CreatedAt, s.UpdatedAt)
	}
	if s.ID != 0 {
		t.Fatalf("id should be left for the store, got %d", s.ID)
	}
}

func TestPatchEmpty(t *testing.T) {
	if !(Patch{}).Empty() {
		t.Fatalf("zero patch should be empty")
	}

	zero := 0
	if (Patch{TeacherCount: &zero}).Empty() {
		t.Fatalf("a patch setting zero is not empty")
	}
}
