package person

import (
	"strings"
	"testing"

	"github.com/hitoshi/personreg/internal/model"
)

func strPtr(s string) *string { return &s }

// validInput は全項目が有効な入力を返す。
func validInput() model.PersonInput {
	return model.PersonInput{
		IdentityDocument: strPtr("1234567890"),
		GivenNames:       strPtr(" Ana "),
		FamilyNames:      strPtr("Ruiz"),
		BirthDate:        strPtr("2000-01-01"),
		Gender:           strPtr("feminine"),
		City:             strPtr("Quito"),
	}
}

func TestValidate_ValidInput_ReturnsEmpty(t *testing.T) {
	violations := Validate(validInput())
	if len(violations) != 0 {
		t.Errorf("expected no violations, got %v", violations)
	}
	if violations == nil {
		t.Error("expected empty non-nil slice")
	}
}

func TestValidate_EachMissingFieldIsNamed(t *testing.T) {
	tests := []struct {
		field string
		clear func(in *model.PersonInput)
	}{
		{"identityDocument", func(in *model.PersonInput) { in.IdentityDocument = nil }},
		{"givenNames", func(in *model.PersonInput) { in.GivenNames = nil }},
		{"familyNames", func(in *model.PersonInput) { in.FamilyNames = nil }},
		{"birthDate", func(in *model.PersonInput) { in.BirthDate = nil }},
		{"gender", func(in *model.PersonInput) { in.Gender = nil }},
		{"city", func(in *model.PersonInput) { in.City = nil }},
	}

	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			in := validInput()
			tt.clear(&in)

			violations := Validate(in)
			if len(violations) != 1 {
				t.Fatalf("violations = %v, want exactly 1", violations)
			}
			if !strings.HasPrefix(violations[0], tt.field+" ") {
				t.Errorf("violation %q should name field %q", violations[0], tt.field)
			}
		})
	}
}

func TestValidate_EmptyStringsAreMissing(t *testing.T) {
	empty := ""
	in := model.PersonInput{
		IdentityDocument: &empty,
		GivenNames:       &empty,
		FamilyNames:      &empty,
		BirthDate:        &empty,
		Gender:           &empty,
		City:             &empty,
	}

	want := []string{
		"identityDocument is required",
		"givenNames is required",
		"familyNames is required",
		"birthDate is required",
		"gender is required",
		"city is required",
	}

	got := Validate(in)
	if len(got) != len(want) {
		t.Fatalf("violations = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("violations[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestValidate_AllMissing_CollectsEveryViolation(t *testing.T) {
	violations := Validate(model.PersonInput{})
	if len(violations) != 6 {
		t.Errorf("len(violations) = %d, want 6: %v", len(violations), violations)
	}
}

func TestValidate_BlankNames(t *testing.T) {
	in := validInput()
	in.GivenNames = strPtr("   ")
	in.FamilyNames = strPtr("\t\n")

	violations := Validate(in)
	want := []string{"givenNames is required", "familyNames is required"}
	if len(violations) != len(want) {
		t.Fatalf("violations = %v, want %v", violations, want)
	}
	for i := range want {
		if violations[i] != want[i] {
			t.Errorf("violations[%d] = %q, want %q", i, violations[i], want[i])
		}
	}
}

func TestValidate_IdentityDocumentLength(t *testing.T) {
	tests := []struct {
		name  string
		doc   string
		valid bool
	}{
		{"exactly 10 digits", "1234567890", true},
		{"exactly 10 letters", "ABCDEFGHIJ", true},
		{"10 with spaces", "12345 6789", true},
		{"10 multibyte characters", "ññññññññññ", true},
		{"9 characters", "123456789", false},
		{"11 characters", "12345678901", false},
		{"1 character", "1", false},
		{"whitespace padded to 12", " 1234567890 ", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			in.IdentityDocument = strPtr(tt.doc)

			violations := Validate(in)
			if tt.valid && len(violations) != 0 {
				t.Errorf("expected valid, got %v", violations)
			}
			if !tt.valid {
				if len(violations) != 1 || violations[0] != "identityDocument must be exactly 10 characters" {
					t.Errorf("violations = %v, want length violation", violations)
				}
			}
		})
	}
}

func TestValidate_Gender(t *testing.T) {
	tests := []struct {
		gender string
		valid  bool
	}{
		{"masculine", true},
		{"feminine", true},
		{"other", true},
		{"masculino", false},
		{"FEMININE", false},
		{"unknown", false},
	}

	for _, tt := range tests {
		t.Run(tt.gender, func(t *testing.T) {
			in := validInput()
			in.Gender = strPtr(tt.gender)

			violations := Validate(in)
			if tt.valid && len(violations) != 0 {
				t.Errorf("expected valid, got %v", violations)
			}
			if !tt.valid {
				if len(violations) != 1 || violations[0] != "gender must be one of masculine, feminine, other" {
					t.Errorf("violations = %v, want enumeration violation", violations)
				}
			}
		})
	}
}

func TestValidate_DoesNotModifyInput(t *testing.T) {
	in := validInput()
	_ = Validate(in)

	if *in.GivenNames != " Ana " {
		t.Errorf("GivenNames = %q, Validate must not trim the input", *in.GivenNames)
	}
}

func TestValidate_NonStringValues(t *testing.T) {
	tests := []struct {
		field string
		want  string
	}{
		{model.FieldIdentityDocument, "identityDocument must be exactly 10 characters"},
		{model.FieldGivenNames, "givenNames is required"},
		{model.FieldFamilyNames, "familyNames is required"},
		{model.FieldBirthDate, "birthDate is required"},
		{model.FieldGender, "gender must be one of masculine, feminine, other"},
		{model.FieldCity, "city is required"},
	}

	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			in := validInput()
			in.MarkNonString(tt.field)

			got := Validate(in)
			if len(got) != 1 || got[0] != tt.want {
				t.Errorf("Validate() = %v, want [%q]", got, tt.want)
			}
		})
	}
}

func TestValidate_NonStringMixedWithOtherViolations(t *testing.T) {
	in := model.PersonInput{
		GivenNames:  strPtr(""),
		FamilyNames: strPtr("Ruiz"),
		BirthDate:   strPtr("2000-01-01"),
		Gender:      strPtr("x"),
		City:        strPtr("Quito"),
	}
	in.MarkNonString(model.FieldIdentityDocument)

	got := Validate(in)
	want := []string{
		"identityDocument must be exactly 10 characters",
		"givenNames is required",
		"gender must be one of masculine, feminine, other",
	}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("Validate() = %v, want %v", got, want)
	}
}
