package model

import "testing"

func TestGender_Valid(t *testing.T) {
	tests := []struct {
		gender Gender
		want   bool
	}{
		{GenderMasculine, true},
		{GenderFeminine, true},
		{GenderOther, true},
		{"", false},
		{"masculino", false},
		{"Feminine", false},
	}

	for _, tt := range tests {
		if got := tt.gender.Valid(); got != tt.want {
			t.Errorf("Gender(%q).Valid() = %v, want %v", tt.gender, got, tt.want)
		}
	}
}

func TestPersonFields_Normalize_TrimsNamesOnly(t *testing.T) {
	f := PersonFields{
		IdentityDocument: " 123456789",
		GivenNames:       "  Ana ",
		FamilyNames:      "\tRuiz\n",
		City:             " Quito ",
	}

	got := f.Normalize()

	if got.GivenNames != "Ana" {
		t.Errorf("GivenNames = %q, want %q", got.GivenNames, "Ana")
	}
	if got.FamilyNames != "Ruiz" {
		t.Errorf("FamilyNames = %q, want %q", got.FamilyNames, "Ruiz")
	}
	if got.IdentityDocument != " 123456789" {
		t.Errorf("IdentityDocument should be kept as given, got %q", got.IdentityDocument)
	}
	if got.City != " Quito " {
		t.Errorf("City should be kept as given, got %q", got.City)
	}
	if f.GivenNames != "  Ana " {
		t.Error("Normalize must not modify the receiver")
	}
}

func TestPersonInput_Fields(t *testing.T) {
	doc, given, gender := "1234567890", "Ana", "feminine"
	in := PersonInput{
		IdentityDocument: &doc,
		GivenNames:       &given,
		Gender:           &gender,
	}

	f := in.Fields()

	if f.IdentityDocument != doc {
		t.Errorf("IdentityDocument = %q, want %q", f.IdentityDocument, doc)
	}
	if f.GivenNames != given {
		t.Errorf("GivenNames = %q, want %q", f.GivenNames, given)
	}
	if f.Gender != GenderFeminine {
		t.Errorf("Gender = %q, want %q", f.Gender, GenderFeminine)
	}
	if f.FamilyNames != "" || f.City != "" || f.BirthDate != "" {
		t.Error("missing fields should be promoted to zero values")
	}
}

func TestPersonInput_MarkNonString(t *testing.T) {
	var in PersonInput
	if in.IsNonString(FieldGender) {
		t.Fatal("zero value should have no non-string fields")
	}

	in.MarkNonString(FieldGender)

	if !in.IsNonString(FieldGender) {
		t.Error("gender should be marked")
	}
	if in.IsNonString(FieldCity) {
		t.Error("city should not be marked")
	}
}
