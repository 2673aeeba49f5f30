package person

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/hitoshi/personreg/internal/model"
)

// Validate は候補レコードを検証し、違反メッセージの一覧を返す。
// 全項目を独立に検証し、該当する違反を全てフィールド順にまとめて返す。
// 空のスライスは有効を意味する。副作用はない。
// 文字列以外の値は「存在するが不正」として扱い、取り得る違反を返す。
func Validate(in model.PersonInput) []string {
	violations := []string{}

	switch {
	case in.IsNonString(model.FieldIdentityDocument):
		violations = append(violations,
			fmt.Sprintf("identityDocument must be exactly %d characters", model.IdentityDocumentLength))
	case isEmpty(in.IdentityDocument):
		violations = append(violations, "identityDocument is required")
	case utf8.RuneCountInString(*in.IdentityDocument) != model.IdentityDocumentLength:
		violations = append(violations,
			fmt.Sprintf("identityDocument must be exactly %d characters", model.IdentityDocumentLength))
	}

	// 氏名・生年月日・都市は文字列でなければ値がないものとみなす
	if in.IsNonString(model.FieldGivenNames) || isBlank(in.GivenNames) {
		violations = append(violations, "givenNames is required")
	}

	if in.IsNonString(model.FieldFamilyNames) || isBlank(in.FamilyNames) {
		violations = append(violations, "familyNames is required")
	}

	if in.IsNonString(model.FieldBirthDate) || isEmpty(in.BirthDate) {
		violations = append(violations, "birthDate is required")
	}

	switch {
	case in.IsNonString(model.FieldGender):
		violations = append(violations, "gender must be one of "+genderList())
	case isEmpty(in.Gender):
		violations = append(violations, "gender is required")
	case !model.Gender(*in.Gender).Valid():
		violations = append(violations, "gender must be one of "+genderList())
	}

	if in.IsNonString(model.FieldCity) || isEmpty(in.City) {
		violations = append(violations, "city is required")
	}

	return violations
}

func isEmpty(s *string) bool {
	return s == nil || *s == ""
}

func isBlank(s *string) bool {
	return s == nil || strings.TrimSpace(*s) == ""
}

func genderList() string {
	genders := model.Genders()
	names := make([]string, len(genders))
	for i, g := range genders {
		names[i] = string(g)
	}
	return strings.Join(names, ", ")
}
