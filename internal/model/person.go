// Package model はドメインモデルを定義する。
package model

import (
	"strings"
	"time"
)

// Gender は人物の性別を表す。
type Gender string

const (
	// GenderMasculine は男性。
	GenderMasculine Gender = "masculine"
	// GenderFeminine は女性。
	GenderFeminine Gender = "feminine"
	// GenderOther はその他。
	GenderOther Gender = "other"
)

// Genders は許可された性別の一覧を定義順で返す。
func Genders() []Gender {
	return []Gender{GenderMasculine, GenderFeminine, GenderOther}
}

// Valid は許可された値かどうかを返す。
func (g Gender) Valid() bool {
	switch g {
	case GenderMasculine, GenderFeminine, GenderOther:
		return true
	default:
		return false
	}
}

// IdentityDocumentLength は身分証番号の文字数。
const IdentityDocumentLength = 10

// PersonFields はクライアントが変更可能な人物のフィールド一式。
// バリデーション通過後のみ生成される。
type PersonFields struct {
	IdentityDocument string
	GivenNames       string
	FamilyNames      string
	BirthDate        string // 受け取った値をそのまま保持する
	Gender           Gender
	City             string
}

// Normalize は氏名の前後の空白を除去したコピーを返す。
func (f PersonFields) Normalize() PersonFields {
	f.GivenNames = strings.TrimSpace(f.GivenNames)
	f.FamilyNames = strings.TrimSpace(f.FamilyNames)
	return f
}

// Person は登録済みの人物レコードを表す。
// IDとタイムスタンプはストアが設定する。
type Person struct {
	ID int64
	PersonFields
	CreatedAt time.Time
	UpdatedAt time.Time
}

// 入力フィールド名。JSONのキーおよび違反メッセージの先頭に使う。
const (
	FieldIdentityDocument = "identityDocument"
	FieldGivenNames       = "givenNames"
	FieldFamilyNames      = "familyNames"
	FieldBirthDate        = "birthDate"
	FieldGender           = "gender"
	FieldCity             = "city"
)

// PersonInput はクライアントから送信された未検証の人物データ。
// 欠落したフィールドを表現するため全てポインタで保持する。
// 文字列以外の値が送られたフィールドはNonStringに記録し、ポインタはnilのままにする。
type PersonInput struct {
	IdentityDocument *string
	GivenNames       *string
	FamilyNames      *string
	BirthDate        *string
	Gender           *string
	City             *string

	NonString map[string]bool
}

// MarkNonString は指定フィールドに文字列以外の値が送られたことを記録する。
func (in *PersonInput) MarkNonString(field string) {
	if in.NonString == nil {
		in.NonString = make(map[string]bool)
	}
	in.NonString[field] = true
}

// IsNonString は指定フィールドに文字列以外の値が送られたかを返す。
func (in PersonInput) IsNonString(field string) bool {
	return in.NonString[field]
}

// Fields はPersonInputをPersonFieldsに昇格させる。
// 欠落フィールドはゼロ値になるため、バリデーション通過後に呼び出すこと。
func (in PersonInput) Fields() PersonFields {
	return PersonFields{
		IdentityDocument: deref(in.IdentityDocument),
		GivenNames:       deref(in.GivenNames),
		FamilyNames:      deref(in.FamilyNames),
		BirthDate:        deref(in.BirthDate),
		Gender:           Gender(deref(in.Gender)),
		City:             deref(in.City),
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
