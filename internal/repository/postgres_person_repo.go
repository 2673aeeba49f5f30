package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/hitoshi/personreg/internal/model"
)

// pgUniqueViolation はPostgreSQLの一意制約違反のSQLSTATE。
const pgUniqueViolation = "23505"

// personColumns はSELECT/RETURNINGで使用するカラム一覧。
const personColumns = `id, identity_document, given_names, family_names, birth_date, gender, city, created_at, updated_at`

// PostgresPersonRepo はPostgreSQLを使用した人物リポジトリ。
// IDはBIGSERIALで採番され、削除後も再利用されない。
// 身分証番号の一意性はUNIQUE制約で保証する。
type PostgresPersonRepo struct {
	db      *sql.DB
	nowFunc func() time.Time
}

// NewPostgresPersonRepo はPostgresPersonRepoを生成する。
func NewPostgresPersonRepo(db *sql.DB) *PostgresPersonRepo {
	return &PostgresPersonRepo{db: db, nowFunc: time.Now}
}

// rowScanner は*sql.Rowと*sql.Rowsの共通インターフェース。
type rowScanner interface {
	Scan(dest ...any) error
}

func scanPerson(s rowScanner) (*model.Person, error) {
	p := &model.Person{}
	var gender string
	err := s.Scan(
		&p.ID, &p.IdentityDocument, &p.GivenNames, &p.FamilyNames,
		&p.BirthDate, &gender, &p.City, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.Gender = model.Gender(gender)
	return p, nil
}

// Insert は新しいレコードを作成する。
func (r *PostgresPersonRepo) Insert(ctx context.Context, fields model.PersonFields) (*model.Person, error) {
	f := fields.Normalize()
	now := r.nowFunc()

	p, err := scanPerson(r.db.QueryRowContext(ctx,
		`INSERT INTO people (identity_document, given_names, family_names, birth_date, gender, city, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
		 RETURNING `+personColumns,
		f.IdentityDocument, f.GivenNames, f.FamilyNames, f.BirthDate, string(f.Gender), f.City, now,
	))
	if isUniqueViolation(err) {
		return nil, ErrDuplicateIdentityDocument
	}
	if err != nil {
		return nil, fmt.Errorf("failed to insert person: %w", err)
	}

	return p, nil
}

// FindByID は指定IDのレコードを取得する。見つからない場合はnilを返す。
func (r *PostgresPersonRepo) FindByID(ctx context.Context, id int64) (*model.Person, error) {
	p, err := scanPerson(r.db.QueryRowContext(ctx,
		`SELECT `+personColumns+` FROM people WHERE id = $1`,
		id,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find person by ID: %w", err)
	}

	return p, nil
}

// List は全レコードをID昇順（挿入順）で返す。
func (r *PostgresPersonRepo) List(ctx context.Context) ([]*model.Person, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+personColumns+` FROM people ORDER BY id ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list people: %w", err)
	}
	defer rows.Close()

	var people []*model.Person
	for rows.Next() {
		p, err := scanPerson(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan person: %w", err)
		}
		people = append(people, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate people: %w", err)
	}

	return people, nil
}

// Update は指定IDのレコードを1文のUPDATEで置き換える。
// updated_atはcreated_atより前にならないようGREATESTで補正する。
func (r *PostgresPersonRepo) Update(ctx context.Context, id int64, fields model.PersonFields) (*model.Person, error) {
	f := fields.Normalize()

	p, err := scanPerson(r.db.QueryRowContext(ctx,
		`UPDATE people
		 SET identity_document = $2, given_names = $3, family_names = $4,
		     birth_date = $5, gender = $6, city = $7,
		     updated_at = GREATEST($8, created_at)
		 WHERE id = $1
		 RETURNING `+personColumns,
		id, f.IdentityDocument, f.GivenNames, f.FamilyNames, f.BirthDate, string(f.Gender), f.City, r.nowFunc(),
	))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if isUniqueViolation(err) {
		return nil, ErrDuplicateIdentityDocument
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update person: %w", err)
	}

	return p, nil
}

// Delete は指定IDのレコードを削除し、削除したレコードを返す。
func (r *PostgresPersonRepo) Delete(ctx context.Context, id int64) (*model.Person, error) {
	p, err := scanPerson(r.db.QueryRowContext(ctx,
		`DELETE FROM people WHERE id = $1 RETURNING `+personColumns,
		id,
	))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to delete person: %w", err)
	}

	return p, nil
}

// Count は生存レコード数を返す。
func (r *PostgresPersonRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM people`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count people: %w", err)
	}
	return count, nil
}

// isUniqueViolation はエラーがPostgreSQLの一意制約違反かどうかを判定する。
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pgUniqueViolation
}

// compile-time interface check
var _ PersonRepository = (*PostgresPersonRepo)(nil)
