// Package person は人物レコード管理のドメインロジックを提供する。
// バリデーションとストア操作を組み合わせ、結果を分類済みのエラーとして返す。
package person

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strconv"

	"github.com/hitoshi/personreg/internal/metrics"
	"github.com/hitoshi/personreg/internal/model"
	"github.com/hitoshi/personreg/internal/repository"
)

// 操作名（ログとメトリクスのラベルに使用する）
const (
	OperationCreate = "create"
	OperationList   = "list"
	OperationGet    = "get"
	OperationUpdate = "update"
	OperationDelete = "delete"
)

// Service は人物レコード管理のサービス層。
// HTTP層が直接呼び出す唯一のコンポーネント。
type Service struct {
	repo    repository.PersonRepository
	metrics metrics.MetricsCollector
	logger  *slog.Logger
}

// NewService はServiceの新しいインスタンスを生成する。
// collectorはnilでもよい。
func NewService(repo repository.PersonRepository, collector metrics.MetricsCollector, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:    repo,
		metrics: collector,
		logger:  logger,
	}
}

// Create はバリデーション後に新しいレコードを登録する。
// 違反がある場合はストアに触れずにVALIDATION_FAILEDを返す。
func (s *Service) Create(ctx context.Context, in model.PersonInput) (*model.Person, error) {
	if violations := Validate(in); len(violations) > 0 {
		s.record(OperationCreate, metrics.ResultInvalid)
		s.logger.Info("バリデーションエラー",
			slog.String("operation", OperationCreate),
			slog.Any("violations", violations),
		)
		return nil, model.NewValidationError(violations)
	}

	fields := in.Fields()
	p, err := s.repo.Insert(ctx, fields)
	if err != nil {
		return nil, s.storeError(OperationCreate, "", fields.IdentityDocument, err)
	}

	s.record(OperationCreate, metrics.ResultSuccess)
	s.refreshLiveRecords(ctx)
	s.logger.Info("人物レコードを作成しました",
		slog.String("operation", OperationCreate),
		slog.Int64("person_id", p.ID),
	)

	return p, nil
}

// List は全レコードを新しい順で返す。
func (s *Service) List(ctx context.Context) ([]*model.Person, error) {
	people, err := s.repo.List(ctx)
	if err != nil {
		s.record(OperationList, metrics.ResultError)
		return nil, fmt.Errorf("人物一覧の取得に失敗しました: %w", err)
	}

	// ストアは挿入順で返すため、表示用に反転する
	slices.Reverse(people)

	s.record(OperationList, metrics.ResultSuccess)
	return people, nil
}

// Get は指定IDのレコードを返す。
func (s *Service) Get(ctx context.Context, id int64) (*model.Person, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		s.record(OperationGet, metrics.ResultError)
		return nil, fmt.Errorf("人物の取得に失敗しました: %w", err)
	}
	if p == nil {
		s.record(OperationGet, metrics.ResultNotFound)
		return nil, model.NewPersonNotFoundError(formatID(id))
	}

	s.record(OperationGet, metrics.ResultSuccess)
	return p, nil
}

// Update はバリデーション後に指定IDのレコードを置き換える。
// 違反がある場合はストアに触れずにVALIDATION_FAILEDを返す。
func (s *Service) Update(ctx context.Context, id int64, in model.PersonInput) (*model.Person, error) {
	if violations := Validate(in); len(violations) > 0 {
		s.record(OperationUpdate, metrics.ResultInvalid)
		s.logger.Info("バリデーションエラー",
			slog.String("operation", OperationUpdate),
			slog.Int64("person_id", id),
			slog.Any("violations", violations),
		)
		return nil, model.NewValidationError(violations)
	}

	fields := in.Fields()
	p, err := s.repo.Update(ctx, id, fields)
	if err != nil {
		return nil, s.storeError(OperationUpdate, formatID(id), fields.IdentityDocument, err)
	}

	s.record(OperationUpdate, metrics.ResultSuccess)
	s.logger.Info("人物レコードを更新しました",
		slog.String("operation", OperationUpdate),
		slog.Int64("person_id", p.ID),
	)

	return p, nil
}

// Delete は指定IDのレコードを削除し、削除したレコードを返す。
func (s *Service) Delete(ctx context.Context, id int64) (*model.Person, error) {
	p, err := s.repo.Delete(ctx, id)
	if err != nil {
		return nil, s.storeError(OperationDelete, formatID(id), "", err)
	}

	s.record(OperationDelete, metrics.ResultSuccess)
	s.refreshLiveRecords(ctx)
	s.logger.Info("人物レコードを削除しました",
		slog.String("operation", OperationDelete),
		slog.Int64("person_id", p.ID),
	)

	return p, nil
}

// Count は生存レコード数を返す。
func (s *Service) Count(ctx context.Context) (int, error) {
	count, err := s.repo.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("人物数の取得に失敗しました: %w", err)
	}
	return count, nil
}

// storeError はストアのエラーを分類済みのエラーに変換し、メトリクスに記録する。
// 分類できないエラーはラップして返し、HTTP層で内部エラーとして扱われる。
func (s *Service) storeError(operation, id, identityDocument string, err error) error {
	switch {
	case errors.Is(err, repository.ErrDuplicateIdentityDocument):
		s.record(operation, metrics.ResultDuplicate)
		s.logger.Info("身分証番号が重複しています",
			slog.String("operation", operation),
			slog.String("identity_document", identityDocument),
		)
		return model.NewDuplicateIdentityDocumentError(identityDocument)
	case errors.Is(err, repository.ErrNotFound):
		s.record(operation, metrics.ResultNotFound)
		return model.NewPersonNotFoundError(id)
	default:
		s.record(operation, metrics.ResultError)
		return fmt.Errorf("%s に失敗しました: %w", operation, err)
	}
}

func (s *Service) record(operation, result string) {
	if s.metrics != nil {
		s.metrics.RecordOperation(operation, result)
	}
}

// refreshLiveRecords は生存レコード数のゲージを更新する。
// 取得に失敗しても操作自体は成功扱いとする。
func (s *Service) refreshLiveRecords(ctx context.Context) {
	if s.metrics == nil {
		return
	}
	count, err := s.repo.Count(ctx)
	if err != nil {
		s.logger.Warn("failed to count people for metrics", slog.String("error", err.Error()))
		return
	}
	s.metrics.SetLiveRecords(count)
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
