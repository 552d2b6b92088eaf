package registration

import (
	"context"

	"inova/pkg/apierrors"
)

// Store-level duplicate failures. The unique constraints are the final
// arbiter for racing submissions, so these carry the same user-facing
// messages as the service pre-checks.
var (
	ErrDuplicateEmail = apierrors.New(apierrors.CodeDuplicateEntry, "this email is already registered")
	ErrDuplicateCPF   = apierrors.New(apierrors.CodeDuplicateEntry, "this CPF is already registered")
)

// Store is the single-table query layer behind the registration service.
//
// Read methods absorb backend unavailability: they return empty or false
// results instead of errors so a broken database degrades the admin view
// rather than taking the API down. Only Insert and DeleteByID report
// errors, because the caller must distinguish duplicates and missing rows.
type Store interface {
	Insert(ctx context.Context, rec *Record) (int64, error)
	ExistsByEmail(ctx context.Context, email string) bool
	ExistsByCPF(ctx context.Context, cpf string) bool
	FindByEmail(ctx context.Context, email string) *Registration
	List(ctx context.Context, page, pageSize int, search string) *ListResult
	ListAll(ctx context.Context) []*Registration
	Count(ctx context.Context) int64
	CountByField(ctx context.Context, field string, limit int) []FieldCount
	DeleteByID(ctx context.Context, id int64) (bool, error)
	Healthy(ctx context.Context) bool
	Close() error
}

func emptyListResult(page, pageSize int) *ListResult {
	return &ListResult{
		Items: []*Registration{},
		Pagination: Pagination{
			Page:     page,
			PageSize: pageSize,
		},
	}
}

func buildPagination(page, pageSize int, total int64) Pagination {
	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	return Pagination{
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
		HasPrev:    page > 1,
	}
}
