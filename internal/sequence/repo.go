package sequence

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// Kind selects which document table a number is generated for.
type Kind string

const (
	KindTransaction Kind = "transaction"
	KindTransfer    Kind = "transfer"
	KindOpname      Kind = "opname"
)

var sources = map[Kind]struct {
	table  string
	column string
}{
	KindTransaction: {table: "transactions", column: "trx_number"},
	KindTransfer:    {table: "stock_transfers", column: "transfer_number"},
	KindOpname:      {table: "stock_opnames", column: "opname_number"},
}

// IsValid reports whether the kind maps to a document table.
func (k Kind) IsValid() bool {
	_, ok := sources[k]
	return ok
}

// Repository reads the most recently created document number per kind.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	LatestNumber(ctx context.Context, kind Kind, prefix string) (string, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a sequence repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// LatestNumber returns the number of the most recently created document whose
// number starts with prefix, or "" when none exists yet.
func (r *repository) LatestNumber(ctx context.Context, kind Kind, prefix string) (string, error) {
	src, ok := sources[kind]
	if !ok {
		return "", fmt.Errorf("unknown document kind %q", kind)
	}

	var numbers []string
	res := r.db.WithContext(ctx).
		Table(src.table).
		Where(src.column+" LIKE ?", prefix+"%").
		Order("created_at DESC").
		Limit(1).
		Pluck(src.column, &numbers)
	if res.Error != nil {
		return "", res.Error
	}
	if len(numbers) == 0 {
		return "", nil
	}
	return numbers[0], nil
}
