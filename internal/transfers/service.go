package transfers

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/rahadianwp/gudangku-backend/internal/audit"
	"github.com/rahadianwp/gudangku-backend/internal/catalog"
	"github.com/rahadianwp/gudangku-backend/internal/sequence"
	"github.com/rahadianwp/gudangku-backend/internal/stock"
	"github.com/rahadianwp/gudangku-backend/pkg/db"
	"github.com/rahadianwp/gudangku-backend/pkg/db/models"
	"github.com/rahadianwp/gudangku-backend/pkg/enums"
	pkgerrors "github.com/rahadianwp/gudangku-backend/pkg/errors"
	"github.com/rahadianwp/gudangku-backend/pkg/logger"
	"github.com/rahadianwp/gudangku-backend/pkg/metrics"
)

const documentLabel = "transfer"

// ItemInput is one product line of a transfer batch.
type ItemInput struct {
	ProductID uuid.UUID
	Quantity  int
}

// PostInput describes an inter-warehouse transfer batch. All lines share one
// transfer number; TransferNumber is optional and sequenced when empty.
type PostInput struct {
	TransferNumber  string
	Date            time.Time
	FromWarehouseID uuid.UUID
	ToWarehouseID   uuid.UUID
	UserID          uuid.UUID
	Notes           *string
	Items           []ItemInput
}

// Service moves stock between warehouses. Transfers apply eagerly: every line
// is written with status completed and both ledger legs land at creation
// time. The pending/approve/reject workflow is represented in the status enum
// but not wired to any operation here.
type Service interface {
	Post(ctx context.Context, input PostInput) ([]models.StockTransfer, error)
	GetByNumber(ctx context.Context, number string) ([]models.StockTransfer, error)
	List(ctx context.Context, warehouseID uuid.UUID, limit int) ([]models.StockTransfer, error)
}

type service struct {
	client    *db.Client
	repo      Repository
	catalog   catalog.Service
	ledger    stock.Ledger
	sequencer sequence.Service
	auditor   audit.Recorder
	metrics   *metrics.PostingMetrics
	logg      *logger.Logger
	retries   int
}

// NewService wires the transfer processor.
func NewService(
	client *db.Client,
	repo Repository,
	catalogSvc catalog.Service,
	ledger stock.Ledger,
	sequencer sequence.Service,
	auditor audit.Recorder,
	postingMetrics *metrics.PostingMetrics,
	logg *logger.Logger,
	retries int,
) (Service, error) {
	if client == nil {
		return nil, fmt.Errorf("db client required")
	}
	if repo == nil {
		return nil, fmt.Errorf("transfer repository required")
	}
	if catalogSvc == nil {
		return nil, fmt.Errorf("catalog service required")
	}
	if ledger == nil {
		return nil, fmt.Errorf("stock ledger required")
	}
	if sequencer == nil {
		return nil, fmt.Errorf("sequencer required")
	}
	if auditor == nil {
		return nil, fmt.Errorf("audit recorder required")
	}
	if retries <= 0 {
		retries = 3
	}
	return &service{
		client:    client,
		repo:      repo,
		catalog:   catalogSvc,
		ledger:    ledger,
		sequencer: sequencer,
		auditor:   auditor,
		metrics:   postingMetrics,
		logg:      logg,
		retries:   retries,
	}, nil
}

func validatePostInput(input PostInput) error {
	var verr error
	if input.FromWarehouseID == uuid.Nil {
		verr = multierr.Append(verr, fmt.Errorf("from_warehouse_id: required"))
	}
	if input.ToWarehouseID == uuid.Nil {
		verr = multierr.Append(verr, fmt.Errorf("to_warehouse_id: required"))
	}
	if input.UserID == uuid.Nil {
		verr = multierr.Append(verr, fmt.Errorf("user_id: required"))
	}
	if len(input.Items) == 0 {
		verr = multierr.Append(verr, fmt.Errorf("items: at least one item required"))
	}
	for i, item := range input.Items {
		if item.ProductID == uuid.Nil {
			verr = multierr.Append(verr, fmt.Errorf("items[%d].product_id: required", i))
		}
		if item.Quantity <= 0 {
			verr = multierr.Append(verr, fmt.Errorf("items[%d].quantity: must be positive", i))
		}
	}
	if verr != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, verr, "invalid transfer input")
	}
	if input.FromWarehouseID != uuid.Nil && input.FromWarehouseID == input.ToWarehouseID {
		return pkgerrors.New(pkgerrors.CodeInvalidTransferRoute, "source and destination warehouses must differ").
			WithDetails(map[string]string{
				"from_warehouse_id": input.FromWarehouseID.String(),
				"to_warehouse_id":   input.ToWarehouseID.String(),
			})
	}
	return nil
}

// Post validates and commits a transfer batch in one transaction: per line a
// source decrement then a destination increment. Any insufficient line aborts
// every line; no partial transfer survives.
func (s *service) Post(ctx context.Context, input PostInput) ([]models.StockTransfer, error) {
	start := time.Now()
	rows, err := s.post(ctx, input)
	s.metrics.ObserveDuration(documentLabel, time.Since(start))
	if err != nil {
		s.metrics.IncFailure(documentLabel)
		return nil, err
	}
	s.metrics.IncSuccess(documentLabel)
	return rows, nil
}

func (s *service) post(ctx context.Context, input PostInput) ([]models.StockTransfer, error) {
	if err := validatePostInput(input); err != nil {
		return nil, err
	}
	if input.Date.IsZero() {
		input.Date = time.Now()
	}

	if _, err := s.catalog.RequireActiveWarehouse(ctx, input.FromWarehouseID); err != nil {
		return nil, err
	}
	if _, err := s.catalog.RequireActiveWarehouse(ctx, input.ToWarehouseID); err != nil {
		return nil, err
	}
	products, err := s.resolveProducts(ctx, input.Items)
	if err != nil {
		return nil, err
	}

	generated := input.TransferNumber == ""
	var posted []models.StockTransfer

	attempt := func(ctx context.Context) error {
		rows, aerr := s.postOnce(ctx, input, products, generated)
		if aerr != nil {
			if generated && pkgerrors.HasCode(aerr, pkgerrors.CodeDuplicateDocument) {
				return retry.RetryableError(aerr)
			}
			return aerr
		}
		posted = rows
		return nil
	}

	backoff := retry.WithMaxRetries(uint64(s.retries), retry.NewConstant(5*time.Millisecond))
	if err := retry.Do(ctx, backoff, attempt); err != nil {
		return nil, err
	}

	if s.logg != nil && len(posted) > 0 {
		lctx := s.logg.WithDocumentNumber(ctx, posted[0].TransferNumber)
		lctx = s.logg.WithWarehouseID(lctx, input.FromWarehouseID.String())
		s.logg.Info(lctx, "transfer posted")
	}
	return posted, nil
}

func (s *service) postOnce(ctx context.Context, input PostInput, products map[uuid.UUID]*models.Product, generated bool) ([]models.StockTransfer, error) {
	var posted []models.StockTransfer

	err := s.client.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		number := input.TransferNumber
		if generated {
			next, nerr := s.sequencer.WithTx(tx).Next(ctx, sequence.KindTransfer, input.Date)
			if nerr != nil {
				return nerr
			}
			number = next
		}

		// Lines of one batch share the number; a second batch must not reuse
		// it. The composite unique index only guards per-product collisions,
		// so batch-level reuse is rejected here.
		exists, eerr := repo.NumberExists(ctx, number)
		if eerr != nil {
			return eerr
		}
		if exists {
			return sequence.NewDuplicateNumber(number)
		}

		rows := make([]models.StockTransfer, 0, len(input.Items))
		for _, item := range input.Items {
			rows = append(rows, models.StockTransfer{
				TransferNumber:  number,
				TransferDate:    input.Date,
				FromWarehouseID: input.FromWarehouseID,
				ToWarehouseID:   input.ToWarehouseID,
				ProductID:       item.ProductID,
				Quantity:        item.Quantity,
				UserID:          input.UserID,
				Status:          enums.TransferStatusCompleted,
				Notes:           input.Notes,
			})
		}
		if cerr := repo.CreateBatch(ctx, rows); cerr != nil {
			if db.IsUniqueViolation(cerr, "") {
				return sequence.NewDuplicateNumber(number)
			}
			return cerr
		}

		ledger := s.ledger.WithTx(tx)
		for _, item := range input.Items {
			out := stock.NewKey(input.FromWarehouseID, item.ProductID)
			if derr := ledger.ApplyDelta(ctx, out, -item.Quantity); derr != nil {
				return enrichInsufficient(derr, products)
			}
			in := stock.NewKey(input.ToWarehouseID, item.ProductID)
			if derr := ledger.ApplyDelta(ctx, in, item.Quantity); derr != nil {
				return derr
			}
		}

		auditor := s.auditor.WithTx(tx)
		for i := range rows {
			if aerr := auditor.Record(ctx, audit.Entry{
				UserID:     &input.UserID,
				Action:     enums.AuditActionCreate,
				EntityKind: "stock_transfer",
				EntityID:   rows[i].ID.String(),
				After:      rows[i],
			}); aerr != nil {
				return aerr
			}
		}

		posted = rows
		return nil
	})
	if err != nil {
		return nil, err
	}
	return posted, nil
}

func (s *service) resolveProducts(ctx context.Context, items []ItemInput) (map[uuid.UUID]*models.Product, error) {
	products := make(map[uuid.UUID]*models.Product, len(items))
	for _, item := range items {
		if _, seen := products[item.ProductID]; seen {
			continue
		}
		product, err := s.catalog.GetProduct(ctx, item.ProductID)
		if err != nil {
			return nil, err
		}
		products[item.ProductID] = product
	}
	return products, nil
}

func enrichInsufficient(err error, products map[uuid.UUID]*models.Product) error {
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeInsufficientStock {
		return err
	}
	details, ok := typed.Details().(stock.InsufficientStockDetails)
	if !ok {
		return err
	}
	if product, found := products[details.ProductID]; found {
		details.ProductName = product.Name
	}
	return stock.NewInsufficientStock(details)
}

func (s *service) GetByNumber(ctx context.Context, number string) ([]models.StockTransfer, error) {
	if number == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "transfer number is required")
	}
	rows, err := s.repo.FindByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "transfer not found").
			WithDetails(catalog.NotFoundDetails{Entity: "stock_transfer", ID: number})
	}
	return rows, nil
}

func (s *service) List(ctx context.Context, warehouseID uuid.UUID, limit int) ([]models.StockTransfer, error) {
	return s.repo.List(ctx, warehouseID, limit)
}
