package movements

import (
	"context"
	stdErrors "errors"
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

const documentLabel = "transaction"

// ItemInput is one product line of a direct movement.
type ItemInput struct {
	ProductID uuid.UUID
	Quantity  int
}

// PostInput describes a direct inbound/outbound posting. TrxNumber is
// optional; when empty the sequencer assigns one and duplicate collisions are
// retried transparently.
type PostInput struct {
	Type        enums.TransactionType
	WarehouseID uuid.UUID
	UserID      uuid.UUID
	Date        time.Time
	TrxNumber   string
	Items       []ItemInput
}

// Service posts direct movements against the stock ledger.
type Service interface {
	Post(ctx context.Context, input PostInput) (*models.Transaction, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Transaction, error)
	List(ctx context.Context, warehouseID uuid.UUID, limit int) ([]models.Transaction, error)
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

// NewService wires the direct movement processor.
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
		return nil, fmt.Errorf("movement repository required")
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
	if !input.Type.IsValid() {
		verr = multierr.Append(verr, fmt.Errorf("type: must be inbound or outbound"))
	}
	if input.WarehouseID == uuid.Nil {
		verr = multierr.Append(verr, fmt.Errorf("warehouse_id: required"))
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
		return pkgerrors.Wrap(pkgerrors.CodeValidation, verr, "invalid movement input")
	}
	return nil
}

// Post validates, numbers and commits a direct movement in one transaction.
// The header, all detail lines and every ledger delta either land together or
// not at all; the first insufficient line aborts the batch with its product
// named in the error.
func (s *service) Post(ctx context.Context, input PostInput) (*models.Transaction, error) {
	start := time.Now()
	trx, err := s.post(ctx, input)
	s.metrics.ObserveDuration(documentLabel, time.Since(start))
	if err != nil {
		s.metrics.IncFailure(documentLabel)
		return nil, err
	}
	s.metrics.IncSuccess(documentLabel)
	return trx, nil
}

func (s *service) post(ctx context.Context, input PostInput) (*models.Transaction, error) {
	if err := validatePostInput(input); err != nil {
		return nil, err
	}
	if input.Date.IsZero() {
		input.Date = time.Now()
	}

	if _, err := s.catalog.RequireActiveWarehouse(ctx, input.WarehouseID); err != nil {
		return nil, err
	}
	products, err := s.resolveProducts(ctx, input.Items)
	if err != nil {
		return nil, err
	}

	generated := input.TrxNumber == ""
	var posted *models.Transaction

	attempt := func(ctx context.Context) error {
		trx, aerr := s.postOnce(ctx, input, products, generated)
		if aerr != nil {
			if generated && pkgerrors.HasCode(aerr, pkgerrors.CodeDuplicateDocument) {
				return retry.RetryableError(aerr)
			}
			return aerr
		}
		posted = trx
		return nil
	}

	backoff := retry.WithMaxRetries(uint64(s.retries), retry.NewConstant(5*time.Millisecond))
	if err := retry.Do(ctx, backoff, attempt); err != nil {
		return nil, err
	}

	if s.logg != nil {
		lctx := s.logg.WithDocumentNumber(ctx, posted.TrxNumber)
		lctx = s.logg.WithWarehouseID(lctx, input.WarehouseID.String())
		s.logg.Info(lctx, "transaction posted")
	}
	return posted, nil
}

func (s *service) postOnce(ctx context.Context, input PostInput, products map[uuid.UUID]*models.Product, generated bool) (*models.Transaction, error) {
	var posted *models.Transaction

	err := s.client.WithTx(ctx, func(tx *gorm.DB) error {
		number := input.TrxNumber
		if generated {
			next, nerr := s.sequencer.WithTx(tx).Next(ctx, sequence.KindTransaction, input.Date)
			if nerr != nil {
				return nerr
			}
			number = next
		}

		trx := &models.Transaction{
			TrxNumber:   number,
			Type:        input.Type,
			WarehouseID: input.WarehouseID,
			UserID:      input.UserID,
			Date:        input.Date,
			Status:      models.TransactionStatusCompleted,
		}
		for _, item := range input.Items {
			trx.Details = append(trx.Details, models.TransactionDetail{
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
			})
		}

		if cerr := s.repo.WithTx(tx).Create(ctx, trx); cerr != nil {
			if db.IsUniqueViolation(cerr, "") {
				return sequence.NewDuplicateNumber(number)
			}
			return cerr
		}

		sign := input.Type.Sign()
		ledger := s.ledger.WithTx(tx)
		for _, item := range input.Items {
			key := stock.NewKey(input.WarehouseID, item.ProductID)
			if derr := ledger.ApplyDelta(ctx, key, sign*item.Quantity); derr != nil {
				return enrichInsufficient(derr, products)
			}
		}

		if aerr := s.auditor.WithTx(tx).Record(ctx, audit.Entry{
			UserID:     &input.UserID,
			Action:     enums.AuditActionCreate,
			EntityKind: "transaction",
			EntityID:   trx.ID.String(),
			After:      trx,
		}); aerr != nil {
			return aerr
		}

		posted = trx
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

// enrichInsufficient fills the product name into an insufficient-stock error
// so the caller can render a precise message.
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

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Transaction, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "transaction id is required")
	}
	trx, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if stdErrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "transaction not found").
				WithDetails(catalog.NotFoundDetails{Entity: "transaction", ID: id.String()})
		}
		return nil, err
	}
	return trx, nil
}

func (s *service) List(ctx context.Context, warehouseID uuid.UUID, limit int) ([]models.Transaction, error) {
	return s.repo.List(ctx, warehouseID, limit)
}
