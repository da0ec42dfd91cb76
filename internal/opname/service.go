package opname

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

const documentLabel = "opname"

// ItemInput is one counted product line.
type ItemInput struct {
	ProductID uuid.UUID
	ActualQty int
	Notes     *string
}

// PostInput describes an opname posting. OpnameNumber is optional and
// sequenced when empty.
type PostInput struct {
	OpnameNumber string
	Date         time.Time
	WarehouseID  uuid.UUID
	UserID       uuid.UUID
	Notes        *string
	Items        []ItemInput
}

// Service reconciles physical counts against the ledger. The system quantity
// is re-read at posting time, not taken from the draft, which narrows but
// does not eliminate the window between count and commit: a movement landing
// between the re-read and the commit is overwritten without warning. That is
// the accepted contract of an absolute overwrite.
type Service interface {
	CreateDraft(ctx context.Context, warehouseID uuid.UUID) ([]DraftItem, error)
	Post(ctx context.Context, input PostInput) (*models.StockOpname, error)
	Get(ctx context.Context, id uuid.UUID) (*models.StockOpname, error)
	List(ctx context.Context, warehouseID uuid.UUID, limit int) ([]models.StockOpname, error)
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

// NewService wires the reconciliation processor.
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
		return nil, fmt.Errorf("opname repository required")
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

// CreateDraft prefills a count sheet for the warehouse. Read-only; no ledger
// effect.
func (s *service) CreateDraft(ctx context.Context, warehouseID uuid.UUID) ([]DraftItem, error) {
	if _, err := s.catalog.RequireActiveWarehouse(ctx, warehouseID); err != nil {
		return nil, err
	}
	return s.repo.DraftItems(ctx, warehouseID)
}

func validatePostInput(input PostInput) error {
	var verr error
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
		if item.ActualQty < 0 {
			verr = multierr.Append(verr, fmt.Errorf("items[%d].actual_qty: must not be negative", i))
		}
	}
	if verr != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, verr, "invalid opname input")
	}
	return nil
}

// Post commits a reconciliation in one transaction: header, then per item the
// current ledger quantity is re-read as system_qty, the detail row records
// system, actual and their difference, and the ledger is overwritten to the
// counted value.
func (s *service) Post(ctx context.Context, input PostInput) (*models.StockOpname, error) {
	start := time.Now()
	header, err := s.post(ctx, input)
	s.metrics.ObserveDuration(documentLabel, time.Since(start))
	if err != nil {
		s.metrics.IncFailure(documentLabel)
		return nil, err
	}
	s.metrics.IncSuccess(documentLabel)
	return header, nil
}

func (s *service) post(ctx context.Context, input PostInput) (*models.StockOpname, error) {
	if err := validatePostInput(input); err != nil {
		return nil, err
	}
	if input.Date.IsZero() {
		input.Date = time.Now()
	}

	if _, err := s.catalog.RequireActiveWarehouse(ctx, input.WarehouseID); err != nil {
		return nil, err
	}
	for _, item := range input.Items {
		if _, err := s.catalog.GetProduct(ctx, item.ProductID); err != nil {
			return nil, err
		}
	}

	generated := input.OpnameNumber == ""
	var posted *models.StockOpname

	attempt := func(ctx context.Context) error {
		header, aerr := s.postOnce(ctx, input, generated)
		if aerr != nil {
			if generated && pkgerrors.HasCode(aerr, pkgerrors.CodeDuplicateDocument) {
				return retry.RetryableError(aerr)
			}
			return aerr
		}
		posted = header
		return nil
	}

	backoff := retry.WithMaxRetries(uint64(s.retries), retry.NewConstant(5*time.Millisecond))
	if err := retry.Do(ctx, backoff, attempt); err != nil {
		return nil, err
	}

	if s.logg != nil {
		lctx := s.logg.WithDocumentNumber(ctx, posted.OpnameNumber)
		lctx = s.logg.WithWarehouseID(lctx, input.WarehouseID.String())
		s.logg.Info(lctx, "opname posted")
	}
	return posted, nil
}

func (s *service) postOnce(ctx context.Context, input PostInput, generated bool) (*models.StockOpname, error) {
	var posted *models.StockOpname

	err := s.client.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		number := input.OpnameNumber
		if generated {
			next, nerr := s.sequencer.WithTx(tx).Next(ctx, sequence.KindOpname, input.Date)
			if nerr != nil {
				return nerr
			}
			number = next
		}

		header := &models.StockOpname{
			OpnameNumber: number,
			OpnameDate:   input.Date,
			WarehouseID:  input.WarehouseID,
			UserID:       input.UserID,
			Notes:        input.Notes,
		}
		if cerr := repo.CreateHeader(ctx, header); cerr != nil {
			if db.IsUniqueViolation(cerr, "") {
				return sequence.NewDuplicateNumber(number)
			}
			return cerr
		}

		ledger := s.ledger.WithTx(tx)
		auditor := s.auditor.WithTx(tx)
		for _, item := range input.Items {
			key := stock.NewKey(input.WarehouseID, item.ProductID)

			systemQty, gerr := ledger.GetQuantity(ctx, key)
			if gerr != nil {
				return gerr
			}

			detail := &models.StockOpnameDetail{
				OpnameID:   header.ID,
				ProductID:  item.ProductID,
				SystemQty:  systemQty,
				ActualQty:  item.ActualQty,
				Difference: item.ActualQty - systemQty,
				Notes:      item.Notes,
			}
			if cerr := repo.CreateDetail(ctx, detail); cerr != nil {
				return cerr
			}
			if serr := ledger.SetQuantity(ctx, key, item.ActualQty); serr != nil {
				return serr
			}
			if aerr := auditor.Record(ctx, audit.Entry{
				UserID:     &input.UserID,
				Action:     enums.AuditActionUpdate,
				EntityKind: "stock_record",
				EntityID:   fmt.Sprintf("%s/%s", input.WarehouseID, item.ProductID),
				Before:     map[string]int{"quantity": systemQty},
				After:      map[string]int{"quantity": item.ActualQty},
			}); aerr != nil {
				return aerr
			}
			header.Details = append(header.Details, *detail)
		}

		if aerr := auditor.Record(ctx, audit.Entry{
			UserID:     &input.UserID,
			Action:     enums.AuditActionCreate,
			EntityKind: "stock_opname",
			EntityID:   header.ID.String(),
			After:      header,
		}); aerr != nil {
			return aerr
		}

		posted = header
		return nil
	})
	if err != nil {
		return nil, err
	}
	return posted, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.StockOpname, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "opname id is required")
	}
	header, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if stdErrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "opname not found").
				WithDetails(catalog.NotFoundDetails{Entity: "stock_opname", ID: id.String()})
		}
		return nil, err
	}
	return header, nil
}

func (s *service) List(ctx context.Context, warehouseID uuid.UUID, limit int) ([]models.StockOpname, error) {
	return s.repo.List(ctx, warehouseID, limit)
}
