package sequence

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/rahadianwp/gudangku-backend/pkg/config"
	pkgerrors "github.com/rahadianwp/gudangku-backend/pkg/errors"
)

// Service generates human-readable document numbers of the form
// PREFIX-YYYYMMDD-NNN. Numbers are computed, not reserved: two concurrent
// postings can compute the same next number, and the unique constraint on the
// document table is the sole guard. Callers retry with a fresh number on a
// duplicate insert.
type Service interface {
	WithTx(tx *gorm.DB) Service
	Next(ctx context.Context, kind Kind, day time.Time) (string, error)
}

type service struct {
	repo Repository
	cfg  config.DocumentConfig
}

// NewService wires a sequencer with the provided repository and prefixes.
func NewService(repo Repository, cfg config.DocumentConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("sequence repository required")
	}
	return &service{repo: repo, cfg: cfg}, nil
}

func (s *service) WithTx(tx *gorm.DB) Service {
	return &service{repo: s.repo.WithTx(tx), cfg: s.cfg}
}

func (s *service) prefixFor(kind Kind) (string, error) {
	switch kind {
	case KindTransaction:
		return s.cfg.TransactionPrefix, nil
	case KindTransfer:
		return s.cfg.TransferPrefix, nil
	case KindOpname:
		return s.cfg.OpnamePrefix, nil
	default:
		return "", fmt.Errorf("unknown document kind %q", kind)
	}
}

// Next computes the next number for kind on the given calendar day: latest
// same-day number plus one, starting at 1. The zero-padded suffix grows past
// 999 naturally.
func (s *service) Next(ctx context.Context, kind Kind, day time.Time) (string, error) {
	prefix, err := s.prefixFor(kind)
	if err != nil {
		return "", err
	}

	base := fmt.Sprintf("%s-%s-", prefix, day.Format("20060102"))
	latest, err := s.repo.LatestNumber(ctx, kind, base)
	if err != nil {
		return "", err
	}

	next := 1
	if latest != "" {
		idx := strings.LastIndex(latest, "-")
		if idx < 0 || idx == len(latest)-1 {
			return "", pkgerrors.New(pkgerrors.CodeInternal, "unparsable document number").
				WithDetails(map[string]string{"number": latest})
		}
		parsed, perr := strconv.Atoi(latest[idx+1:])
		if perr != nil {
			return "", pkgerrors.New(pkgerrors.CodeInternal, "unparsable document number").
				WithDetails(map[string]string{"number": latest})
		}
		next = parsed + 1
	}

	return fmt.Sprintf("%s%03d", base, next), nil
}
