package service

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/aquaflow/internal/changefeed"
	"github.com/smallbiznis/aquaflow/internal/clock"
	"github.com/smallbiznis/aquaflow/internal/config"
	"github.com/smallbiznis/aquaflow/internal/debt/domain"
	obsmetrics "github.com/smallbiznis/aquaflow/internal/observability/metrics"
	"github.com/smallbiznis/aquaflow/internal/providers/pdf"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	outcomeFull    = "settled"
	outcomePartial = "partial"
	outcomeExcess  = "excess"
)

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	Clock   clock.Clock
	Repo    domain.Repository
	Policy  *config.DebtPolicyHolder
	PDF     pdf.Provider
	Metrics *obsmetrics.Metrics `optional:"true"`
	Feed    *changefeed.Hub     `optional:"true"`
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	clock   clock.Clock
	repo    domain.Repository
	policy  *config.DebtPolicyHolder
	pdf     pdf.Provider
	metrics *obsmetrics.Metrics
	feed    *changefeed.Hub
}

func New(p Params) domain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("debt.service"),
		clock:   p.Clock,
		repo:    p.Repo,
		policy:  p.Policy,
		pdf:     p.PDF,
		metrics: p.Metrics,
		feed:    p.Feed,
	}
}

func (s *Service) ProcessPayment(ctx context.Context, req domain.PaymentRequest) (domain.PaymentResult, error) {
	if req.CustomerID == 0 {
		return domain.PaymentResult{}, domain.ErrInvalidID
	}
	if req.Amount <= 0 {
		return domain.PaymentResult{}, domain.ErrInvalidAmount
	}

	result := domain.PaymentResult{CustomerID: req.CustomerID, AmountPaid: req.Amount}
	now := s.clock.Now()

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		items, err := s.repo.ListUnpaidByCustomer(ctx, tx, req.CustomerID)
		if err != nil {
			return err
		}
		open := make([]domain.Debt, 0, len(items))
		for _, item := range items {
			if item != nil {
				open = append(open, *item)
			}
		}

		touched, allocations, unapplied := domain.Allocate(open, req.Amount, now)
		for i := range touched {
			debt := touched[i]
			if err := debt.Validate(); err != nil {
				return fmt.Errorf("debt %s: %w", debt.ID, err)
			}
			ok, err := s.repo.SaveBalance(ctx, tx, &debt, allocations[i].Previous)
			if err != nil {
				return err
			}
			if !ok {
				return domain.ErrBalanceChanged
			}
			if debt.IsPaid && debt.FillingID != nil {
				if err := s.repo.ClearFillingDebtFlag(ctx, tx, *debt.FillingID); err != nil {
					return err
				}
			}
		}

		outstanding, err := s.repo.SumOutstanding(ctx, tx, req.CustomerID)
		if err != nil {
			return err
		}

		result.Allocations = allocations
		result.Unapplied = unapplied
		result.Applied = req.Amount - unapplied
		result.Outstanding = outstanding
		return nil
	})
	if err != nil {
		return domain.PaymentResult{}, err
	}
	if result.Allocations == nil {
		result.Allocations = []domain.Allocation{}
	}

	outcome := outcomePartial
	switch {
	case result.Unapplied > 0:
		outcome = outcomeExcess
	case result.Outstanding == 0:
		outcome = outcomeFull
	}
	s.metrics.RecordPayment(ctx, outcome, result.Applied)

	s.log.Info("payment processed",
		zap.String("customer_id", req.CustomerID.String()),
		zap.Int64("amount", req.Amount),
		zap.Int64("applied", result.Applied),
		zap.Int64("unapplied", result.Unapplied),
		zap.Int("debts_touched", len(result.Allocations)),
	)
	if len(result.Allocations) > 0 {
		s.feed.Touch(changefeed.OpUpdate, changefeed.TableDebts, changefeed.TableFillings)
	}
	return result, nil
}

func (s *Service) ListOutstanding(ctx context.Context) ([]domain.CustomerOutstanding, error) {
	rows, err := s.repo.ListUnpaidWithCustomer(ctx, s.db)
	if err != nil {
		return nil, err
	}

	summaries := domain.AggregateOutstanding(rows)
	policy := s.policy.Get()
	now := s.clock.Now()
	for i := range summaries {
		days := ageInDays(summaries[i].OldestDate, now)
		summaries[i].AgeDays = days
		summaries[i].AgingBucket = policy.BucketFor(days)
		summaries[i].RiskLevel = policy.RiskFor(summaries[i].TotalDebt, days)
	}
	return summaries, nil
}

func (s *Service) CustomerDebts(ctx context.Context, customerID snowflake.ID, includePaid bool) ([]domain.Debt, error) {
	if customerID == 0 {
		return nil, domain.ErrInvalidID
	}
	items, err := s.repo.ListByCustomer(ctx, s.db, customerID, includePaid)
	if err != nil {
		return nil, err
	}
	debts := make([]domain.Debt, 0, len(items))
	for _, item := range items {
		if item != nil {
			debts = append(debts, *item)
		}
	}
	return debts, nil
}

func (s *Service) Outstanding(ctx context.Context, customerID snowflake.ID) (int64, error) {
	if customerID == 0 {
		return 0, domain.ErrInvalidID
	}
	return s.repo.SumOutstanding(ctx, s.db, customerID)
}

func (s *Service) Statement(ctx context.Context, customerID snowflake.ID) (io.Reader, error) {
	if customerID == 0 {
		return nil, domain.ErrInvalidID
	}
	customer, err := s.repo.FindCustomer(ctx, s.db, customerID)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, domain.ErrCustomerNotFound
	}

	debts, err := s.CustomerDebts(ctx, customerID, false)
	if err != nil {
		return nil, err
	}

	data := pdf.StatementData{
		CustomerName: customer.Name,
		TankNo:       customer.TankNo,
		Phone:        customer.Phone,
		AreaName:     customer.AreaName,
		IssuedAt:     s.clock.Now(),
		Lines:        make([]pdf.StatementLine, 0, len(debts)),
	}
	for _, debt := range debts {
		data.Lines = append(data.Lines, pdf.StatementLine{
			Date:      debt.CreatedAt,
			Notes:     debt.Notes,
			Amount:    debt.Amount,
			Remaining: debt.RemainingAmount,
		})
		data.Total += debt.RemainingAmount
	}

	return s.pdf.GenerateDebtStatement(ctx, data)
}

func ageInDays(oldest, now time.Time) int {
	if oldest.IsZero() || now.Before(oldest) {
		return 0
	}
	return int(now.Sub(oldest).Hours() / 24)
}
