package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ndewijer/Society-Share-Ledger-Backend/internal/apperrors"
	"github.com/ndewijer/Society-Share-Ledger-Backend/internal/ledger"
	"github.com/ndewijer/Society-Share-Ledger-Backend/internal/model"
	"github.com/ndewijer/Society-Share-Ledger-Backend/internal/period"
	"github.com/ndewijer/Society-Share-Ledger-Backend/internal/repository"
)

// activityWriter records activity inside a SQL transaction and keeps the
// member's stored share total in step with the activity log.
type activityWriter struct {
	activities *repository.ActivityRepository
	members    *repository.MemberRepository
}

func newActivityWriter(tx *sql.Tx, activityRepo *repository.ActivityRepository, memberRepo *repository.MemberRepository) activityWriter {
	return activityWriter{
		activities: activityRepo.WithTx(tx),
		members:    memberRepo.WithTx(tx),
	}
}

// investment describes a new investment before it is priced.
type investment struct {
	Amount        float64
	Fine          float64
	ManualReceipt string
	CustomReceipt string
}

// recordInvestment writes an investment for memberID in period p and returns
// the stored event with the member's new share total. When topUp is set an
// existing investment in p is increased instead of rejected; it keeps its
// receipt and is repriced at price.
func (w activityWriter) recordInvestment(
	ctx context.Context,
	memberID string,
	p period.Period,
	price float64,
	in investment,
	topUp bool,
	now time.Time,
) (model.InvestmentEvent, float64, error) {
	acts, err := w.activities.GetActivities(ctx, memberID)
	if err != nil {
		return model.InvestmentEvent{}, 0, err
	}
	act, _ := acts.At(p)

	var inv model.InvestmentEvent
	switch {
	case act.Investment != nil && !topUp:
		return model.InvestmentEvent{}, 0, fmt.Errorf("%w: %s", apperrors.ErrDuplicateInvestment, p)

	case act.Investment != nil:
		inv = *act.Investment
		inv.Amount += in.Amount
		inv.SharePrice = price
		inv.Shares = ledger.SharesFor(inv.Amount, price)
		if err := w.activities.UpdateInvestmentAmounts(ctx, &inv); err != nil {
			return model.InvestmentEvent{}, 0, err
		}

	default:
		seq, err := w.activities.NextReceiptSequence(ctx, p)
		if err != nil {
			return model.InvestmentEvent{}, 0, err
		}
		inv = model.InvestmentEvent{
			ID:            uuid.New().String(),
			Amount:        in.Amount,
			Fine:          in.Fine,
			SharePrice:    price,
			Shares:        ledger.SharesFor(in.Amount, price),
			SystemReceipt: ledger.SystemReceipt(p, seq),
			CustomReceipt: in.CustomReceipt,
			ManualReceipt: in.ManualReceipt,
			CreatedAt:     now,
		}
		if err := w.activities.InsertInvestment(ctx, memberID, p, &inv); err != nil {
			return model.InvestmentEvent{}, 0, err
		}
	}

	act.Investment = &inv
	acts.Set(p, act)

	total, err := w.updateTotal(ctx, memberID, acts)
	if err != nil {
		return model.InvestmentEvent{}, 0, err
	}
	return inv, total, nil
}

// recordWithdrawal checks a withdrawal against the member's share balance,
// writes it and returns the stored event with the new share total.
func (w activityWriter) recordWithdrawal(
	ctx context.Context,
	memberID string,
	p period.Period,
	amount, sharePrice float64,
	now time.Time,
) (model.WithdrawalEvent, float64, error) {
	acts, err := w.activities.GetActivities(ctx, memberID)
	if err != nil {
		return model.WithdrawalEvent{}, 0, err
	}

	shares, err := ledger.CheckWithdrawal(amount, sharePrice, ledger.TotalShares(acts))
	if err != nil {
		return model.WithdrawalEvent{}, 0, err
	}

	wd := model.WithdrawalEvent{
		ID:         uuid.New().String(),
		Amount:     amount,
		SharePrice: sharePrice,
		Shares:     shares,
		Status:     model.WithdrawalStatusCompleted,
		CreatedAt:  now,
	}
	if err := w.activities.InsertWithdrawal(ctx, memberID, p, &wd); err != nil {
		return model.WithdrawalEvent{}, 0, err
	}

	act, _ := acts.At(p)
	act.Withdrawal = &wd
	acts.Set(p, act)

	total, err := w.updateTotal(ctx, memberID, acts)
	if err != nil {
		return model.WithdrawalEvent{}, 0, err
	}
	return wd, total, nil
}

func (w activityWriter) updateTotal(ctx context.Context, memberID string, acts model.Activities) (float64, error) {
	total := ledger.TotalShares(acts)
	if err := w.members.UpdateTotalShares(ctx, memberID, total); err != nil {
		return 0, fmt.Errorf("failed to update total shares: %w", err)
	}
	return total, nil
}
