package earnings

import (
	"fmt"
	"time"

	pkgerrors "github.com/dibba-app/dibba-backend/pkg/errors"
	"github.com/dibba-app/dibba-backend/pkg/money"
	"github.com/shopspring/decimal"
)

const (
	MsgBelowThreshold = "Minimum payout threshold not met"
	MsgCooldown       = "Payout cooldown active"
)

// CheckPayout decides whether a payout of requested (nil means the whole
// pending balance) may be recorded now, and returns the amount to record.
func CheckPayout(in Input, requested *decimal.Decimal) (decimal.Decimal, error) {
	_, _, pending, last := totals(in)
	pending = money.Round(pending)

	if pending.LessThan(MinPayout) {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodePrecondition, MsgBelowThreshold).
			WithDetails(map[string]any{"pendingPayout": pending.InexactFloat64()})
	}

	amount := pending
	if requested != nil {
		amount = money.Round(*requested)
	}
	if amount.LessThan(MinPayout) {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodePrecondition, MsgBelowThreshold)
	}
	if amount.GreaterThan(pending) {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodePrecondition,
			fmt.Sprintf("Payout amount exceeds pending balance of %s", pending.StringFixed(money.Scale)))
	}

	if last != nil && in.Now.Sub(*last) < PayoutCooldown {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodePrecondition, MsgCooldown).
			WithDetails(map[string]any{"nextEligibleAt": last.Add(PayoutCooldown).Format(time.RFC3339)})
	}
	return amount, nil
}
