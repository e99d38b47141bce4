package models

import (
	"time"

	"github.com/dibba-app/dibba-backend/pkg/enums"
)

// Payout is a withdrawal request against accrued earnings.
type Payout struct {
	ID            string             `json:"id"`
	UserID        string             `json:"userId"`
	Role          enums.Role         `json:"role"`
	Amount        float64            `json:"amount"`
	Status        enums.PayoutStatus `json:"status"`
	Date          time.Time          `json:"date"`
	ProcessedDate *time.Time         `json:"processedDate,omitempty"`
	BankDetails   BankDetails        `json:"bankDetails"`
}
