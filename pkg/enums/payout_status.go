package enums

// PayoutStatus tracks a payout request. Only Processing is set by the API;
// the other states are advanced by an operator process.
type PayoutStatus string

const (
	PayoutStatusProcessing PayoutStatus = "Processing"
	PayoutStatusCompleted  PayoutStatus = "Completed"
	PayoutStatusFailed     PayoutStatus = "Failed"
)

// String implements fmt.Stringer.
func (s PayoutStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known PayoutStatus.
func (s PayoutStatus) IsValid() bool {
	switch s {
	case PayoutStatusProcessing, PayoutStatusCompleted, PayoutStatusFailed:
		return true
	}
	return false
}

// Counts reports whether the payout reduces the pending balance.
func (s PayoutStatus) Counts() bool {
	return s != PayoutStatusFailed
}
