package transaction

import "time"

// Candidate is an entry that has not been saved yet: manual input or extractor output.
// Wallet is free text and is normalized when the candidate is built.
type Candidate struct {
	Direction   Direction `json:"type,omitempty"`
	Amount      int64     `json:"amount"`
	Category    string    `json:"category"`
	Wallet      string    `json:"wallet"`
	Description string    `json:"description"`
}

// Build turns the candidate into a transaction owned by userID.
func (c Candidate) Build(userID int64, at time.Time) (*Transaction, error) {
	return New().
		WithUserID(userID).
		WithDirection(c.Direction).
		WithAmount(c.Amount).
		WithCategory(ParseCategory(c.Category)).
		WithWalletLabel(c.Wallet).
		WithDescription(c.Description).
		WithCreatedAt(at).
		Build()
}
