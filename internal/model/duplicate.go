package model

import "time"

// DuplicateGroup is a computed cluster of transactions sharing date,
// amount, and merchant: probable re-imports of the same real charge.
// Groups are proposals only; nothing is deleted without an explicit
// purge action.
type DuplicateGroup struct {
	Date         time.Time
	Merchant     string
	Transactions []Transaction // Sorted by creation time, oldest first
	Amount       float64
}

// Kept returns the member proposed to survive a purge: the oldest copy.
func (g *DuplicateGroup) Kept() *Transaction {
	if len(g.Transactions) == 0 {
		return nil
	}
	return &g.Transactions[0]
}

// RemoveCandidates returns every member except the kept one.
func (g *DuplicateGroup) RemoveCandidates() []Transaction {
	if len(g.Transactions) < 2 {
		return nil
	}
	return g.Transactions[1:]
}
