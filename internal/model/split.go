package model

// TransactionSplit divides a parent transaction into shares.
//
// Splits need not sum exactly to the parent amount; the UI nudges users
// toward equality but storage does not enforce it.
type TransactionSplit struct {
	ID            string
	TransactionID string
	Description   string
	Amount        float64
	IsMyShare     bool
}
