// Package recurring detects repeating charges such as subscriptions and
// rent from the transaction history.
package recurring

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/ledgermint/ledgermint/internal/model"
	"github.com/ledgermint/ledgermint/internal/service"
)

const (
	// Window is how far back the detector looks.
	Window = 365 * 24 * time.Hour

	// AmountTolerance is the maximum relative deviation from the group
	// mean for a charge to count as the same recurring amount.
	AmountTolerance = 0.10
)

// Cadence bounds, in mean days between consecutive charges.
const (
	weeklyMinGap  = 5.0
	weeklyMaxGap  = 10.0
	monthlyMinGap = 25.0
	monthlyMaxGap = 35.0
	yearlyMinGap  = 350.0
	yearlyMaxGap  = 380.0
)

// Detector finds recurring charge patterns and records them.
type Detector struct {
	storage service.Storage
}

// NewDetector creates a detector over the given storage.
func NewDetector(storage service.Storage) *Detector {
	return &Detector{storage: storage}
}

// Detect scans the trailing year of transactions ending at asOf, groups
// them by effective merchant, and records every group whose amounts are
// stable and whose cadence falls in a known bucket. Matching
// transactions are flagged as recurring.
//
// The run is a full recompute: repeating it without new data changes
// nothing. A failure on one merchant is logged and skipped so a single
// bad row cannot sink the whole run.
func (d *Detector) Detect(ctx context.Context, asOf time.Time) (*service.RecurringReport, error) {
	start := asOf.Add(-Window)
	txns, err := d.storage.ListTransactions(ctx, service.TransactionFilter{
		StartDate: &start,
		EndDate:   &asOf,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}

	groups := make(map[string][]model.Transaction)
	for _, txn := range txns {
		merchant := txn.EffectiveMerchant()
		if merchant == "" {
			continue
		}
		groups[merchant] = append(groups[merchant], txn)
	}

	report := &service.RecurringReport{}

	for merchant, group := range groups {
		if len(group) < 2 {
			continue
		}
		report.GroupsConsidered++

		pattern, ok := analyzeGroup(group)
		if !ok {
			continue
		}
		report.Detected++

		recurring := &model.RecurringTransaction{
			MerchantName: merchant,
			Amount:       pattern.meanAmount,
			Frequency:    pattern.frequency,
			LastDate:     pattern.lastDate,
			IsActive:     true,
		}
		if err := d.storage.UpsertRecurringTransaction(ctx, recurring); err != nil {
			slog.Warn("Failed to record recurring pattern", "merchant", merchant, "error", err)
			report.Failed++
			continue
		}

		minAmount := pattern.meanAmount * (1 - AmountTolerance)
		maxAmount := pattern.meanAmount * (1 + AmountTolerance)
		marked, err := d.storage.MarkTransactionsRecurring(ctx, merchant, minAmount, maxAmount)
		if err != nil {
			slog.Warn("Failed to flag recurring transactions", "merchant", merchant, "error", err)
			report.Failed++
			continue
		}
		report.Marked += marked
	}

	slog.Info("Recurring detection complete",
		"groups_considered", report.GroupsConsidered,
		"detected", report.Detected,
		"marked", report.Marked,
		"failed", report.Failed)
	return report, nil
}

// groupPattern describes a detected recurring charge.
type groupPattern struct {
	lastDate   time.Time
	frequency  model.Frequency
	meanAmount float64
}

// analyzeGroup decides whether a merchant's charges form a recurring
// pattern: stable absolute amounts and a mean gap inside one of the
// cadence buckets.
func analyzeGroup(group []model.Transaction) (groupPattern, bool) {
	sort.Slice(group, func(i, j int) bool {
		return group[i].Date.Before(group[j].Date)
	})

	var sum float64
	for _, txn := range group {
		sum += math.Abs(txn.Amount)
	}
	mean := sum / float64(len(group))
	if mean == 0 {
		return groupPattern{}, false
	}

	for _, txn := range group {
		if math.Abs(math.Abs(txn.Amount)-mean)/mean > AmountTolerance {
			return groupPattern{}, false
		}
	}

	var gapSum float64
	for i := 1; i < len(group); i++ {
		gapSum += group[i].Date.Sub(group[i-1].Date).Hours() / 24
	}
	meanGap := gapSum / float64(len(group)-1)

	frequency, ok := cadenceFor(meanGap)
	if !ok {
		return groupPattern{}, false
	}

	return groupPattern{
		meanAmount: mean,
		frequency:  frequency,
		lastDate:   group[len(group)-1].Date,
	}, true
}

func cadenceFor(meanGap float64) (model.Frequency, bool) {
	switch {
	case meanGap >= weeklyMinGap && meanGap <= weeklyMaxGap:
		return model.FrequencyWeekly, true
	case meanGap >= monthlyMinGap && meanGap <= monthlyMaxGap:
		return model.FrequencyMonthly, true
	case meanGap >= yearlyMinGap && meanGap <= yearlyMaxGap:
		return model.FrequencyYearly, true
	default:
		return "", false
	}
}
