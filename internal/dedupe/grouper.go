// Package dedupe finds probable duplicate transactions, typically the
// fallout of importing a file over an already synced window.
package dedupe

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/ledgermint/ledgermint/internal/model"
	"github.com/ledgermint/ledgermint/internal/service"
)

// Grouper clusters transactions that look like the same real charge.
type Grouper struct {
	storage service.Storage
}

// NewGrouper creates a grouper over the given storage.
func NewGrouper(storage service.Storage) *Grouper {
	return &Grouper{storage: storage}
}

// groupKey identifies one probable-duplicate cluster.
type groupKey struct {
	date     string
	merchant string
	amount   string
}

// FindDuplicates scans the transactions matching the filter and returns
// every cluster sharing calendar date, cent-rounded amount, and
// normalized merchant. Within each group the oldest copy by creation
// time comes first; it is the proposed survivor. Finding never deletes.
func (g *Grouper) FindDuplicates(ctx context.Context, filter service.TransactionFilter) ([]model.DuplicateGroup, error) {
	txns, err := g.storage.ListTransactions(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}

	buckets := make(map[groupKey][]model.Transaction)
	for _, txn := range txns {
		key := groupKey{
			date:     txn.Date.Format("2006-01-02"),
			merchant: model.NormalizeMerchant(txn.MerchantName),
			amount:   fmt.Sprintf("%.2f", txn.Amount),
		}
		buckets[key] = append(buckets[key], txn)
	}

	var groups []model.DuplicateGroup
	for key, members := range buckets {
		if len(members) < 2 {
			continue
		}

		sort.Slice(members, func(i, j int) bool {
			if !members[i].CreatedAt.Equal(members[j].CreatedAt) {
				return members[i].CreatedAt.Before(members[j].CreatedAt)
			}
			return members[i].ID < members[j].ID
		})

		date, _ := time.Parse("2006-01-02", key.date)
		groups = append(groups, model.DuplicateGroup{
			Date:         date,
			Merchant:     key.merchant,
			Amount:       members[0].Amount,
			Transactions: members,
		})
	}

	// Stable output order for display and scripting
	sort.Slice(groups, func(i, j int) bool {
		if !groups[i].Date.Equal(groups[j].Date) {
			return groups[i].Date.Before(groups[j].Date)
		}
		return groups[i].Merchant < groups[j].Merchant
	})

	slog.Info("Duplicate scan complete", "transactions", len(txns), "groups", len(groups))
	return groups, nil
}

// Purge deletes the remove candidates of the given groups, keeping the
// oldest member of each. It returns the number of rows deleted.
func (g *Grouper) Purge(ctx context.Context, groups []model.DuplicateGroup) (int, error) {
	var ids []string
	for _, group := range groups {
		for _, txn := range group.RemoveCandidates() {
			ids = append(ids, txn.ID)
		}
	}
	if len(ids) == 0 {
		return 0, nil
	}

	deleted, err := g.storage.DeleteTransactions(ctx, ids)
	if err != nil {
		return 0, fmt.Errorf("failed to purge duplicates: %w", err)
	}

	slog.Info("Duplicates purged", "deleted", deleted)
	return deleted, nil
}
