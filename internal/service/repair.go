package service

import (
	"context"

	"github.com/guttosm/flippulse/internal/domain/models"
	"github.com/guttosm/flippulse/internal/margin"
)

// repairReason returns why a flip cannot be trusted, or "".
func repairReason(f models.Flip) string {
	switch {
	case f.Cancelled && f.Done:
		return "both cancelled and done"
	case f.Cancelled:
		return ""
	case f.Limit == 0:
		return "zero quantity"
	case f.Buy == 0:
		return "zero buy price"
	case f.Done && f.Sell == 0:
		return "done with zero sell price"
	case f.Done && f.Sold == 0:
		return "done with zero sold price"
	}
	return ""
}

// Repair marks inconsistent flips as cancelled and recomputes the stored
// totals from the completed flips. The log is only written when something
// changed.
func (s *flipService) Repair(ctx context.Context) (*RepairReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	log, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	report := &RepairReport{Before: log.Stats}
	for i := range log.Flips {
		f := &log.Flips[i]
		reason := repairReason(*f)
		if reason == "" {
			continue
		}
		f.Done, f.Cancelled = false, true
		report.Issues = append(report.Issues, RepairIssue{Position: i, Item: f.Item, Reason: reason})
	}

	log.Stats = margin.Totals(log.Flips)
	report.After = log.Stats

	if !report.Changed() {
		return report, nil
	}
	if err := s.save(log); err != nil {
		return nil, err
	}
	return report, nil
}
