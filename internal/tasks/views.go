package tasks

import (
	"context"

	"github.com/desertthunder/encore/internal/formatter"
	"github.com/desertthunder/encore/internal/models"
	"github.com/desertthunder/encore/internal/shared"
)

// WeeklyShows returns all of a user's upcoming matched shows, soonest
// first.
func (e *Engine) WeeklyShows(ctx context.Context, userID string) ([]models.DigestShow, error) {
	rows, err := e.concerts.ListMatched(userID, e.today(), "")
	if err != nil {
		return nil, err
	}
	return formatter.GroupShows(rows), nil
}

// MonthlyShows returns the user's matched shows for the next six months,
// bucketed by date for calendar rendering.
func (e *Engine) MonthlyShows(ctx context.Context, userID string) (map[string][]models.DigestShow, error) {
	to := shared.DateOnly(e.now().AddDate(0, 6, 0))
	rows, err := e.concerts.ListMatched(userID, e.today(), to)
	if err != nil {
		return nil, err
	}
	return formatter.GroupByMonth(formatter.GroupShows(rows)), nil
}
