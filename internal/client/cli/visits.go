package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/zootrail/zootrail/internal/client/api"
	"github.com/zootrail/zootrail/internal/client/services"
)

// printCallError renders a failed read call in user terms.
func (a *App) printCallError(err error) {
	var apiErr *api.APIError
	switch {
	case errors.As(err, &apiErr) && apiErr.Status == 401:
		printlnFn("Your session has expired. Please sign in again.")
	case errors.As(err, &apiErr):
		printlnFn(fmt.Sprintf("Request failed with status %d.", apiErr.Status))
	case errors.Is(err, api.ErrUnavailable):
		printlnFn("Could not reach the server. Check your connection and try again.")
	default:
		printlnFn("Error:", err.Error())
	}
}

// Dashboard prints the visit summary.
func (a *App) Dashboard(ctx context.Context) error {
	d, err := a.visits.Dashboard(ctx)
	if err != nil {
		a.printCallError(err)
		return err
	}
	printlnFn(fmt.Sprintf("Visits: %d | Zoos: %d | Streak: %d days",
		d.TotalVisits, d.DistinctZoos, d.CurrentStreak))
	return nil
}

// Visits lists one page of the visit log.
func (a *App) Visits(ctx context.Context, page int) error {
	visits, err := a.visits.Visits(ctx, page)
	if err != nil {
		a.printCallError(err)
		return err
	}
	if len(visits) == 0 {
		printlnFn("No visits on this page.")
		return nil
	}
	for _, v := range visits {
		line := fmt.Sprintf("%s  %s  %s", v.VisitedAt.Format("2006-01-02"), v.ZooName, v.ID)
		if v.Note != "" {
			line += "  | " + v.Note
		}
		printlnFn(line)
	}
	return nil
}

// LogVisit records a visit to the given zoo, with an optional note.
func (a *App) LogVisit(ctx context.Context, zooID string) error {
	note, err := getSimpleText(a.reader, "Note (optional)", os.Stdout)
	if err != nil {
		return err
	}

	v, err := a.visits.LogVisit(ctx, zooID, note)
	if err != nil {
		if errors.Is(err, services.ErrZooRequired) {
			printlnFn("Usage: logvisit <zoo-id>")
			return nil
		}
		a.printCallError(err)
		return err
	}
	printlnFn("Visit recorded:", v.ID)
	return nil
}

// Search queries the zoo catalogue and remembers the query locally.
func (a *App) Search(ctx context.Context, query string) error {
	zoos, err := a.visits.Search(ctx, query)
	if err != nil {
		if errors.Is(err, services.ErrEmptyQuery) {
			printlnFn("Usage: search <query>")
			return nil
		}
		a.printCallError(err)
		return err
	}
	if len(zoos) == 0 {
		printlnFn("No zoos found.")
		return nil
	}
	for _, z := range zoos {
		printlnFn(fmt.Sprintf("%s  %s (%s, %s)", z.ID, z.Name, z.City, z.Country))
	}
	return nil
}

// Recent prints the local search history, newest first.
func (a *App) Recent(ctx context.Context) error {
	queries, err := a.visits.RecentSearches(ctx, 10)
	if err != nil {
		printlnFn("Error:", err.Error())
		return err
	}
	if len(queries) == 0 {
		printlnFn("No recent searches.")
		return nil
	}
	for _, q := range queries {
		printlnFn("  " + q)
	}
	return nil
}

// Achievements lists unlocked and locked badges when the feature is on.
func (a *App) Achievements(ctx context.Context) error {
	items, err := a.visits.Achievements(ctx)
	if err != nil {
		if errors.Is(err, services.ErrFeatureDisabled) {
			printlnFn("Achievements are not enabled for this profile.")
			return nil
		}
		a.printCallError(err)
		return err
	}
	for _, it := range items {
		mark := "[ ]"
		if it.UnlockedAt != nil {
			mark = "[x]"
		}
		printlnFn(fmt.Sprintf("%s %s: %s", mark, it.Code, it.Title))
	}
	return nil
}
