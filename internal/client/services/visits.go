package services

import (
	"context"
	"errors"
	"strings"

	"github.com/zootrail/zootrail/internal/client/api"
	"github.com/zootrail/zootrail/internal/client/models"
	"github.com/zootrail/zootrail/internal/client/repositories/searches"
	"github.com/zootrail/zootrail/internal/logging"
)

var (
	// ErrFeatureDisabled means the operation is behind a configuration flag
	// that is off for this profile.
	ErrFeatureDisabled = errors.New("feature is not enabled")

	// ErrEmptyQuery rejects blank search input before any request is made.
	ErrEmptyQuery = errors.New("search query is empty")

	// ErrZooRequired rejects a visit log without a zoo.
	ErrZooRequired = errors.New("zoo id is required")
)

// VisitsService exposes the signed-in user's visit data: the dashboard
// summary, the visit log, zoo search with local search history, and the
// flag-gated achievements list.
type VisitsService interface {
	Dashboard(ctx context.Context) (*models.Dashboard, error)
	Visits(ctx context.Context, page int) ([]models.Visit, error)
	LogVisit(ctx context.Context, zooID, note string) (*models.Visit, error)
	Search(ctx context.Context, query string) ([]models.Zoo, error)
	RecentSearches(ctx context.Context, limit int) ([]string, error)
	Achievements(ctx context.Context) ([]models.Achievement, error)
}

type visitsService struct {
	client              api.Client
	searches            searches.Repository
	achievementsEnabled bool
	log                 logging.Logger
}

func NewVisitsService(client api.Client, searchRepo searches.Repository,
	achievementsEnabled bool, log logging.Logger) VisitsService {
	return &visitsService{
		client:              client,
		searches:            searchRepo,
		achievementsEnabled: achievementsEnabled,
		log:                 log,
	}
}

func (v *visitsService) Dashboard(ctx context.Context) (*models.Dashboard, error) {
	return v.client.Dashboard(ctx)
}

func (v *visitsService) Visits(ctx context.Context, page int) ([]models.Visit, error) {
	if page < 1 {
		page = 1
	}
	return v.client.Visits(ctx, page)
}

func (v *visitsService) LogVisit(ctx context.Context, zooID, note string) (*models.Visit, error) {
	zooID = strings.TrimSpace(zooID)
	if zooID == "" {
		return nil, ErrZooRequired
	}
	return v.client.LogVisit(ctx, zooID, note)
}

// Search runs the catalogue query and remembers it locally. History is a
// convenience: a failure to record it never fails the search.
func (v *visitsService) Search(ctx context.Context, query string) ([]models.Zoo, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}

	zoos, err := v.client.SearchZoos(ctx, query)
	if err != nil {
		return nil, err
	}

	if err := v.searches.Add(ctx, query); err != nil {
		v.log.Warn(ctx, "recording search query failed", "error", err)
	}
	return zoos, nil
}

func (v *visitsService) RecentSearches(ctx context.Context, limit int) ([]string, error) {
	return v.searches.Recent(ctx, limit)
}

func (v *visitsService) Achievements(ctx context.Context) ([]models.Achievement, error) {
	if !v.achievementsEnabled {
		return nil, ErrFeatureDisabled
	}
	return v.client.Achievements(ctx)
}
