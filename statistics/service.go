package statistics

import (
	"context"

	"github.com/jrsteele09/agro-console/apiclient"
	apperrors "github.com/jrsteele09/agro-console/internal/errors"
	"github.com/jrsteele09/agro-console/querycache"
	"golang.org/x/sync/errgroup"
)

const (
	FarmCountPath     = "/statistics/farm-count"
	TotalHectaresPath = "/statistics/total-hectares"
	ByStatePath       = "/statistics/pie-chart-by-state"
	ByCropPath        = "/statistics/pie-chart-by-crop"
	LandUsePath       = "/statistics/pie-chart-by-land-use"
)

// Service reads the aggregate figures of all registered farms.
type Service struct {
	client apiclient.Requester
	cache  *querycache.Cache
}

// ServiceOption defines a function type to modify the Service instance.
type ServiceOption func(*Service)

func WithCache(cache *querycache.Cache) ServiceOption {
	return func(s *Service) {
		s.cache = cache
	}
}

func NewService(client apiclient.Requester, options ...ServiceOption) *Service {
	s := &Service{client: client}
	for _, opt := range options {
		opt(s)
	}
	return s
}

func (s *Service) FarmCount(ctx context.Context) (FarmCount, error) {
	return fetch[FarmCount](ctx, s, FarmCountPath)
}

func (s *Service) TotalHectares(ctx context.Context) (TotalHectares, error) {
	return fetch[TotalHectares](ctx, s, TotalHectaresPath)
}

func (s *Service) ByState(ctx context.Context) (PieChart, error) {
	return fetch[PieChart](ctx, s, ByStatePath)
}

func (s *Service) ByCrop(ctx context.Context) (PieChart, error) {
	return fetch[PieChart](ctx, s, ByCropPath)
}

func (s *Service) LandUse(ctx context.Context) (LandUse, error) {
	return fetch[LandUse](ctx, s, LandUsePath)
}

// Dashboard fetches the five figures concurrently. The first failure cancels
// the others and is returned.
func (s *Service) Dashboard(ctx context.Context) (*Dashboard, error) {
	var d Dashboard
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		v, err := s.FarmCount(ctx)
		d.FarmCount = float64(v.Count)
		return err
	})
	g.Go(func() error {
		v, err := s.TotalHectares(ctx)
		d.TotalHectares = float64(v.Total)
		return err
	})
	g.Go(func() error {
		v, err := s.ByState(ctx)
		d.ByState = v
		return err
	})
	g.Go(func() error {
		v, err := s.ByCrop(ctx)
		d.ByCrop = v
		return err
	})
	g.Go(func() error {
		v, err := s.LandUse(ctx)
		d.LandUse = v
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, apperrors.Wrapf(err, "[Dashboard] loading statistics")
	}
	return &d, nil
}

func fetch[T any](ctx context.Context, s *Service, path string) (T, error) {
	key := querycache.PrefixStatistics + path[len("/statistics/"):]
	return querycache.Get(ctx, s.cache, key, func(ctx context.Context) (T, error) {
		v, err := apiclient.Call[T](ctx, s.client, path, nil)
		if err != nil {
			return v, apperrors.Wrapf(err, "[%s] fetching statistics", path)
		}
		return v, nil
	})
}
