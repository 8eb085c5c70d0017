package producers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/jrsteele09/agro-console/apiclient"
	apperrors "github.com/jrsteele09/agro-console/internal/errors"
	"github.com/jrsteele09/agro-console/querycache"
)

const Path = "/producer"

// Service manages producers and their farms.
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

func (s *Service) List(ctx context.Context) ([]Producer, error) {
	return querycache.Get(ctx, s.cache, querycache.KeyProducers, func(ctx context.Context) ([]Producer, error) {
		producers, err := apiclient.Call[[]Producer](ctx, s.client, Path, nil)
		if err != nil {
			return nil, apperrors.Wrapf(err, "[List] listing producers")
		}
		return producers, nil
	})
}

// Get looks a producer up in the (cached) list.
func (s *Service) Get(ctx context.Context, id string) (*Producer, error) {
	list, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range list {
		if list[i].ID == id {
			p := list[i]
			return &p, nil
		}
	}
	return nil, fmt.Errorf("[Get] producer %s not found: %w", id, apperrors.ErrInvalidInput)
}

// Create registers a new producer. ID and CreatedAt are assigned by the API
// and are not sent.
func (s *Service) Create(ctx context.Context, p Producer) (*Producer, error) {
	p.ID = ""
	p.CreatedAt = ""
	created, err := s.write(ctx, http.MethodPost, Path, p)
	if err != nil {
		return nil, apperrors.Wrapf(err, "[Create] creating producer %q", p.ProducerName)
	}
	return created, nil
}

// Update sends the full record to the producer's resource.
func (s *Service) Update(ctx context.Context, p Producer) (*Producer, error) {
	if p.ID == "" {
		return nil, fmt.Errorf("[Update] producer id is required: %w", apperrors.ErrInvalidInput)
	}
	updated, err := s.write(ctx, http.MethodPut, itemPath(p.ID), p)
	if err != nil {
		return nil, apperrors.Wrapf(err, "[Update] updating producer %s", p.ID)
	}
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("[Delete] producer id is required: %w", apperrors.ErrInvalidInput)
	}
	if _, err := s.client.Request(ctx, itemPath(id), &apiclient.RequestOptions{Method: http.MethodDelete}); err != nil {
		return apperrors.Wrapf(err, "[Delete] deleting producer %s", id)
	}
	s.invalidate()
	return nil
}

func (s *Service) write(ctx context.Context, method, path string, p Producer) (*Producer, error) {
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
	}
	body, err := apiclient.JSONBody(p)
	if err != nil {
		return nil, err
	}
	out, err := apiclient.Call[*Producer](ctx, s.client, path, &apiclient.RequestOptions{Method: method, Body: body})
	if err != nil {
		return nil, err
	}
	s.invalidate()
	return out, nil
}

// invalidate drops the producer list, the farm list that shows producer
// names, and every statistic.
func (s *Service) invalidate() {
	s.cache.Invalidate(querycache.KeyProducers, querycache.KeyProducerCrops)
	s.cache.InvalidatePrefix(querycache.PrefixStatistics)
}

func itemPath(id string) string {
	return Path + "/" + url.PathEscape(id)
}
