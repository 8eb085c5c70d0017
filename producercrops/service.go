package producercrops

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/jrsteele09/agro-console/apiclient"
	apperrors "github.com/jrsteele09/agro-console/internal/errors"
	"github.com/jrsteele09/agro-console/querycache"
)

const Path = "/producer-crops"

// Service manages which crops each producer plants, and on how much land.
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

func (s *Service) List(ctx context.Context) ([]ProducerCrop, error) {
	return querycache.Get(ctx, s.cache, querycache.KeyProducerCrops, func(ctx context.Context) ([]ProducerCrop, error) {
		list, err := apiclient.Call[[]ProducerCrop](ctx, s.client, Path, nil)
		if err != nil {
			return nil, apperrors.Wrapf(err, "[List] listing producer crops")
		}
		return list, nil
	})
}

func (s *Service) Create(ctx context.Context, in Input) (*ProducerCrop, error) {
	if err := in.Validate(); err != nil {
		return nil, fmt.Errorf("[Create] %w: %v", apperrors.ErrInvalidInput, err)
	}
	created, err := s.write(ctx, http.MethodPost, Path, in)
	if err != nil {
		return nil, apperrors.Wrapf(err, "[Create] creating producer crop")
	}
	return created, nil
}

func (s *Service) Update(ctx context.Context, id string, in Input) (*ProducerCrop, error) {
	if id == "" {
		return nil, fmt.Errorf("[Update] producer crop id is required: %w", apperrors.ErrInvalidInput)
	}
	if err := in.Validate(); err != nil {
		return nil, fmt.Errorf("[Update] %w: %v", apperrors.ErrInvalidInput, err)
	}
	updated, err := s.write(ctx, http.MethodPut, itemPath(id), updateBody{Input: in, ID: id})
	if err != nil {
		return nil, apperrors.Wrapf(err, "[Update] updating producer crop %s", id)
	}
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("[Delete] producer crop id is required: %w", apperrors.ErrInvalidInput)
	}
	if _, err := s.client.Request(ctx, itemPath(id), &apiclient.RequestOptions{Method: http.MethodDelete}); err != nil {
		return apperrors.Wrapf(err, "[Delete] deleting producer crop %s", id)
	}
	s.invalidate()
	return nil
}

func (s *Service) write(ctx context.Context, method, path string, v any) (*ProducerCrop, error) {
	body, err := apiclient.JSONBody(v)
	if err != nil {
		return nil, err
	}
	out, err := apiclient.Call[*ProducerCrop](ctx, s.client, path, &apiclient.RequestOptions{Method: method, Body: body})
	if err != nil {
		return nil, err
	}
	s.invalidate()
	return out, nil
}

func (s *Service) invalidate() {
	s.cache.Invalidate(querycache.KeyProducerCrops)
	s.cache.InvalidatePrefix(querycache.PrefixStatistics)
}

func itemPath(id string) string {
	return Path + "/" + url.PathEscape(id)
}
