package crops

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/jrsteele09/agro-console/apiclient"
	apperrors "github.com/jrsteele09/agro-console/internal/errors"
	"github.com/jrsteele09/agro-console/querycache"
)

const Path = "/crops"

// Service manages the crop catalogue.
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

func (s *Service) List(ctx context.Context) ([]Crop, error) {
	return querycache.Get(ctx, s.cache, querycache.KeyCrops, func(ctx context.Context) ([]Crop, error) {
		crops, err := apiclient.Call[[]Crop](ctx, s.client, Path, nil)
		if err != nil {
			return nil, apperrors.Wrapf(err, "[List] listing crops")
		}
		return crops, nil
	})
}

func (s *Service) Create(ctx context.Context, name string) (*Crop, error) {
	crop, err := s.write(ctx, http.MethodPost, Path, Input{Name: name})
	if err != nil {
		return nil, apperrors.Wrapf(err, "[Create] creating crop %q", name)
	}
	return crop, nil
}

// Update renames the crop with id.
func (s *Service) Update(ctx context.Context, id, name string) (*Crop, error) {
	if id == "" {
		return nil, fmt.Errorf("[Update] crop id is required: %w", apperrors.ErrInvalidInput)
	}
	crop, err := s.write(ctx, http.MethodPut, itemPath(id), Input{Name: name})
	if err != nil {
		return nil, apperrors.Wrapf(err, "[Update] updating crop %s", id)
	}
	return crop, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("[Delete] crop id is required: %w", apperrors.ErrInvalidInput)
	}
	if _, err := s.client.Request(ctx, itemPath(id), &apiclient.RequestOptions{Method: http.MethodDelete}); err != nil {
		return apperrors.Wrapf(err, "[Delete] deleting crop %s", id)
	}
	s.invalidate()
	return nil
}

func (s *Service) write(ctx context.Context, method, path string, in Input) (*Crop, error) {
	if err := in.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
	}
	body, err := apiclient.JSONBody(in)
	if err != nil {
		return nil, err
	}
	crop, err := apiclient.Call[*Crop](ctx, s.client, path, &apiclient.RequestOptions{Method: method, Body: body})
	if err != nil {
		return nil, err
	}
	s.invalidate()
	return crop, nil
}

// invalidate drops the crop list and the statistics grouped by crop.
func (s *Service) invalidate() {
	s.cache.Invalidate(querycache.KeyCrops)
	s.cache.InvalidatePrefix(querycache.PrefixStatistics)
}

func itemPath(id string) string {
	return Path + "/" + url.PathEscape(id)
}
