package service

import (
	"context"
	"fmt"

	"busline/config"
	"busline/infras/otel"
	"busline/internal/domains/route/model"
	"busline/internal/domains/route/model/dto"
	"busline/internal/domains/route/repository"
	"busline/shared"
	"busline/shared/cache"
	"busline/shared/constant"
	gDto "busline/shared/dto"
	"busline/shared/failure"
	gRepo "busline/shared/repository"

	"github.com/rs/zerolog/log"
)

const (
	cacheGetRoute          = "route:get"
	cacheGetAllRoute       = "route:gets"
	cacheRouteSources      = "route:sources"
	cacheRouteDestinations = "route:destinations"

	errRouteNotFound = "route not found"
)

type Route interface {
	Create(ctx context.Context, req dto.CreateRouteRequest) (dto.RouteResponse, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup) ([]dto.RouteResponse, error)
	Get(ctx context.Context, id string) (dto.RouteResponse, error)
	Search(ctx context.Context, source, destination string) (dto.RouteResponse, error)
	Sources(ctx context.Context) ([]string, error)
	Destinations(ctx context.Context) ([]string, error)
	Update(ctx context.Context, req dto.UpdateRouteRequest, id string) (dto.RouteResponse, error)
	Delete(ctx context.Context, id string) error
}

type serviceImpl struct {
	repo  repository.Route
	cfg   *config.Config
	cache cache.RedisCache
	otel  otel.Otel
}

func New(repo repository.Route, cfg *config.Config, cache cache.RedisCache, otel otel.Otel) Route {
	return &serviceImpl{
		repo:  repo,
		cfg:   cfg,
		cache: cache,
		otel:  otel,
	}
}

func (s *serviceImpl) Create(ctx context.Context, req dto.CreateRouteRequest) (res dto.RouteResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".route.Create")
	defer scope.End()
	defer scope.TraceIfError(err)

	user, _ := ctx.Value(constant.ContextKeyUsername).(string)

	if err = s.ensureUniquePair(ctx, req.Source, req.Destination, constant.Empty); err != nil {
		return res, err
	}

	route := req.ToModel(user)

	if err = s.repo.Insert(ctx, route); err != nil {
		if gRepo.IsUniqueViolation(err) {
			return res, pairConflict(req.Source, req.Destination)
		}

		log.Error().Err(err).Msg("failed to create route")

		return res, fmt.Errorf("failed to create route: %w", err)
	}

	s.invalidateLists(ctx)

	res.FromModel(route)

	return res, nil
}

func (s *serviceImpl) GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup) (res []dto.RouteResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".route.GetAll")
	defer scope.End()
	defer scope.TraceIfError(err)

	cacheKey := shared.BuildCacheKeyWithQuery(cacheGetAllRoute, params, filter)

	if err = s.cache.Get(ctx, cacheKey, &res); err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for routes")

		return res, nil
	}

	routes, err := s.repo.GetAll(ctx, params, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get routes")

		return nil, fmt.Errorf("failed to get routes: %w", err)
	}

	res = dto.FromModels(routes)
	s.save(ctx, cacheKey, res)

	return res, nil
}

func (s *serviceImpl) Get(ctx context.Context, id string) (res dto.RouteResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".route.Get")
	defer scope.End()
	defer scope.TraceIfError(err)

	cacheKey := shared.BuildCacheKey(cacheGetRoute, id)

	if err = s.cache.Get(ctx, cacheKey, &res); err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for route")

		return res, nil
	}

	route, err := s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get route")

		return res, fmt.Errorf("failed to get route: %w", err)
	}

	if route.ID == constant.Empty {
		return res, failure.NotFound(errRouteNotFound) // nolint:wrapcheck
	}

	res.FromModel(route)
	s.save(ctx, cacheKey, res)

	return res, nil
}

// Search returns the single route between source and destination.
func (s *serviceImpl) Search(ctx context.Context, source, destination string) (res dto.RouteResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".route.Search")
	defer scope.End()
	defer scope.TraceIfError(err)

	route, err := s.repo.Get(ctx, pairFilter(source, destination))
	if err != nil {
		log.Error().Err(err).Msg("failed to search route")

		return res, fmt.Errorf("failed to search route: %w", err)
	}

	if route.ID == constant.Empty {
		return res, failure.NotFound(errRouteNotFound) // nolint:wrapcheck
	}

	res.FromModel(route)

	return res, nil
}

func (s *serviceImpl) Sources(ctx context.Context) ([]string, error) {
	return s.distinct(ctx, cacheRouteSources, model.FieldSource)
}

func (s *serviceImpl) Destinations(ctx context.Context) ([]string, error) {
	return s.distinct(ctx, cacheRouteDestinations, model.FieldDestination)
}

func (s *serviceImpl) distinct(ctx context.Context, cacheKey, column string) (res []string, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".route.distinct")
	defer scope.End()
	defer scope.TraceIfError(err)

	if err = s.cache.Get(ctx, cacheKey, &res); err == nil {
		return res, nil
	}

	res, err = s.repo.Distinct(ctx, column)
	if err != nil {
		log.Error().Err(err).Str("column", column).Msg("failed to get distinct route values")

		return nil, fmt.Errorf("failed to get route %ss: %w", column, err)
	}

	s.save(ctx, cacheKey, res)

	return res, nil
}

func (s *serviceImpl) Update(ctx context.Context, req dto.UpdateRouteRequest, id string) (res dto.RouteResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".route.Update")
	defer scope.End()
	defer scope.TraceIfError(err)

	user, _ := ctx.Value(constant.ContextKeyUsername).(string)
	filter := shared.FilterByID(id, model.FieldID, model.TableName)

	current, err := s.repo.Get(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to check route existence")

		return res, fmt.Errorf("failed to get route: %w", err)
	}

	if current.ID == constant.Empty {
		return res, failure.NotFound(errRouteNotFound) // nolint:wrapcheck
	}

	source, destination := current.Source, current.Destination
	if req.Source != constant.Empty {
		source = req.Source
	}

	if req.Destination != constant.Empty {
		destination = req.Destination
	}

	if source == destination {
		return res, failure.BadRequestFromString("source and destination must differ") // nolint:wrapcheck
	}

	if source != current.Source || destination != current.Destination {
		if err = s.ensureUniquePair(ctx, source, destination, current.ID); err != nil {
			return res, err
		}
	}

	if err = s.repo.Update(ctx, shared.TransformFields(req, user), filter); err != nil {
		if gRepo.IsUniqueViolation(err) {
			return res, pairConflict(source, destination)
		}

		log.Error().Err(err).Msg("failed to update route")

		return res, fmt.Errorf("failed to update route: %w", err)
	}

	s.invalidate(ctx, current.ID)

	updated, err := s.repo.Get(ctx, filter)
	if err != nil {
		return res, fmt.Errorf("failed to get route: %w", err)
	}

	res.FromModel(updated)

	return res, nil
}

func (s *serviceImpl) Delete(ctx context.Context, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".route.Delete")
	defer scope.End()
	defer scope.TraceIfError(err)

	filter := shared.FilterByID(id, model.FieldID, model.TableName)

	exist, err := s.repo.Exist(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to check if route exists")

		return fmt.Errorf("failed to check if route exists: %w", err)
	}

	if !exist {
		return failure.NotFound(errRouteNotFound) // nolint:wrapcheck
	}

	if err = s.repo.Delete(ctx, filter); err != nil {
		if gRepo.IsForeignKeyViolation(err) {
			return failure.Conflict("route is still used by schedules") // nolint:wrapcheck
		}

		log.Error().Err(err).Msg("failed to delete route")

		return fmt.Errorf("failed to delete route: %w", err)
	}

	s.invalidate(ctx, id)

	return nil
}

func (s *serviceImpl) ensureUniquePair(ctx context.Context, source, destination, excludeID string) error {
	filter := pairFilter(source, destination)
	if excludeID != constant.Empty {
		filter.Filters = append(filter.Filters, gDto.Filter{
			Field:    model.FieldID,
			Value:    excludeID,
			Operator: gDto.FilterOperatorNotEq,
			Table:    model.TableName,
		})
	}

	exist, err := s.repo.Exist(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to check route pair")

		return fmt.Errorf("failed to check route pair: %w", err)
	}

	if exist {
		return pairConflict(source, destination)
	}

	return nil
}

func (s *serviceImpl) save(ctx context.Context, key string, value any) {
	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, key, value, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Str("cacheKey", key).Msg("failed to save route cache")
		}
	}()
}

func (s *serviceImpl) invalidateLists(ctx context.Context) {
	go func() {
		c := context.WithoutCancel(ctx)

		shared.InvalidateCaches(c, s.cache, cacheGetAllRoute)
		shared.InvalidateCaches(c, s.cache, cacheRouteSources)
		shared.InvalidateCaches(c, s.cache, cacheRouteDestinations)
	}()
}

func (s *serviceImpl) invalidate(ctx context.Context, id string) {
	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Delete(c, shared.BuildCacheKey(cacheGetRoute, id)); err != nil {
			log.Error().Err(err).Msg("failed to delete route cache")
		}
	}()

	s.invalidateLists(ctx)
}

func pairFilter(source, destination string) gDto.FilterGroup {
	return gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters: []any{
			gDto.Filter{Field: model.FieldSource, Value: source, Operator: gDto.FilterOperatorEq, Table: model.TableName},
			gDto.Filter{Field: model.FieldDestination, Value: destination, Operator: gDto.FilterOperatorEq, Table: model.TableName},
		},
	}
}

func pairConflict(source, destination string) error {
	return failure.Conflict(fmt.Sprintf("route from %s to %s already exists", source, destination)) // nolint:wrapcheck
}
