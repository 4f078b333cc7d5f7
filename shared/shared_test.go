package shared_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"busline/shared"
	cacheMocks "busline/shared/cache/mocks"
	"busline/shared/constant"
	"busline/shared/dto"
)

func TestTransformFields(t *testing.T) {
	type updateBusRequest struct {
		BusNumber  string  `db:"bus_number"`
		FarePerKm  float64 `db:"fare_per_km"`
		TotalSeats *int    `db:"total_seats"`
		Amenities  string  `db:"amenities"`
		Image      string
	}

	zero := 0

	t.Run("only set columns are written", func(t *testing.T) {
		fields := shared.TransformFields(updateBusRequest{BusNumber: "DL-01", FarePerKm: 2.5, Image: "ignored"}, "operator")

		assert.Equal(t, "DL-01", fields["bus_number"])
		assert.Equal(t, 2.5, fields["fare_per_km"])
		assert.NotContains(t, fields, "amenities")
		assert.NotContains(t, fields, "total_seats")
		assert.Len(t, fields, 4)
		assert.Equal(t, "operator", fields[constant.FieldModifiedBy])
		assert.IsType(t, time.Time{}, fields[constant.FieldModifiedAt])
	})

	t.Run("a non-nil pointer to zero is still written", func(t *testing.T) {
		fields := shared.TransformFields(updateBusRequest{TotalSeats: &zero}, "operator")

		assert.Equal(t, &zero, fields["total_seats"])
	})

	t.Run("empty request only stamps metadata", func(t *testing.T) {
		fields := shared.TransformFields(updateBusRequest{}, constant.ContextSystem)

		assert.Len(t, fields, 2)
		assert.Equal(t, constant.ContextSystem, fields[constant.FieldModifiedBy])
	})
}

func TestFilterByID(t *testing.T) {
	filter := shared.FilterByID("schedule-1", "id", "schedules")

	where, args := filter.GetWhereClause()

	assert.Equal(t, "(schedules.id = :id)", where)
	assert.Equal(t, map[string]any{"id": "schedule-1"}, args)
}

func TestBuildCacheKey(t *testing.T) {
	assert.Equal(t, "route:get", shared.BuildCacheKey("route:get"))
	assert.Equal(t, "route:get:route-1", shared.BuildCacheKey("route:get", "route-1"))
	assert.Equal(t, "rate:10.0.0.1:curl", shared.BuildCacheKey("rate", "10.0.0.1", "curl"))
}

func TestBuildCacheKeyWithQuery(t *testing.T) {
	params := dto.QueryParams{Page: 1, Limit: 10, SortBy: "distance", SortDir: dto.SortDirAsc}
	bySource := func(source string) dto.FilterGroup {
		return dto.FilterGroup{
			Operator: dto.FilterGroupOperatorAnd,
			Filters: []any{
				dto.Filter{Field: "source", Value: source, Operator: dto.FilterOperatorEq, Table: "routes"},
			},
		}
	}

	key := shared.BuildCacheKeyWithQuery("route:list", params, bySource("Delhi"))

	t.Run("equal queries share a key", func(t *testing.T) {
		assert.Equal(t, key, shared.BuildCacheKeyWithQuery("route:list", params, bySource("Delhi")))
	})

	t.Run("key lives under the prefix", func(t *testing.T) {
		assert.Regexp(t, `^route:list:[0-9a-f]{64}$`, key)
	})

	t.Run("filter value changes the key", func(t *testing.T) {
		assert.NotEqual(t, key, shared.BuildCacheKeyWithQuery("route:list", params, bySource("Agra")))
	})

	t.Run("paging changes the key", func(t *testing.T) {
		next := params
		next.Page = 2

		assert.NotEqual(t, key, shared.BuildCacheKeyWithQuery("route:list", next, bySource("Delhi")))
	})

	t.Run("prefix changes the key", func(t *testing.T) {
		assert.NotEqual(t, key, shared.BuildCacheKeyWithQuery("route:sources", params, bySource("Delhi")))
	})
}

func TestInvalidateCaches(t *testing.T) {
	t.Run("clears the pattern and the bare key", func(t *testing.T) {
		redisCache := cacheMocks.NewMockRedisCache(gomock.NewController(t))

		gomock.InOrder(
			redisCache.EXPECT().Clear(gomock.Any(), "route:list:*").Return(nil),
			redisCache.EXPECT().Delete(gomock.Any(), "route:list").Return(nil),
		)

		shared.InvalidateCaches(context.Background(), redisCache, "route:list")
	})

	t.Run("a failed clear still deletes the bare key", func(t *testing.T) {
		redisCache := cacheMocks.NewMockRedisCache(gomock.NewController(t))

		redisCache.EXPECT().Clear(gomock.Any(), "route:sources:*").Return(errors.New("connection refused"))
		redisCache.EXPECT().Delete(gomock.Any(), "route:sources").Return(errors.New("connection refused"))

		shared.InvalidateCaches(context.Background(), redisCache, "route:sources")
	})
}
