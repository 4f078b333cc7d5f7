package dto

import (
	"busline/internal/domains/route/model"
	gDto "busline/shared/dto"
	gModel "busline/shared/model"
	"busline/shared/timezone"

	"github.com/google/uuid"
)

type CreateRouteRequest struct {
	Source              string  `json:"source"              validate:"required,max=100"`
	Destination         string  `json:"destination"         validate:"required,max=100,nefield=Source"`
	Distance            float64 `json:"distance"            validate:"required,gt=0"`
	EstimatedTravelTime int     `json:"estimatedTravelTime" validate:"required,gt=0"`
	Description         string  `json:"description"         validate:"omitempty,max=500"`
}

func (c *CreateRouteRequest) ToModel(user string) model.Route {
	now := timezone.Now()

	return model.Route{
		ID:                  uuid.NewString(),
		Source:              c.Source,
		Destination:         c.Destination,
		Distance:            c.Distance,
		EstimatedTravelTime: c.EstimatedTravelTime,
		Description:         c.Description,
		Metadata: gModel.Metadata{
			CreatedAt:  now,
			ModifiedAt: now,
			CreatedBy:  user,
			ModifiedBy: user,
		},
	}
}

type UpdateRouteRequest struct {
	Source              string   `db:"source"                json:"source"              validate:"omitempty,max=100"`
	Destination         string   `db:"destination"           json:"destination"         validate:"omitempty,max=100"`
	Distance            *float64 `db:"distance"              json:"distance"            validate:"omitempty,gt=0"`
	EstimatedTravelTime *int     `db:"estimated_travel_time" json:"estimatedTravelTime" validate:"omitempty,gt=0"`
	Description         *string  `db:"description"           json:"description"         validate:"omitempty,max=500"`
}

type RouteResponse struct {
	ID                  string  `json:"id"`
	Source              string  `json:"source"`
	Destination         string  `json:"destination"`
	Distance            float64 `json:"distance"`
	EstimatedTravelTime int     `json:"estimatedTravelTime"`
	Description         string  `json:"description,omitempty"`
	gDto.Metadata
}

func (r *RouteResponse) FromModel(model model.Route) {
	r.ID = model.ID
	r.Source = model.Source
	r.Destination = model.Destination
	r.Distance = model.Distance
	r.EstimatedTravelTime = model.EstimatedTravelTime
	r.Description = model.Description
	r.Metadata.FromModel(model.Metadata)
}

func FromModels(models []model.Route) []RouteResponse {
	res := make([]RouteResponse, len(models))
	for i, mod := range models {
		res[i].FromModel(mod)
	}

	return res
}
