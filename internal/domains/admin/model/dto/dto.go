package dto

import (
	"busline/internal/domains/admin/model"
	"busline/shared/constant"
	gDto "busline/shared/dto"
	gModel "busline/shared/model"
	"busline/shared/timezone"

	"github.com/google/uuid"
)

type CreateAdminRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Email    string `json:"email"    validate:"required,email,max=100"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	FullName string `json:"fullName" validate:"required,max=100"`
}

func (c *CreateAdminRequest) ToModel(user, hashedPassword string) model.Admin {
	now := timezone.Now()

	return model.Admin{
		ID:       uuid.NewString(),
		Username: c.Username,
		Email:    c.Email,
		Password: hashedPassword,
		FullName: c.FullName,
		Role:     constant.RoleAdmin,
		Metadata: gModel.Metadata{
			CreatedAt:  now,
			ModifiedAt: now,
			CreatedBy:  user,
			ModifiedBy: user,
		},
	}
}

// UpdateAdminRequest leaves the stored password untouched when Password is empty.
type UpdateAdminRequest struct {
	Email    string `db:"email"     json:"email"    validate:"omitempty,email,max=100"`
	FullName string `db:"full_name" json:"fullName" validate:"omitempty,max=100"`
	Password string `json:"password" validate:"omitempty,min=8,max=72"`
}

type AdminResponse struct {
	ID        string  `json:"id"`
	Username  string  `json:"username"`
	Email     string  `json:"email"`
	FullName  string  `json:"fullName"`
	Role      string  `json:"role"`
	LastLogin *string `json:"lastLogin,omitempty"`
	gDto.Metadata
}

func (a *AdminResponse) FromModel(model model.Admin) {
	a.ID = model.ID
	a.Username = model.Username
	a.Email = model.Email
	a.FullName = model.FullName
	a.Role = model.Role
	a.LastLogin = nil

	if model.LastLogin != nil {
		lastLogin := timezone.Format(*model.LastLogin, constant.DateFormat)
		a.LastLogin = &lastLogin
	}

	a.Metadata.FromModel(model.Metadata)
}

func FromModels(models []model.Admin) []AdminResponse {
	res := make([]AdminResponse, len(models))
	for i, mod := range models {
		res[i].FromModel(mod)
	}

	return res
}
