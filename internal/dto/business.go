package dto

import "time"

type CreateBusinessRequest struct {
	Name         string `json:"name" validate:"required,min=2,max=150"`
	BusinessType string `json:"business_type" validate:"required,is-business-type"`
	Description  string `json:"description" validate:"max=2000"`
	Address      string `json:"address" validate:"max=300"`
	Phone        string `json:"phone" validate:"max=30"`
	Website      string `json:"website" validate:"omitempty,url"`
}

type UpdateBusinessRequest struct {
	Name         *string `json:"name" validate:"omitempty,min=2,max=150"`
	BusinessType *string `json:"business_type" validate:"omitempty,is-business-type"`
	Description  *string `json:"description" validate:"omitempty,max=2000"`
	Address      *string `json:"address" validate:"omitempty,max=300"`
	Phone        *string `json:"phone" validate:"omitempty,max=30"`
	Website      *string `json:"website" validate:"omitempty,url"`
}

type BusinessResponse struct {
	ID           string    `json:"id"`
	OwnerID      string    `json:"owner_id"`
	Name         string    `json:"name"`
	Slug         string    `json:"slug"`
	BusinessType string    `json:"business_type"`
	Description  string    `json:"description,omitempty"`
	Address      string    `json:"address,omitempty"`
	Phone        string    `json:"phone,omitempty"`
	Website      string    `json:"website,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
