package models

type Business struct {
	BaseModelWithDeleted
	OwnerID      string `gorm:"not null;index" json:"owner_id"`
	Name         string `gorm:"not null" json:"name"`
	BusinessType string `json:"business_type"` // restaurant, salon, retail, ...
	Slug         string `gorm:"uniqueIndex;not null" json:"slug"`
	Description  string `json:"description"`
	Address      string `json:"address"`
	Phone        string `json:"phone"`
	Website      string `json:"website"`

	// Relations
	Owner User `gorm:"foreignKey:OwnerID" json:"-"`
}

// Customer is a review author reached through a QR code. Customers are not
// platform accounts.
type Customer struct {
	BaseModel
	BusinessID string `gorm:"not null;index" json:"business_id"`
	Name       string `json:"name"`
	Email      string `gorm:"index" json:"email"`
	Phone      string `json:"phone"`
}
