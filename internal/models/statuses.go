package models

type UserStatus string
type UserRole string
type SubscriptionStatus string
type PaymentStatus string
type ReviewStatus string
type GenerationStatus string
type ModerationAction string

const (
	UserStatusActive    UserStatus = "active"
	UserStatusSuspended UserStatus = "suspended"

	UserRoleBusiness UserRole = "business"
	UserRoleAdmin    UserRole = "admin"

	SubscriptionStatusPending   SubscriptionStatus = "pending"
	SubscriptionStatusActive    SubscriptionStatus = "active"
	SubscriptionStatusCancelled SubscriptionStatus = "cancelled"
	SubscriptionStatusExpired   SubscriptionStatus = "expired"

	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusFailed   PaymentStatus = "failed"
	PaymentStatusRefunded PaymentStatus = "refunded"

	ReviewStatusPending     ReviewStatus = "pending"
	ReviewStatusAIGenerated ReviewStatus = "ai_generated"
	ReviewStatusApproved    ReviewStatus = "approved"
	ReviewStatusPublished   ReviewStatus = "published"
	ReviewStatusRejected    ReviewStatus = "rejected"

	GenerationStatusPending     GenerationStatus = "pending"
	GenerationStatusApproved    GenerationStatus = "approved"
	GenerationStatusRejected    GenerationStatus = "rejected"
	GenerationStatusRegenerated GenerationStatus = "regenerated"

	ModerationActionApprove ModerationAction = "approve"
	ModerationActionReject  ModerationAction = "reject"
	ModerationActionFlag    ModerationAction = "flag"
	ModerationActionDelete  ModerationAction = "delete"
)
