package models

import (
	"time"
)

// OrganizationType classifies the buying organization.
type OrganizationType string

const (
	OrgTypeLab      OrganizationType = "lab"
	OrgTypeClinic   OrganizationType = "clinic"
	OrgTypeHospital OrganizationType = "hospital"
)

// UserRole determines what a member of an organization may do.
type UserRole string

const (
	RoleAdmin      UserRole = "admin"
	RoleLabManager UserRole = "lab_manager"
	RoleTechnician UserRole = "technician"
)

// UserProfile represents a lab buyer account.
type UserProfile struct {
	Base             `bson:",inline"`
	Email            string            `bson:"email" json:"email"`
	PasswordHash     string            `bson:"password_hash" json:"-"`
	OrganizationName string            `bson:"organization_name" json:"organization_name"`
	OrganizationType *OrganizationType `bson:"organization_type,omitempty" json:"organization_type,omitempty"`
	Location         *string           `bson:"location,omitempty" json:"location,omitempty"`
	Role             UserRole          `bson:"role" json:"role"`
	CreatedAt        time.Time         `bson:"created_at" json:"created_at"`
	UpdatedAt        time.Time         `bson:"updated_at" json:"updated_at"`
}
