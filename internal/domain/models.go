// Package domain defines the persistence models for the repair-shop
// application. These types are mapped with GORM and form the core data layer.
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Client is a shop customer. Clients are deduplicated by email at intake time:
// when an intake carries an email that already exists, the existing row is
// reused and its name/phone refreshed instead of creating a duplicate.
//
// Fields:
//   - ID: stable UUID primary key (char(36)).
//   - Name: full name, required.
//   - Phone / Email: optional contact details; Email is uniquely indexed so it
//     can act as the natural dedup key when present.
type Client struct {
	ID        string    `json:"id"    gorm:"type:char(36);primaryKey"`
	Name      string    `json:"name"  gorm:"type:varchar(255);not null"`
	Phone     *string   `json:"phone,omitempty" gorm:"type:varchar(32)"`
	Email     *string   `json:"email,omitempty" gorm:"type:varchar(255);uniqueIndex:ux_clients_email"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the database table name for Client.
func (Client) TableName() string { return "clients" }

// Vehicle is a bike or scooter brought in for repair. A fresh row is created
// on every intake (no reuse), owned by exactly one client.
type Vehicle struct {
	ID           string      `json:"id"        gorm:"type:char(36);primaryKey"`
	ClientID     string      `json:"client_id" gorm:"type:char(36);not null;index"`
	Type         VehicleType `json:"type"      gorm:"type:varchar(16);not null;check:type IN ('bike','scooter')"`
	Brand        *string     `json:"brand,omitempty"         gorm:"type:varchar(128)"`
	Model        *string     `json:"model,omitempty"         gorm:"type:varchar(128)"`
	SerialNumber *string     `json:"serial_number,omitempty" gorm:"type:varchar(128)"`
	CreatedAt    time.Time   `json:"created_at"`

	Client Client `json:"-" gorm:"foreignKey:ClientID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Vehicle.
func (Vehicle) TableName() string { return "vehicles" }

// Repair is the aggregate root of the workflow: one intake produces one repair
// referencing exactly one client and one vehicle, and those references never
// change afterwards.
//
// EstimatedLaborMinutes and PreliminaryQuote are derived once at creation from
// the checklist responses and are never recomputed, even if the catalog
// changes later. They are a frozen snapshot of the diagnostic moment.
//
// Fields:
//   - Status: workflow state, starts at "initial" (see RepairStatus).
//   - ClientDecision / MaxPrice / DetailedQuoteFee: outcome of the quote
//     discussion at intake. MaxPrice is present only for "max_price";
//     DetailedQuoteFee is non-zero only for "detailed_quote".
//   - FinalQuote: nullable amount set by the technician; clearing it writes
//     NULL, distinct from never having set it.
type Repair struct {
	ID                    string           `json:"id"           gorm:"type:char(36);primaryKey"`
	ClientID              string           `json:"client_id"    gorm:"type:char(36);not null;index"`
	VehicleID             string           `json:"vehicle_id"   gorm:"type:char(36);not null;index"`
	VendorName            string           `json:"vendor_name"  gorm:"type:varchar(255);not null"`
	ClientIssue           string           `json:"client_issue" gorm:"type:text;not null"`
	Status                RepairStatus     `json:"status"       gorm:"type:varchar(32);not null;default:'initial';index"`
	DesiredReturnDate     *time.Time       `json:"desired_return_date,omitempty"`
	EstimatedLaborMinutes int              `json:"estimated_labor_minutes" gorm:"not null;default:0"`
	PreliminaryQuote      decimal.Decimal  `json:"preliminary_quote"  gorm:"type:decimal(10,2);not null;default:0"`
	ClientDecision        ClientDecision   `json:"client_decision"    gorm:"type:varchar(32);not null"`
	MaxPrice              *decimal.Decimal `json:"max_price,omitempty" gorm:"type:decimal(10,2)"`
	DetailedQuoteFee      decimal.Decimal  `json:"detailed_quote_fee" gorm:"type:decimal(10,2);not null;default:0"`
	FinalQuote            *decimal.Decimal `json:"final_quote,omitempty" gorm:"type:decimal(10,2)"`
	CreatedAt             time.Time        `json:"created_at"`
	UpdatedAt             time.Time        `json:"updated_at"`

	Client  Client  `json:"client,omitempty"  gorm:"foreignKey:ClientID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
	Vehicle Vehicle `json:"vehicle,omitempty" gorm:"foreignKey:VehicleID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
}

// TableName returns the database table name for Repair.
func (Repair) TableName() string { return "repairs" }

// ChecklistItem is a catalog entry of the diagnostic checklist. The catalog is
// admin-managed configuration: read-only to the intake flow, which loads a
// snapshot filtered by vehicle-type applicability.
type ChecklistItem struct {
	ID                    string          `json:"id"             gorm:"type:char(36);primaryKey"`
	Category              string          `json:"category"       gorm:"type:varchar(128);not null;index:idx_items_cat_order,priority:1"`
	ItemName              string          `json:"item_name"      gorm:"type:varchar(255);not null"`
	EstimatedLaborMinutes int             `json:"estimated_labor_minutes" gorm:"not null;default:0;check:estimated_labor_minutes >= 0"`
	EstimatedPartsCost    decimal.Decimal `json:"estimated_parts_cost"    gorm:"type:decimal(10,2);not null;default:0"`
	OrderIndex            int             `json:"order_index"    gorm:"not null;default:0;index:idx_items_cat_order,priority:2"`
	VehicleType           VehicleType     `json:"vehicle_type"   gorm:"type:varchar(16);not null;default:'both';check:vehicle_type IN ('bike','scooter','both')"`
	TutorialVideoURL      *string         `json:"tutorial_video_url,omitempty" gorm:"type:varchar(512)"`
}

// TableName returns the database table name for ChecklistItem.
func (ChecklistItem) TableName() string { return "checklist_items" }

// AppliesTo reports whether the item is part of the checklist for the given
// vehicle type ("both" items apply to every type).
func (i ChecklistItem) AppliesTo(t VehicleType) bool {
	return i.VehicleType == VehicleBoth || i.VehicleType == t
}

// ChecklistResponse records the verdict given to one catalog item during one
// intake. Exactly one row per answered item per repair. TechnicianNotes is the
// free-text annotation the technician attaches to "ng" responses later,
// mutable until the repair is closed.
type ChecklistResponse struct {
	ID              string           `json:"id"                gorm:"type:char(36);primaryKey"`
	RepairID        string           `json:"repair_id"         gorm:"type:char(36);not null;uniqueIndex:ux_response_repair_item,priority:1"`
	ChecklistItemID string           `json:"checklist_item_id" gorm:"type:char(36);not null;uniqueIndex:ux_response_repair_item,priority:2"`
	Status          ChecklistVerdict `json:"status"            gorm:"type:varchar(8);not null;check:status IN ('ok','ng')"`
	TechnicianNotes *string          `json:"technician_notes,omitempty" gorm:"type:text"`

	Repair        Repair        `json:"-" gorm:"foreignKey:RepairID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	ChecklistItem ChecklistItem `json:"checklist_item,omitempty" gorm:"foreignKey:ChecklistItemID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for ChecklistResponse.
func (ChecklistResponse) TableName() string { return "repair_checklist" }

// RepairTemplate is an admin-managed preset for common jobs (name, expected
// duration, applicability). Managed through the admin endpoints; not consulted
// by the quote engine.
type RepairTemplate struct {
	ID               string      `json:"id"          gorm:"type:char(36);primaryKey"`
	Name             string      `json:"name"        gorm:"type:varchar(255);not null"`
	Description      string      `json:"description" gorm:"type:text"`
	EstimatedMinutes int         `json:"estimated_minutes" gorm:"not null;default:0"`
	VehicleType      VehicleType `json:"vehicle_type" gorm:"type:varchar(16);not null;default:'both'"`
	IsActive         bool        `json:"is_active"   gorm:"not null;default:true"`
	CreatedAt        time.Time   `json:"created_at"`
	UpdatedAt        time.Time   `json:"updated_at"`
}

// TableName returns the database table name for RepairTemplate.
func (RepairTemplate) TableName() string { return "repair_templates" }

// Setting is the single-row shop configuration table. HourlyRate feeds the
// quote engine (seeded to 60, editable by the admin).
type Setting struct {
	ID         string          `json:"id"          gorm:"type:char(36);primaryKey"`
	HourlyRate decimal.Decimal `json:"hourly_rate" gorm:"type:decimal(10,2);not null;default:60"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// TableName returns the database table name for Setting.
func (Setting) TableName() string { return "admin_settings" }

// User is a staff account (vendor, technician and admin all share the same
// login). Passwords are stored as bcrypt hashes and never serialized.
type User struct {
	ID           string    `json:"id"    gorm:"type:char(36);primaryKey"`
	Email        string    `json:"email" gorm:"type:varchar(255);not null;uniqueIndex:ux_users_email"`
	PasswordHash string    `json:"-"     gorm:"type:varchar(128);not null"`
	Name         string    `json:"name"  gorm:"type:varchar(255)"`
	CreatedAt    time.Time `json:"created_at"`
}

// TableName returns the database table name for User.
func (User) TableName() string { return "users" }
