package models

import "time"

const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusRejected  = "rejected"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

// Statuses lists every reservation status in lifecycle order.
var Statuses = []string{StatusPending, StatusConfirmed, StatusRejected, StatusCompleted, StatusCancelled}

// History actions.
const (
	ActionCreated   = "created"
	ActionModified  = "modified"
	ActionCancelled = "cancelled"
)

// StatusAction is the history action recorded when an admin sets a status.
func StatusAction(status string) string {
	return "status:" + status
}

type Reservation struct {
	ID           uint                 `gorm:"primaryKey" json:"id"`
	CustomerID   uint                 `gorm:"not null;index" json:"customer_id"`
	Customer     *Customer            `gorm:"foreignKey:CustomerID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"customer,omitempty"`
	RestaurantID uint                 `gorm:"not null;index:idx_reservation_slot" json:"restaurant_id"`
	Restaurant   *Restaurant          `gorm:"foreignKey:RestaurantID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"restaurant,omitempty"`
	TableID      *uint                `gorm:"index" json:"table_id"`
	Table        *Table               `gorm:"foreignKey:TableID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"table,omitempty"`
	Date         string               `gorm:"column:reservation_date;type:varchar(10);not null;index:idx_reservation_slot" json:"date"`
	Time         string               `gorm:"column:reservation_time;type:varchar(5);not null" json:"time"`
	Guests       int                  `gorm:"not null;check:guests > 0" json:"guests"`
	Status       string               `gorm:"type:varchar(20);not null;default:'pending';index;check:status IN ('pending','confirmed','rejected','completed','cancelled')" json:"status"`
	CreatedAt    time.Time            `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time            `gorm:"not null" json:"updated_at"`
	History      []ReservationHistory `gorm:"foreignKey:ReservationID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"history,omitempty"`
}

// Active reports whether the reservation still holds its table.
func (r *Reservation) Active() bool {
	return r.Status == StatusPending || r.Status == StatusConfirmed
}

// ReservationHistory is an append-only audit entry.
type ReservationHistory struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	ReservationID    uint      `gorm:"not null;index" json:"reservation_id"`
	Action           string    `gorm:"type:varchar(50);not null" json:"action"`
	ActionByAdmin    *uint     `gorm:"index" json:"action_by_admin,omitempty"`
	Admin            *Admin    `gorm:"foreignKey:ActionByAdmin;references:ID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"-"`
	ActionByCustomer *uint     `gorm:"index" json:"action_by_customer,omitempty"`
	Customer         *Customer `gorm:"foreignKey:ActionByCustomer;references:ID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"-"`
	ActionTime       time.Time `gorm:"not null;autoCreateTime" json:"action_time"`
	Note             string    `gorm:"type:text" json:"note"`
}

// ValidStatus reports whether s is a known reservation status.
func ValidStatus(s string) bool {
	for _, v := range Statuses {
		if v == s {
			return true
		}
	}
	return false
}

var transitions = map[string][]string{
	StatusPending:   {StatusConfirmed, StatusRejected, StatusCancelled},
	StatusConfirmed: {StatusCompleted, StatusCancelled},
}

// CanTransition reports whether a reservation may move from one status to
// another. Terminal statuses have no way out.
func CanTransition(from, to string) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
