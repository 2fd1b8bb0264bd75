// Package availability decides which table, if any, can hold a booking.
//
// The resolver only reads. Callers hand it a Store scoped to the transaction
// that will persist the result, so the read and the write see the same state.
package availability

import (
	"context"
	"fmt"
	"sort"
	"time"
)

// DefaultWindow is how long a booking is presumed to hold its table.
const DefaultWindow = 2 * time.Hour

// Reservation statuses that occupy a table.
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
)

// Table is the slice of a restaurant table the resolver cares about.
type Table struct {
	ID           uint
	RestaurantID uint
	Capacity     int
}

// Booking is an existing reservation on a given date.
type Booking struct {
	ID      uint
	TableID uint
	Start   Clock
	Status  string
}

// Active reports whether the booking blocks its table.
func (b Booking) Active() bool {
	return b.Status == StatusPending || b.Status == StatusConfirmed
}

// Store is the read side the resolver consults.
type Store interface {
	// Tables returns every table of the restaurant.
	Tables(ctx context.Context, restaurantID uint) ([]Table, error)
	// Table returns a single table by id regardless of restaurant, or
	// found=false when it does not exist.
	Table(ctx context.Context, tableID uint) (t Table, found bool, err error)
	// Bookings returns the reservations holding a table of the restaurant on
	// date (YYYY-MM-DD).
	Bookings(ctx context.Context, restaurantID uint, date string) ([]Booking, error)
}

// Request describes the booking intent.
type Request struct {
	RestaurantID uint
	Date         string
	Time         Clock
	Guests       int
	// TableID is the table the customer picked, if any.
	TableID *uint
	// Exclude is the reservation being edited; it never conflicts with itself.
	Exclude *uint
}

// Outcome explains an unavailable result.
type Outcome string

const (
	Assigned                  Outcome = "assigned"
	CapacityInsufficient      Outcome = "capacity_insufficient"
	NoCandidateTable          Outcome = "no_candidate_table"
	RequestedTableUnavailable Outcome = "requested_table_unavailable"
)

// Result is either an assigned table or a reason why none could be assigned.
type Result struct {
	TableID uint
	Outcome Outcome
}

// OK reports whether a table was assigned.
func (r Result) OK() bool { return r.Outcome == Assigned }

func assigned(id uint) Result { return Result{TableID: id, Outcome: Assigned} }

func unavailable(o Outcome) Result { return Result{Outcome: o} }

// Resolver applies the fixed-window conflict rule.
type Resolver struct {
	Window time.Duration
}

// NewResolver returns a resolver using window, or DefaultWindow when window
// is not positive.
func NewResolver(window time.Duration) *Resolver {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Resolver{Window: window}
}

// Resolve picks a table for req. A requested table is honoured or rejected,
// never swapped for another one.
func (r *Resolver) Resolve(ctx context.Context, s Store, req Request) (Result, error) {
	bookings, err := s.Bookings(ctx, req.RestaurantID, req.Date)
	if err != nil {
		return Result{}, fmt.Errorf("failed to load bookings: %w", err)
	}
	busy := r.busyTables(bookings, req)

	if req.TableID != nil {
		t, found, err := s.Table(ctx, *req.TableID)
		if err != nil {
			return Result{}, fmt.Errorf("failed to load table %d: %w", *req.TableID, err)
		}
		if !found || t.RestaurantID != req.RestaurantID || t.Capacity < req.Guests || busy[t.ID] {
			return unavailable(RequestedTableUnavailable), nil
		}
		return assigned(t.ID), nil
	}

	tables, err := s.Tables(ctx, req.RestaurantID)
	if err != nil {
		return Result{}, fmt.Errorf("failed to load tables: %w", err)
	}
	return r.pick(tables, busy, req.Guests), nil
}

// Reresolve re-validates the table held by a reservation being edited.
// current is nil when the table was deleted since the booking was made.
// Only a table that has become too small is swapped for another one.
func (r *Resolver) Reresolve(ctx context.Context, s Store, current *uint, req Request) (Result, error) {
	if current == nil {
		req.TableID = nil
		return r.Resolve(ctx, s, req)
	}

	t, found, err := s.Table(ctx, *current)
	if err != nil {
		return Result{}, fmt.Errorf("failed to load table %d: %w", *current, err)
	}
	if !found || t.Capacity < req.Guests {
		req.TableID = nil
		res, err := r.Resolve(ctx, s, req)
		if err != nil || res.OK() || !found {
			return res, err
		}
		return unavailable(CapacityInsufficient), nil
	}

	bookings, err := s.Bookings(ctx, req.RestaurantID, req.Date)
	if err != nil {
		return Result{}, fmt.Errorf("failed to load bookings: %w", err)
	}
	if r.busyTables(bookings, req)[t.ID] {
		return unavailable(RequestedTableUnavailable), nil
	}
	return assigned(t.ID), nil
}

// Free lists every table of the restaurant that could take req, smallest
// first. It backs the availability probe and ignores req.TableID.
func (r *Resolver) Free(ctx context.Context, s Store, req Request) ([]Table, error) {
	bookings, err := s.Bookings(ctx, req.RestaurantID, req.Date)
	if err != nil {
		return nil, fmt.Errorf("failed to load bookings: %w", err)
	}
	tables, err := s.Tables(ctx, req.RestaurantID)
	if err != nil {
		return nil, fmt.Errorf("failed to load tables: %w", err)
	}
	return candidates(tables, r.busyTables(bookings, req), req.Guests), nil
}

// Conflicts reports whether a booking at a and one at b overlap.
func (r *Resolver) Conflicts(a, b Clock) bool {
	return WindowAt(a, r.Window).Overlaps(WindowAt(b, r.Window))
}

func (r *Resolver) busyTables(bookings []Booking, req Request) map[uint]bool {
	busy := make(map[uint]bool)
	for _, b := range bookings {
		if !b.Active() {
			continue
		}
		if req.Exclude != nil && b.ID == *req.Exclude {
			continue
		}
		if r.Conflicts(b.Start, req.Time) {
			busy[b.TableID] = true
		}
	}
	return busy
}

func (r *Resolver) pick(tables []Table, busy map[uint]bool, guests int) Result {
	c := candidates(tables, busy, guests)
	if len(c) == 0 {
		return unavailable(NoCandidateTable)
	}
	return assigned(c[0].ID)
}

// candidates orders eligible tables by capacity then id.
func candidates(tables []Table, busy map[uint]bool, guests int) []Table {
	out := make([]Table, 0, len(tables))
	for _, t := range tables {
		if t.Capacity >= guests && !busy[t.ID] {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Capacity != out[j].Capacity {
			return out[i].Capacity < out[j].Capacity
		}
		return out[i].ID < out[j].ID
	})
	return out
}
