package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/reservation-app/models"
	"github.com/yeremiapane/reservation-app/utils"
	"gorm.io/gorm"
)

// MaxTxAttempts bounds how often a booking transaction is retried after a
// serialization failure or deadlock.
const MaxTxAttempts = 3

var ErrRestaurantNotFound = errors.New("Restaurant not found.")

// LockRestaurant takes the per-restaurant booking lock inside tx by bumping
// its booking version. Concurrent bookings for the same restaurant queue on
// this row until tx ends.
func LockRestaurant(tx *gorm.DB, restaurantID uint) error {
	res := tx.Model(&models.Restaurant{}).
		Where("id = ?", restaurantID).
		UpdateColumn("booking_version", gorm.Expr("booking_version + ?", 1))
	if res.Error != nil {
		return fmt.Errorf("failed to lock restaurant %d: %w", restaurantID, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrRestaurantNotFound
	}
	return nil
}

// WithBookingTx runs fn in a transaction that holds the booking lock of the
// restaurant. PostgreSQL runs it SERIALIZABLE. Retryable failures are
// retried up to MaxTxAttempts times.
func WithBookingTx(ctx context.Context, db *gorm.DB, restaurantID uint, fn func(tx *gorm.DB) error) error {
	var opts []*sql.TxOptions
	if db.Dialector.Name() == "postgres" {
		opts = append(opts, &sql.TxOptions{Isolation: sql.LevelSerializable})
	}

	var err error
	for attempt := 1; attempt <= MaxTxAttempts; attempt++ {
		err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := LockRestaurant(tx, restaurantID); err != nil {
				return err
			}
			return fn(tx)
		}, opts...)
		if err == nil || !IsRetryable(err) {
			return err
		}

		utils.InfoLogger.WithFields(logrus.Fields{
			"restaurant_id": restaurantID,
			"attempt":       attempt,
		}).Warnf("Retrying booking transaction: %v", err)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt) * 25 * time.Millisecond):
		}
	}
	return fmt.Errorf("booking transaction failed after %d attempts: %w", MaxTxAttempts, err)
}

// IsRetryable reports whether err is a transient concurrency failure from
// PostgreSQL, MySQL or SQLite.
func IsRetryable(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "40001" || pgErr.Code == "40P01"
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == 1213 || myErr.Number == 1205
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.Code == sqlite3.ErrBusy || liteErr.Code == sqlite3.ErrLocked
	}
	return false
}
