package database

import (
	"errors"
	"fmt"

	"github.com/yeremiapane/reservation-app/models"
	"github.com/yeremiapane/reservation-app/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type sampleRestaurant struct {
	name, location, cuisine string
	rating                  float64
	description             string
	opens, closes           string
	tables                  []sampleTable
}

type sampleTable struct {
	number   string
	capacity int
}

func tables(prefix string, capacities ...int) []sampleTable {
	out := make([]sampleTable, len(capacities))
	for i, c := range capacities {
		out[i] = sampleTable{number: fmt.Sprintf("%s%d", prefix, i+1), capacity: c}
	}
	return out
}

var sampleRestaurants = []sampleRestaurant{
	{"Pizza Palace", "New York, NY", "Italian", 4.5, "Authentic Italian pizza.", "11:00", "22:00", tables("T", 2, 4, 6)},
	{"Sushi World", "Los Angeles, CA", "Japanese", 4.7, "Fresh sushi and sashimi.", "12:00", "23:00", tables("T", 2, 4, 6)},
	{"The Golden Spoon", "Hanoi, Vietnam", "Vietnamese", 4.8, "Modern Vietnamese cuisine with a classic touch.", "10:00", "22:00", tables("V", 2, 2, 4, 6, 8)},
	{"Le Parisien Bistro", "Paris, France", "French", 4.6, "A cozy corner of Paris in your city.", "12:00", "23:00", tables("P", 2, 2, 4, 4, 6)},
	{"Taco Temple", "Mexico City, Mexico", "Mexican", 4.9, "The most authentic tacos you will ever taste.", "11:30", "21:30", tables("M", 4, 4, 6, 6, 10)},
	{"Bangkok Spice", "Bangkok, Thailand", "Thai", 4.7, "Experience the true flavors of Thailand.", "10:30", "22:30", tables("B", 2, 4, 4, 5, 7)},
	{"Burger Hub", "Chicago, IL", "American", 4.4, "Gourmet burgers and craft beers.", "11:00", "23:00", tables("H", 2, 3, 4, 6, 6)},
}

// SeedRestaurants inserts the sample restaurants and their tables unless
// restaurants already exist. It returns how many were created.
func SeedRestaurants(db *gorm.DB) (int, error) {
	var count int64
	if err := db.Model(&models.Restaurant{}).Count(&count).Error; err != nil {
		return 0, err
	}
	if count > 0 {
		return 0, nil
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		for _, s := range sampleRestaurants {
			opens, closes := s.opens, s.closes
			r := models.Restaurant{
				Name:        s.name,
				Location:    s.location,
				Cuisine:     s.cuisine,
				Rating:      s.rating,
				Description: s.description,
				OpeningTime: &opens,
				ClosingTime: &closes,
			}
			for _, t := range s.tables {
				r.Tables = append(r.Tables, models.Table{TableNumber: t.number, Capacity: t.capacity})
			}
			if err := tx.Create(&r).Error; err != nil {
				return fmt.Errorf("failed to seed %s: %w", s.name, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	utils.InfoLogger.Infof("Seeded %d restaurants", len(sampleRestaurants))
	return len(sampleRestaurants), nil
}

// CreateAdmin stores a new administrator with a bcrypt password hash.
func CreateAdmin(db *gorm.DB, name, password, fullName, email string) (*models.Admin, error) {
	if name == "" || password == "" || email == "" {
		return nil, errors.New("name, password and email are required")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	admin := models.Admin{
		Name:         name,
		PasswordHash: string(hashed),
		FullName:     fullName,
		Email:        email,
	}
	if err := db.Create(&admin).Error; err != nil {
		return nil, fmt.Errorf("failed to create admin %q: %w", name, err)
	}
	return &admin, nil
}

// EnsureAdmin creates the admin when no administrator exists yet.
func EnsureAdmin(db *gorm.DB, name, password, email string) (bool, error) {
	var count int64
	if err := db.Model(&models.Admin{}).Count(&count).Error; err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}
	if _, err := CreateAdmin(db, name, password, "Administrator", email); err != nil {
		return false, err
	}
	return true, nil
}
