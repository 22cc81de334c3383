package entity

import "time"

// User usuario de la API (login propio de la aplicación, independiente del SII).
type User struct {
	ID           string
	Email        string
	PasswordHash string
	Name         string
	Status       string // active, suspended
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
