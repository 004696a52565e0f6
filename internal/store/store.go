// Package store define el repositorio de usuarios locales y sus drivers.
//
// El gateway solo necesita dos operaciones: FindOrCreate (upsert por key) y
// Update (parche de campos). La serialización de escrituras concurrentes
// sobre la misma key es responsabilidad del driver (constraint de unicidad
// en pg, Add atómico en memoria).
package store

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// User es el registro de identidad persistido.
// Key es inmutable una vez creado e identifica unívocamente al usuario
// (key = email en este despliegue).
type User struct {
	ID        string
	Key       string
	Email     string
	FirstName string
	LastName  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Campos mutables aceptados por Update.
const (
	FieldFirstName = "first_name"
	FieldLastName  = "last_name"
)

var (
	// ErrNotFound: no existe un usuario con esa key.
	ErrNotFound = errors.New("store: user not found")
	// ErrUnknownField: Update recibió un campo fuera del set mutable.
	ErrUnknownField = errors.New("store: unknown field")
)

// UserStore es el contrato mínimo que consume el reconciliador.
type UserStore interface {
	// FindOrCreate busca por u.Key y si no existe lo crea con los valores
	// de u. Devuelve el registro vigente y si esta llamada lo creó.
	// Ante una carrera de creación gana uno solo; el perdedor relee.
	FindOrCreate(ctx context.Context, u User) (User, bool, error)

	// Update parchea solo los campos indicados (FieldFirstName /
	// FieldLastName). Un mapa vacío es un no-op.
	Update(ctx context.Context, key string, fields map[string]string) error

	// Close libera recursos del driver.
	Close() error
}

// Config del factory.
type Config struct {
	Driver string // "pg" | "memory"
	DSN    string
}

// New construye el driver configurado.
func New(ctx context.Context, cfg Config) (UserStore, error) {
	switch cfg.Driver {
	case "pg", "postgres":
		return NewPG(ctx, cfg.DSN)
	case "memory", "":
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("store: driver desconocido %q", cfg.Driver)
	}
}
