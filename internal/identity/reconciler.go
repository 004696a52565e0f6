// Package identity mapea claims externos del IdP a registros locales.
package identity

import (
	"context"
	"errors"
	"strings"

	"github.com/dropDatabas3/hellogate/internal/store"
	"github.com/dropDatabas3/hellogate/internal/workos"
)

// ErrMissingEmail: el IdP no devolvió email. Para este flujo el email es
// obligatorio; su ausencia es una misconfiguración del provider, no una
// condición transitoria (no se reintenta).
var ErrMissingEmail = errors.New("identity: no email returned from provider")

// Reconciler hace el upsert-then-diff de identidades.
// Idempotente: repetir la misma identidad converge a un único LocalUser y
// emite exactamente una creación.
type Reconciler struct {
	Store store.UserStore
}

func NewReconciler(s store.UserStore) *Reconciler {
	return &Reconciler{Store: s}
}

// Reconcile resuelve la identidad externa a un usuario local.
// key = email. Solo los campos de nombre son mutables, y solo se parchean
// los que realmente difieren.
func (r *Reconciler) Reconcile(ctx context.Context, id *workos.Identity) (store.User, bool, error) {
	email := strings.TrimSpace(id.Email)
	if email == "" {
		return store.User{}, false, ErrMissingEmail
	}

	u, created, err := r.Store.FindOrCreate(ctx, store.User{
		Key:       email,
		Email:     email,
		FirstName: id.FirstName,
		LastName:  id.LastName,
	})
	if err != nil {
		return store.User{}, false, err
	}
	if created {
		return u, true, nil
	}

	// mantener nombres frescos: diff campo a campo
	fields := map[string]string{}
	if u.FirstName != id.FirstName {
		fields[store.FieldFirstName] = id.FirstName
	}
	if u.LastName != id.LastName {
		fields[store.FieldLastName] = id.LastName
	}
	if len(fields) == 0 {
		return u, false, nil
	}

	if err := r.Store.Update(ctx, u.Key, fields); err != nil {
		return store.User{}, false, err
	}
	if fn, ok := fields[store.FieldFirstName]; ok {
		u.FirstName = fn
	}
	if ln, ok := fields[store.FieldLastName]; ok {
		u.LastName = ln
	}
	return u, false, nil
}
