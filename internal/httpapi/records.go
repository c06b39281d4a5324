package httpapi

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/palletepro/palletepro/internal/records"
	"github.com/palletepro/palletepro/internal/session"
)

// list adapts a records list method to a handler.
func list[T any](fn func(context.Context, session.User) ([]T, error)) handlerFunc {
	return func(r *http.Request) Response {
		u, err := currentUser(r)
		if err != nil {
			return Error(err)
		}
		rows, err := fn(r.Context(), u)
		if err != nil {
			return Error(err)
		}
		return JSONWithMeta(rows, map[string]any{"count": len(rows)})
	}
}

// create adapts a records create method to a handler.
func create[In any, Out any](fn func(context.Context, session.User, In) (Out, error)) handlerFunc {
	return func(r *http.Request) Response {
		u, err := currentUser(r)
		if err != nil {
			return Error(err)
		}
		if err := requireJSON(r); err != nil {
			return Error(err)
		}
		var in In
		if err := decodeJSON(r, &in); err != nil {
			return Error(err)
		}
		out, err := fn(r.Context(), u, in)
		if err != nil {
			return Error(err)
		}
		return Created(out)
	}
}

func (a *API) deleteRecord(table records.Table) handlerFunc {
	return func(r *http.Request) Response {
		u, err := currentUser(r)
		if err != nil {
			return Error(err)
		}
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			return Error(errors.Join(records.ErrRecordNotFound, err))
		}
		if err := a.records.Delete(r.Context(), u, table, id); err != nil {
			return Error(err)
		}
		return Empty()
	}
}
