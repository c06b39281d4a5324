package session

import (
	"errors"
	"net/http"
	"strings"
)

// ErrorHandler writes the response for a rejected request.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

// Middleware rejects requests without a valid bearer token and stores the
// user in the request context otherwise.
func Middleware(v *Verifier, onError ErrorHandler) func(http.Handler) http.Handler {
	if onError == nil {
		onError = func(w http.ResponseWriter, _ *http.Request, _ error) {
			http.Error(w, ErrUnauthorized.Error(), http.StatusUnauthorized)
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := bearerToken(r)
			if err != nil {
				onError(w, r, err)
				return
			}
			user, err := v.Verify(token)
			if err != nil {
				onError(w, r, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

// bearerToken reads the Authorization header. EventSource clients cannot
// set headers, so an access_token query parameter is accepted as well.
func bearerToken(r *http.Request) (string, error) {
	if h := r.Header.Get("Authorization"); h != "" {
		scheme, token, ok := strings.Cut(h, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			return "", errors.Join(ErrUnauthorized, errors.New("malformed authorization header"))
		}
		return strings.TrimSpace(token), nil
	}
	if t := r.URL.Query().Get("access_token"); t != "" {
		return t, nil
	}
	return "", errors.Join(ErrUnauthorized, errors.New("missing bearer token"))
}
