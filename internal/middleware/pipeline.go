package middleware

import (
	"net/http"

	"github.com/ayush/bloglist/internal/apperror"
)

// Step inspects a request and either returns the request to continue with
// (possibly carrying a new context) or an error that ends the chain.
type Step func(r *http.Request) (*http.Request, error)

// Pipeline runs steps in order before next. The first failing step
// short-circuits: its error is translated and written, and neither the
// remaining steps nor next are called.
func Pipeline(steps ...Step) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, step := range steps {
				out, err := step(r)
				if err != nil {
					apperror.Write(w, r, err)
					return
				}
				r = out
			}
			next.ServeHTTP(w, r)
		})
	}
}
