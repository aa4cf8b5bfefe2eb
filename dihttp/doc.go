/*
Package dihttp provides HTTP middleware that creates a child [di.Container] for each request.

Example:

	package main

	import (
		"net/http"
		"reflect"

		"github.com/go-chi/chi/v5"
		"github.com/sectrean/di-engine"
		"github.com/sectrean/di-engine/dicontext"
		"github.com/sectrean/di-engine/dihttp"
	)

	func main() {
		c, err := di.NewContainer(
			di.WithType(reflect.TypeFor[*Service](), nil, di.Singleton),
			di.WithFactory(reflect.TypeFor[*RequestService](), NewRequestService, di.Hierarchical),
		)
		if err != nil {
			panic(err)
		}

		scopeMiddleware, err := dihttp.NewRequestScopeMiddleware(c)
		if err != nil {
			panic(err)
		}

		r := chi.NewRouter()
		r.Use(scopeMiddleware)
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			svc := dicontext.MustResolve[*RequestService](r.Context())
			svc.HandleRequest(w, r)
		})

		http.ListenAndServe(":8080", r)
	}
*/
package dihttp
