// Command example serves a todo list as a hypermedia API. Browsers get HTML
// pages whose forms drive the API through HTMX; API clients negotiate HAL,
// JSON:API or Collection+JSON with the Accept header.
package main

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/pthm/hxres"
	_ "github.com/pthm/hxres/lib/format/collectionjson"
	_ "github.com/pthm/hxres/lib/format/hal"
	"github.com/pthm/hxres/lib/format/html"
	_ "github.com/pthm/hxres/lib/format/jsonapi"
)

func main() {
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	store := NewStore()
	cfg := hxres.NewConfig(hxres.WithPolicy(newPolicy()), hxres.WithLogger(logger)).
		FormatOptions(html.Name, hxres.FormatOptions{
			"title":  "Todos",
			"script": "https://unpkg.com/htmx.org@2.0.4",
			"htmx":   true,
		})

	addr := ":8080"
	logger.Info("starting server", zap.String("addr", "http://localhost"+addr))
	if err := http.ListenAndServe(addr, newMux(cfg, store)); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func newMux(cfg *hxres.Config, store *Store) *http.ServeMux {
	mux := http.NewServeMux()
	list := todoListMapper()

	mux.Handle("GET /todos", hxres.Handler(cfg, func(r *http.Request) (any, error) {
		todos := store.List()
		if status := r.URL.Query().Get("status"); status != "" {
			filtered := todos[:0]
			for _, t := range todos {
				if string(t.Status) == status {
					filtered = append(filtered, t)
				}
			}
			todos = filtered
		}
		return todos, nil
	}, hxres.Options{Mapper: list}))

	mux.Handle("GET /todos/{id}", hxres.Handler(cfg, func(r *http.Request) (any, error) {
		return store.Get(r.PathValue("id"))
	}, hxres.Options{}))

	mux.HandleFunc("POST /todos/{id}/toggle", func(w http.ResponseWriter, r *http.Request) {
		todo, err := store.Toggle(r.PathValue("id"))
		if err == nil {
			err = hxres.Render(w, r, cfg, todo, hxres.Options{})
		}
		if err != nil {
			hxres.Error(w, r, err)
		}
	})

	mux.Handle("GET /{$}", http.RedirectHandler("/todos", http.StatusFound))
	return mux
}
