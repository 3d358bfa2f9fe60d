package controller

import (
	"net/http/pprof"

	"github.com/go-chi/chi/v5"
)

// PprofRouter returns a chi router with net/http/pprof handlers registered at
// the root, including the named runtime profiles. It is mounted under
// /debug/pprof in the main HTTP server.
func PprofRouter() chi.Router {
	r := chi.NewRouter()

	r.Get("/", pprof.Index)
	r.Get("/cmdline", pprof.Cmdline)
	r.Get("/profile", pprof.Profile)
	r.HandleFunc("/symbol", pprof.Symbol)
	r.Get("/trace", pprof.Trace)
	for _, name := range []string{"allocs", "block", "goroutine", "heap", "mutex", "threadcreate"} {
		r.Handle("/"+name, pprof.Handler(name))
	}

	return r
}
