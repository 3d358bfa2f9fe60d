// Package controller contains HTTP middlewares and helper handlers used by the API server.
//
// Provided middlewares:
//   - WithCORS: Adds permissive CORS headers and handles OPTIONS preflight.
//   - WithLogger: Attaches a request-scoped logger and request ID to the context, records
//     the request duration histogram and logs access info.
//   - WithRateLimit: Per-client-IP token buckets in front of the upstream API key.
//
// Provided helpers:
//   - PprofRouter: Returns a chi router exposing net/http/pprof handlers.
package controller
