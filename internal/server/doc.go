// Package server exposes a pinelocal DB over the HTTP API of the managed
// service it stands in for.
//
// Routes:
//
//	POST   /indexes                            create an index (201)
//	GET    /indexes                            list indexes
//	GET    /indexes/:name                      describe an index
//	DELETE /indexes/:name                      delete an index
//	GET    /indexes/:name/describe_index_stats vector count and dimension
//	POST   /indexes/:name/vectors/upsert       upsert vectors
//	POST   /indexes/:name/query                top-K similarity query
//	GET    /healthz                            liveness, no auth
//	GET    /metrics                            Prometheus exposition, no auth
//
// Every /indexes route requires "Authorization: Bearer <key>" (a bare key is
// accepted too). Errors are returned as {"error": "<message>"}.
package server
