// Package api serves stored projects over HTTP.
//
// Routes live under /api: health, the operation catalogue, templates, project
// CRUD, applying an operation, planning and rendering. When a token is
// configured every route except /api/health requires
// "Authorization: Bearer <token>". Errors are JSON objects carrying a message
// and a stable code derived from the error kind.
package api
