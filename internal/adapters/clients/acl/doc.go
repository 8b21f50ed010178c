// Package acl is the anti-corruption layer between the remote posts API and
// the quote domain.
//
// Remote DTOs stay unexported in this package. Transport failures and HTTP
// status codes are translated to domain errors by [MapHTTPError], and posts
// are translated to [domain.Quote] values before they leave the package:
//
//	post{id: 7, userId: 3, title: "..."}  ->  Quote{ID: "server-7", Author: "User 3", Category: "Server"}
//
// Status mapping:
//   - 404 → [domain.ErrNotFound]
//   - 400/422 → [domain.ErrValidation]
//   - 401/403/429/5xx and transport errors → [domain.ErrUnavailable]
package acl
