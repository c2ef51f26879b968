// Package permission implements the access-control calculus over
// permission literals.
//
// A permission literal is the serialized access-control list attached to
// a resource or value:
//
//	"CR knora-admin:Creator|V knora-admin:KnownUser"
//
// Each entry pairs a permission code with a principal. Codes form a total
// order by granted power. Object-access codes:
//
//	RV (restricted view) < V (view) < M (modify) < D (delete) < CR (change rights)
//
// Administrative codes form a separate, parallel order:
//
//	PM (project member) < PA (project admin) < SA (system admin)
//
// The calculus selects, among the entries applicable to a requesting
// principal, the one with the highest code. No applicable entry means no
// access; an absent or unparseable literal fails closed (creator and
// admins only).
//
// Serialization is canonical - entries sorted by descending code, ties by
// principal token - so parse→format→parse round-trips byte-for-byte.
package permission
