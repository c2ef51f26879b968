package permission

import "github.com/arkival/trellis/internal/rdf"

// Effective computes the principal's effective permission on an entity.
//
// System administrators, and project administrators acting on an entity
// in their own project, bypass the literal and receive the maximum code
// of the literal's kind. Otherwise every applicable entry is considered
// and the highest code wins. The second return is false when no entry
// applies: no access.
//
// Entry applicability:
//
//	knora-admin:UnknownUser  any request, authenticated or not
//	knora-admin:KnownUser    any authenticated request
//	knora-admin:ProjectMember  member of the entity's owning project
//	knora-admin:Creator      the entity's creator
//	anything else            direct membership in that group/role IRI
func Effective(lit Literal, meta EntityMeta, p Principal) (Code, bool) {
	if p.SystemAdmin || p.AdminOf(meta.Project) {
		return MaxCode(lit.Kind), true
	}

	var best Code
	found := false
	for _, e := range lit.Entries {
		if !applies(e.Principal, meta, p) {
			continue
		}
		if !found || e.Code > best {
			best = e.Code
			found = true
		}
	}
	return best, found
}

func applies(principal string, meta EntityMeta, p Principal) bool {
	switch principal {
	case rdf.UnknownUser:
		return true
	case rdf.KnownUser:
		return p.Authenticated
	case rdf.ProjectMember:
		return p.MemberOf(meta.Project)
	case rdf.Creator:
		return p.Authenticated && p.UserIRI != "" && p.UserIRI == meta.Creator
	default:
		return p.InGroup(principal)
	}
}

// CheckObjectAccess verifies the principal holds at least required on the
// entity, returning a DeniedError otherwise. Used by the mutation guard:
// creating a value requires Modify on the containing resource, changing a
// value's literal requires ChangeRights on the value itself, deleting a
// value requires Delete.
func CheckObjectAccess(lit Literal, meta EntityMeta, p Principal, required Code) error {
	granted, ok := Effective(lit, meta, p)
	if ok && granted >= required {
		return nil
	}
	return &DeniedError{
		Entity:     meta.IRI,
		Required:   required,
		Granted:    granted,
		HasGranted: ok,
		Kind:       ObjectAccess,
	}
}

// CheckAdministrative verifies project-admin (or stronger) standing for
// administrative and default-object-access permission management. The
// administrative enumeration is evaluated by the same calculus.
func CheckAdministrative(lit Literal, meta EntityMeta, p Principal, required Code) error {
	granted, ok := Effective(lit, meta, p)
	if ok && granted >= required {
		return nil
	}
	return &DeniedError{
		Entity:     meta.IRI,
		Required:   required,
		Granted:    granted,
		HasGranted: ok,
		Kind:       Administrative,
	}
}

// FallbackLiteral is the fail-closed literal substituted when an entity
// carries no parseable literal: visible only to its creator (admins
// bypass literals entirely). Never an error and never publicly visible.
func FallbackLiteral(kind Kind) Literal {
	return Literal{
		Kind:    kind,
		Entries: []Entry{{Code: MaxCode(kind), Principal: rdf.Creator}},
	}
}
