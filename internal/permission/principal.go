package permission

// ProjectRole is a principal's standing in one project.
type ProjectRole struct {
	// Admin marks a project administrator, who bypasses literals on
	// entities owned by that project.
	Admin bool
}

// Principal is the requesting identity's membership context, constructed
// once per request and shared read-only by every calculus evaluation of
// that request.
type Principal struct {
	// UserIRI identifies the user; empty for anonymous requests.
	UserIRI string

	// Authenticated reports whether the request carries any identity.
	Authenticated bool

	// Groups is the set of group/role IRIs the user is directly in.
	Groups map[string]bool

	// Projects maps project IRI to the user's role there.
	Projects map[string]ProjectRole

	// SystemAdmin bypasses every literal.
	SystemAdmin bool
}

// Anonymous is the principal of an unauthenticated request.
func Anonymous() Principal {
	return Principal{}
}

// InGroup reports direct membership in the given group IRI.
func (p Principal) InGroup(group string) bool {
	return p.Groups[group]
}

// MemberOf reports membership in the given project.
func (p Principal) MemberOf(project string) bool {
	_, ok := p.Projects[project]
	return project != "" && ok
}

// AdminOf reports project-administrator standing in the given project.
func (p Principal) AdminOf(project string) bool {
	role, ok := p.Projects[project]
	return project != "" && ok && role.Admin
}

// EntityMeta is the ownership metadata the calculus needs about the
// guarded entity.
type EntityMeta struct {
	// IRI names the entity, for error context.
	IRI string

	// Creator is the IRI of the user who created the entity.
	Creator string

	// Project is the IRI of the entity's owning project.
	Project string
}
