package version

import (
	"context"
	"fmt"

	"github.com/arkival/trellis/internal/cache"
	"github.com/arkival/trellis/internal/permission"
)

// ResourceInfo is the containing resource's metadata and literal, as the
// backing store reports them.
type ResourceInfo struct {
	Meta        permission.EntityMeta
	Permissions permission.Literal
}

// Backing is the durable store the guard mutates. Implementations report
// store failures with the store package's error kinds; the guard performs
// no retries.
type Backing interface {
	// Resource loads the containing resource's info.
	Resource(ctx context.Context, iri string) (ResourceInfo, error)

	// Head returns the head of the lineage containing the given version
	// IRI. The version need not be the head itself.
	Head(ctx context.Context, valueIRI string) (Record, error)

	// AppendVersion durably records newHead and transitions supersedes
	// (when non-empty) to Superseded, atomically.
	AppendVersion(ctx context.Context, newHead Record, supersedes string) error

	// MarkDeleted transitions the head to Deleted with the optional
	// comment. Data is never physically removed.
	MarkDeleted(ctx context.Context, valueIRI, comment string) error

	// SetPermissions replaces the head's permission literal.
	SetPermissions(ctx context.Context, valueIRI, literal string) error
}

// Guard serializes mutations per resource and enforces the lineage state
// machine. Safe for concurrent use.
type Guard struct {
	store     Backing
	locks     *KeyedMutex
	mint      Minter
	decisions *cache.Permissions
}

// NewGuard creates a Guard over the backing store. minter may be nil, in
// which case UUIDMinter is used.
func NewGuard(store Backing, minter Minter) *Guard {
	if minter == nil {
		minter = UUIDMinter{}
	}
	return &Guard{store: store, locks: NewKeyedMutex(), mint: minter}
}

// WithCache attaches an advisory decision cache. The guard consults it
// before running the calculus and drops an entity's decisions when its
// literal changes. Returns g.
func (g *Guard) WithCache(c *cache.Permissions) *Guard {
	g.decisions = c
	return g
}

// CreateRequest creates the first version of a new value lineage.
type CreateRequest struct {
	Resource    string
	Property    string
	Type        string
	Permissions permission.Literal
	Principal   permission.Principal
}

// Created reports the outcome of a create or update: only the new IRI
// and type, per the mutation surface contract.
type Created struct {
	IRI  string
	Type string
}

// CreateValue creates a value on a resource. Requires Modify on the
// containing resource.
func (g *Guard) CreateValue(ctx context.Context, req CreateRequest) (Created, error) {
	release, err := g.locks.Lock(ctx, req.Resource)
	if err != nil {
		return Created{}, err
	}
	defer release()

	res, err := g.store.Resource(ctx, req.Resource)
	if err != nil {
		return Created{}, fmt.Errorf("create value: %w", err)
	}
	if err := g.check(res.Permissions, res.Meta, req.Principal, permission.Modify); err != nil {
		return Created{}, err
	}

	rec := Record{
		IRI:         g.mint.NewValueIRI(req.Resource),
		Resource:    req.Resource,
		Property:    req.Property,
		Type:        req.Type,
		State:       Active,
		Permissions: req.Permissions.Format(),
		Creator:     req.Principal.UserIRI,
	}
	if err := g.store.AppendVersion(ctx, rec, ""); err != nil {
		return Created{}, fmt.Errorf("create value: %w", err)
	}
	return Created{IRI: rec.IRI, Type: rec.Type}, nil
}

// UpdateRequest updates the value lineage whose head is Value.
type UpdateRequest struct {
	Resource  string
	Value     string
	Type      string
	Principal permission.Principal
}

// UpdateValue supersedes the lineage head with a new version carrying a
// predecessor link. Requires Modify on both the containing resource and
// the existing value. Naming a non-head version fails with a
// StaleVersionError.
func (g *Guard) UpdateValue(ctx context.Context, req UpdateRequest) (Created, error) {
	release, err := g.locks.Lock(ctx, req.Resource)
	if err != nil {
		return Created{}, err
	}
	defer release()

	head, res, err := g.editableHead(ctx, req.Resource, req.Value)
	if err != nil {
		return Created{}, err
	}
	if err := g.requireOn(res, head, req.Principal, permission.Modify); err != nil {
		return Created{}, err
	}

	next := Record{
		IRI:         g.mint.NewValueIRI(req.Resource),
		Resource:    req.Resource,
		Property:    head.Property,
		Type:        req.Type,
		Previous:    head.IRI,
		State:       Active,
		Permissions: head.Permissions,
		Creator:     req.Principal.UserIRI,
	}
	if next.Type == "" {
		next.Type = head.Type
	}
	if err := g.store.AppendVersion(ctx, next, head.IRI); err != nil {
		return Created{}, fmt.Errorf("update value: %w", err)
	}
	return Created{IRI: next.IRI, Type: next.Type}, nil
}

// DeleteRequest soft-deletes the lineage whose head is Value.
type DeleteRequest struct {
	Resource  string
	Value     string
	Comment   string
	Principal permission.Principal
}

// DeleteValue transitions the lineage head to Deleted, recording the
// optional free-text reason. Requires Delete on the value. Deleted is
// terminal: no further mutation of the lineage is accepted.
func (g *Guard) DeleteValue(ctx context.Context, req DeleteRequest) error {
	release, err := g.locks.Lock(ctx, req.Resource)
	if err != nil {
		return err
	}
	defer release()

	head, res, err := g.editableHead(ctx, req.Resource, req.Value)
	if err != nil {
		return err
	}
	if err := g.requireOn(res, head, req.Principal, permission.Delete); err != nil {
		return err
	}

	if err := g.store.MarkDeleted(ctx, head.IRI, req.Comment); err != nil {
		return fmt.Errorf("delete value: %w", err)
	}
	return nil
}

// PermissionsRequest replaces the literal on the lineage head.
type PermissionsRequest struct {
	Resource    string
	Value       string
	Permissions permission.Literal
	Principal   permission.Principal
}

// UpdatePermissions changes the head's permission literal. Requires
// ChangeRights on the value itself.
func (g *Guard) UpdatePermissions(ctx context.Context, req PermissionsRequest) error {
	release, err := g.locks.Lock(ctx, req.Resource)
	if err != nil {
		return err
	}
	defer release()

	head, res, err := g.editableHead(ctx, req.Resource, req.Value)
	if err != nil {
		return err
	}
	if err := g.check(g.valueLiteral(head), g.valueMeta(head, res), req.Principal, permission.ChangeRights); err != nil {
		return err
	}

	if err := g.store.SetPermissions(ctx, head.IRI, req.Permissions.Format()); err != nil {
		return fmt.Errorf("update permissions: %w", err)
	}
	if g.decisions != nil {
		g.decisions.InvalidateEntity(head.IRI)
	}
	return nil
}

// editableHead loads the resource and the lineage head, rejecting stale
// references and deleted lineages.
func (g *Guard) editableHead(ctx context.Context, resourceIRI, valueIRI string) (Record, ResourceInfo, error) {
	res, err := g.store.Resource(ctx, resourceIRI)
	if err != nil {
		return Record{}, ResourceInfo{}, fmt.Errorf("load resource: %w", err)
	}
	head, err := g.store.Head(ctx, valueIRI)
	if err != nil {
		return Record{}, ResourceInfo{}, fmt.Errorf("load lineage head: %w", err)
	}
	if head.State == Deleted {
		return Record{}, ResourceInfo{}, &StaleVersionError{Referenced: valueIRI}
	}
	if head.IRI != valueIRI {
		return Record{}, ResourceInfo{}, &StaleVersionError{Referenced: valueIRI, Head: head.IRI}
	}
	return head, res, nil
}

// requireOn checks the required code on both the containing resource and
// the value itself.
func (g *Guard) requireOn(res ResourceInfo, head Record, p permission.Principal, required permission.Code) error {
	if err := g.check(res.Permissions, res.Meta, p, required); err != nil {
		return err
	}
	return g.check(g.valueLiteral(head), g.valueMeta(head, res), p, required)
}

// check is CheckObjectAccess with the decision memoized in the attached
// cache, keyed by entity and user.
func (g *Guard) check(lit permission.Literal, meta permission.EntityMeta, p permission.Principal, required permission.Code) error {
	granted, ok := g.effective(lit, meta, p)
	if ok && granted >= required {
		return nil
	}
	return &permission.DeniedError{
		Entity:     meta.IRI,
		Required:   required,
		Granted:    granted,
		HasGranted: ok,
		Kind:       permission.ObjectAccess,
	}
}

func (g *Guard) effective(lit permission.Literal, meta permission.EntityMeta, p permission.Principal) (permission.Code, bool) {
	if g.decisions == nil || p.UserIRI == "" {
		return permission.Effective(lit, meta, p)
	}
	if d, ok := g.decisions.Lookup(meta.IRI, p.UserIRI); ok {
		return d.Code, d.Granted
	}
	code, ok := permission.Effective(lit, meta, p)
	g.decisions.Store(meta.IRI, p.UserIRI, cache.Decision{Code: code, Granted: ok})
	return code, ok
}

func (g *Guard) valueLiteral(head Record) permission.Literal {
	lit, err := permission.Parse(permission.ObjectAccess, head.Permissions)
	if err != nil {
		// Absent or unparseable literals fail closed.
		return permission.FallbackLiteral(permission.ObjectAccess)
	}
	return lit
}

func (g *Guard) valueMeta(head Record, res ResourceInfo) permission.EntityMeta {
	return permission.EntityMeta{
		IRI:     head.IRI,
		Creator: head.Creator,
		Project: res.Meta.Project,
	}
}
