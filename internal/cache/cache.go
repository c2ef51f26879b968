// Package cache provides the advisory read-through cache of computed
// effective permissions and of principal membership contexts.
//
// The cache is strictly an accelerator: a miss or eviction never changes
// a computed result, only its latency. Entries must be invalidated
// whenever the underlying permission literal or membership set changes;
// the mutation paths call InvalidateEntity and InvalidateUser for that.
package cache

import (
	"sync"

	"github.com/arkival/trellis/internal/permission"
)

// Decision is a memoized calculus result for one (entity, principal)
// pair.
type Decision struct {
	Code    permission.Code
	Granted bool
}

type decisionKey struct {
	entity string
	user   string
}

// Permissions caches effective-permission decisions. Safe for concurrent
// use.
type Permissions struct {
	mu         sync.RWMutex
	decisions  map[decisionKey]Decision
	principals map[string]permission.Principal
}

// NewPermissions creates an empty cache.
func NewPermissions() *Permissions {
	return &Permissions{
		decisions:  map[decisionKey]Decision{},
		principals: map[string]permission.Principal{},
	}
}

// Lookup returns the cached decision for the pair, if present.
func (c *Permissions) Lookup(entity, user string) (Decision, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	d, ok := c.decisions[decisionKey{entity: entity, user: user}]
	return d, ok
}

// Store memoizes a decision.
func (c *Permissions) Store(entity, user string, d Decision) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.decisions[decisionKey{entity: entity, user: user}] = d
}

// Principal returns the cached membership context for a user.
func (c *Permissions) Principal(user string) (permission.Principal, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.principals[user]
	return p, ok
}

// StorePrincipal memoizes a membership context.
func (c *Permissions) StorePrincipal(user string, p permission.Principal) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.principals[user] = p
}

// InvalidateEntity drops every decision about the entity, called when
// its permission literal changes.
func (c *Permissions) InvalidateEntity(entity string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.decisions {
		if k.entity == entity {
			delete(c.decisions, k)
		}
	}
}

// InvalidateUser drops the user's membership context and every decision
// involving the user, called when memberships change.
func (c *Permissions) InvalidateUser(user string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.principals, user)
	for k := range c.decisions {
		if k.user == user {
			delete(c.decisions, k)
		}
	}
}
