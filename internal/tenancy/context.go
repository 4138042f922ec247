// Package tenancy carries the current tenant of a request and enforces it on
// every gorm statement that touches a tenant-owned table.
package tenancy

import (
	"context"
	"sync"

	"github.com/kingrain94/tenant-auth-api/internal/domain"
)

// Context holds the current tenant of one request. A fresh Context is attached
// to every request; it is never shared between requests.
// All methods are safe on a nil receiver, which behaves as "no tenant".
type Context struct {
	mu     sync.RWMutex
	tenant *domain.Tenant
}

type contextKey int

const (
	holderKey contextKey = iota
	unscopedKey
)

func New() *Context {
	return &Context{}
}

// SetCurrent binds the tenant; nil clears the binding.
func (c *Context) SetCurrent(tenant *domain.Tenant) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tenant = tenant
}

func (c *Context) Current() *domain.Tenant {
	if c == nil {
		return nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tenant
}

func (c *Context) HasCurrent() bool {
	return c.CurrentID() != ""
}

func (c *Context) CurrentID() string {
	if t := c.Current(); t != nil {
		return t.ID
	}
	return ""
}

func (c *Context) Clear() {
	c.SetCurrent(nil)
}

// WithContext attaches the holder to ctx.
func WithContext(ctx context.Context, holder *Context) context.Context {
	return context.WithValue(ctx, holderKey, holder)
}

// FromContext returns the holder attached to ctx, or nil.
func FromContext(ctx context.Context) *Context {
	if ctx == nil {
		return nil
	}
	holder, _ := ctx.Value(holderKey).(*Context)
	return holder
}

// WithTenant returns a ctx carrying a new holder already bound to tenant.
func WithTenant(ctx context.Context, tenant *domain.Tenant) context.Context {
	holder := New()
	holder.SetCurrent(tenant)
	return WithContext(ctx, holder)
}

// TenantID returns the id of the tenant bound in ctx.
func TenantID(ctx context.Context) (string, bool) {
	id := FromContext(ctx).CurrentID()
	return id, id != ""
}

// Unscoped marks ctx so the query filter lets statements through unconstrained.
// Only the authentication phase and maintenance jobs may use it.
func Unscoped(ctx context.Context) context.Context {
	return context.WithValue(ctx, unscopedKey, true)
}

func IsUnscoped(ctx context.Context) bool {
	if ctx == nil {
		return false
	}
	unscoped, _ := ctx.Value(unscopedKey).(bool)
	return unscoped
}
