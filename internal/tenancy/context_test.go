package tenancy

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kingrain94/tenant-auth-api/internal/domain"
)

func TestContext_SetCurrentAndClear(t *testing.T) {
	holder := New()
	assert.False(t, holder.HasCurrent())
	assert.Nil(t, holder.Current())

	tenant := &domain.Tenant{ID: "t1"}
	holder.SetCurrent(tenant)
	assert.True(t, holder.HasCurrent())
	assert.Same(t, tenant, holder.Current())
	assert.Equal(t, "t1", holder.CurrentID())

	holder.Clear()
	assert.False(t, holder.HasCurrent())
	assert.Equal(t, "", holder.CurrentID())
}

func TestContext_NilHolderHasNoTenant(t *testing.T) {
	var holder *Context
	assert.False(t, holder.HasCurrent())
	assert.Nil(t, holder.Current())
	holder.SetCurrent(&domain.Tenant{ID: "t1"})
	holder.Clear()

	id, ok := TenantID(context.Background())
	assert.False(t, ok)
	assert.Empty(t, id)
}

func TestContext_TenantWithoutIDIsNotBound(t *testing.T) {
	holder := New()
	holder.SetCurrent(&domain.Tenant{})
	assert.False(t, holder.HasCurrent())
}

func TestUnscoped(t *testing.T) {
	ctx := context.Background()
	assert.False(t, IsUnscoped(ctx))
	assert.True(t, IsUnscoped(Unscoped(ctx)))
}

func TestContext_ConcurrentRequestsAreIsolated(t *testing.T) {
	var wg sync.WaitGroup
	errs := make(chan error, 50)

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			want := fmt.Sprintf("tenant-%d", i)
			ctx := WithContext(context.Background(), New())
			FromContext(ctx).SetCurrent(&domain.Tenant{ID: want})
			for j := 0; j < 100; j++ {
				if got, _ := TenantID(ctx); got != want {
					errs <- fmt.Errorf("request %d observed tenant %q", i, got)
					return
				}
			}
		}(i)
	}

	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}
