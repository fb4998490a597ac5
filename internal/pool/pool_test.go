package pool

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/bnema/streamview/internal/bundle"
	"github.com/bnema/streamview/internal/mainloop"
	"github.com/bnema/streamview/pkg/webview"
	"github.com/bnema/streamview/pkg/webview/mocks"
)

func newTestLoop(t *testing.T) *mainloop.Loop {
	t.Helper()
	loop := mainloop.New()
	go loop.Run()
	t.Cleanup(loop.Stop)
	return loop
}

// fence waits until everything queued on the loop before it has run.
func fence(loop *mainloop.Loop) {
	done := make(chan struct{})
	loop.Post(func() { close(done) })
	<-done
}

func headlessFactory(loop *mainloop.Loop, created *atomic.Int32) webview.Factory {
	return func(_ context.Context) (webview.Engine, error) {
		if created != nil {
			created.Add(1)
		}
		return webview.NewHeadless(loop, webview.HeadlessOptions{Logger: zerolog.Nop()}), nil
	}
}

// gatedFactory fails creation while the gate is closed.
func gatedFactory(loop *mainloop.Loop, open *atomic.Bool) webview.Factory {
	return func(ctx context.Context) (webview.Engine, error) {
		if !open.Load() {
			return nil, errors.New("factory gated")
		}
		return headlessFactory(loop, nil)(ctx)
	}
}

func TestWarmUpPopulatesToTarget(t *testing.T) {
	loop := newTestLoop(t)
	var created atomic.Int32
	p := New(loop, headlessFactory(loop, &created), bundle.NewCache(nil), DefaultConfig())
	defer p.Close(context.Background())

	require.NoError(t, p.WarmUp(context.Background(), bundle.VariantBalanced))
	assert.Equal(t, 2, p.IdleCount(bundle.VariantBalanced))
	assert.Equal(t, int32(2), created.Load())

	// A second warm-up is a no-op.
	require.NoError(t, p.WarmUp(context.Background(), bundle.VariantBalanced))
	assert.Equal(t, 2, p.IdleCount(bundle.VariantBalanced))
	assert.Equal(t, int32(2), created.Load())
}

func TestWarmUpUnavailableVariant(t *testing.T) {
	loop := newTestLoop(t)
	p := New(loop, headlessFactory(loop, nil), bundle.NewCache(failingLoader{}), DefaultConfig())
	defer p.Close(context.Background())

	err := p.WarmUp(context.Background(), bundle.VariantFull)
	assert.Error(t, err)
	assert.Equal(t, 0, p.IdleCount(bundle.VariantFull))
}

func TestDequeueMissOnColdPool(t *testing.T) {
	loop := newTestLoop(t)
	p := New(loop, headlessFactory(loop, nil), bundle.NewCache(nil), DefaultConfig())
	defer p.Close(context.Background())

	inst, ok := p.Dequeue(context.Background(), bundle.VariantMinimal)
	assert.False(t, ok)
	assert.Nil(t, inst)
}

func TestWarmDequeueSequence(t *testing.T) {
	loop := newTestLoop(t)
	var open atomic.Bool
	open.Store(true)
	p := New(loop, gatedFactory(loop, &open), bundle.NewCache(nil), DefaultConfig())
	defer p.Close(context.Background())

	require.NoError(t, p.WarmUp(context.Background(), bundle.VariantBalanced))
	open.Store(false) // replenishment cannot complete

	first, ok := p.Dequeue(context.Background(), bundle.VariantBalanced)
	require.True(t, ok)
	second, ok := p.Dequeue(context.Background(), bundle.VariantBalanced)
	require.True(t, ok)
	assert.NotEqual(t, first.Engine().ID(), second.Engine().ID())
	assert.Equal(t, bundle.VariantBalanced, first.Variant())

	fence(loop)
	third, ok := p.Dequeue(context.Background(), bundle.VariantBalanced)
	assert.False(t, ok)
	assert.Nil(t, third)
	assert.Equal(t, 0, p.IdleCount(bundle.VariantBalanced))
}

func TestReplenishAfterDequeue(t *testing.T) {
	loop := newTestLoop(t)
	var created atomic.Int32
	p := New(loop, headlessFactory(loop, &created), bundle.NewCache(nil), DefaultConfig())
	defer p.Close(context.Background())

	require.NoError(t, p.WarmUp(context.Background(), bundle.VariantMinimal))
	_, ok := p.Dequeue(context.Background(), bundle.VariantMinimal)
	require.True(t, ok)

	fence(loop)
	assert.Equal(t, 2, p.IdleCount(bundle.VariantMinimal))
	assert.Equal(t, int32(3), created.Load())
}

func TestCreateOnDemand(t *testing.T) {
	loop := newTestLoop(t)
	p := New(loop, headlessFactory(loop, nil), bundle.NewCache(nil), DefaultConfig())
	defer p.Close(context.Background())

	inst, err := p.Create(context.Background(), bundle.VariantFull)
	require.NoError(t, err)
	assert.Equal(t, bundle.VariantFull, inst.Variant())
	assert.Equal(t, bundle.VariantFull, inst.Entry().Variant)
	assert.Equal(t, 0, p.IdleCount(bundle.VariantFull))
}

func TestDequeueSkipsDestroyedInstance(t *testing.T) {
	loop := newTestLoop(t)
	var open atomic.Bool
	open.Store(true)
	p := New(loop, gatedFactory(loop, &open), bundle.NewCache(nil), DefaultConfig())
	defer p.Close(context.Background())

	require.NoError(t, p.WarmUp(context.Background(), bundle.VariantMinimal))
	open.Store(false) // keep replenishment out of the picture

	first, ok := p.Dequeue(context.Background(), bundle.VariantMinimal)
	require.True(t, ok)
	second, ok := p.Dequeue(context.Background(), bundle.VariantMinimal)
	require.True(t, ok)

	p.Recycle(context.Background(), first)
	p.Recycle(context.Background(), second)
	require.Equal(t, 2, p.IdleCount(bundle.VariantMinimal))

	// The instance on top of the idle stack dies while pooled.
	second.Engine().Destroy()

	got, ok := p.Dequeue(context.Background(), bundle.VariantMinimal)
	require.True(t, ok)
	assert.Equal(t, first.Engine().ID(), got.Engine().ID())
	assert.Equal(t, 0, p.IdleCount(bundle.VariantMinimal))
}

func TestRecycleReturnsInstanceToPool(t *testing.T) {
	loop := newTestLoop(t)
	ctrl := gomock.NewController(t)
	engine := mocks.NewMockEngine(ctrl)
	engine.EXPECT().ID().Return(webview.InstanceID(7)).AnyTimes()
	engine.EXPECT().IsDestroyed().Return(false).AnyTimes()
	engine.EXPECT().LoadHTML(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).Times(2)
	engine.EXPECT().ClearScriptMessageHandler()
	engine.EXPECT().ClearNavigationPolicy()

	factory := func(_ context.Context) (webview.Engine, error) { return engine, nil }
	p := New(loop, factory, bundle.NewCache(nil), DefaultConfig())

	inst, err := p.Create(context.Background(), bundle.VariantBalanced)
	require.NoError(t, err)

	p.Recycle(context.Background(), inst)
	assert.Equal(t, 1, p.IdleCount(bundle.VariantBalanced))
}

func TestRecycleAtTargetDestroys(t *testing.T) {
	loop := newTestLoop(t)
	p := New(loop, headlessFactory(loop, nil), bundle.NewCache(nil), DefaultConfig())
	defer p.Close(context.Background())
	require.NoError(t, p.WarmUp(context.Background(), bundle.VariantMinimal))

	ctrl := gomock.NewController(t)
	engine := mocks.NewMockEngine(ctrl)
	engine.EXPECT().IsDestroyed().Return(false).AnyTimes()
	engine.EXPECT().ClearScriptMessageHandler()
	engine.EXPECT().ClearNavigationPolicy()
	engine.EXPECT().ID().Return(webview.InstanceID(99)).AnyTimes()
	engine.EXPECT().Destroy()

	entry, ok := bundle.NewCache(nil).Get(context.Background(), bundle.VariantMinimal)
	require.True(t, ok)
	p.Recycle(context.Background(), &Instance{engine: engine, variant: bundle.VariantMinimal, entry: entry})
	assert.Equal(t, 2, p.IdleCount(bundle.VariantMinimal))
}

func TestRecycleFailedNavigationDestroys(t *testing.T) {
	loop := newTestLoop(t)
	ctrl := gomock.NewController(t)
	engine := mocks.NewMockEngine(ctrl)
	engine.EXPECT().ID().Return(webview.InstanceID(3)).AnyTimes()
	engine.EXPECT().IsDestroyed().Return(false).AnyTimes()
	gomock.InOrder(
		engine.EXPECT().LoadHTML(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil),
		engine.EXPECT().LoadHTML(gomock.Any(), gomock.Any(), gomock.Any()).Return(fmt.Errorf("engine gone")),
	)
	engine.EXPECT().ClearScriptMessageHandler()
	engine.EXPECT().ClearNavigationPolicy()
	engine.EXPECT().Destroy()

	factory := func(_ context.Context) (webview.Engine, error) { return engine, nil }
	p := New(loop, factory, bundle.NewCache(nil), DefaultConfig())

	inst, err := p.Create(context.Background(), bundle.VariantMinimal)
	require.NoError(t, err)
	p.Recycle(context.Background(), inst)
	assert.Equal(t, 0, p.IdleCount(bundle.VariantMinimal))
}

func TestCloseDestroysIdleAndRejectsUse(t *testing.T) {
	loop := newTestLoop(t)
	p := New(loop, headlessFactory(loop, nil), bundle.NewCache(nil), DefaultConfig())

	require.NoError(t, p.WarmUp(context.Background(), bundle.VariantMinimal))
	inst, ok := p.Dequeue(context.Background(), bundle.VariantMinimal)
	require.True(t, ok)

	p.Close(context.Background())

	assert.Equal(t, 0, p.IdleCount(bundle.VariantMinimal))
	_, ok = p.Dequeue(context.Background(), bundle.VariantMinimal)
	assert.False(t, ok)
	assert.ErrorIs(t, p.WarmUp(context.Background(), bundle.VariantMinimal), webview.ErrEngineUnavailable)

	// Recycling into a closed pool destroys the instance.
	p.Recycle(context.Background(), inst)
	assert.True(t, inst.Engine().IsDestroyed())
}

func TestVariantTargetOverride(t *testing.T) {
	loop := newTestLoop(t)
	cfg := Config{TargetSize: 2, VariantTargets: map[bundle.Variant]int{bundle.VariantFull: 1}}
	p := New(loop, headlessFactory(loop, nil), bundle.NewCache(nil), cfg)
	defer p.Close(context.Background())

	require.NoError(t, p.WarmUp(context.Background(), bundle.VariantFull))
	assert.Equal(t, 1, p.IdleCount(bundle.VariantFull))
	require.NoError(t, p.WarmUp(context.Background(), bundle.VariantMinimal))
	assert.Equal(t, 2, p.IdleCount(bundle.VariantMinimal))
}

type failingLoader struct{}

func (failingLoader) Script(bundle.Variant) (string, error) {
	return "", errors.New("artifact missing")
}

func (failingLoader) Style(bundle.Variant) (string, error) {
	return "", errors.New("artifact missing")
}
