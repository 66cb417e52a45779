package view_test

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/sghaida/facet/capability"
	"github.com/sghaida/facet/selfref"
	"github.com/sghaida/facet/view"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

//
// -----------------------------------------------------------------------------
// Simple
// -----------------------------------------------------------------------------

func TestSimple_FallsBackToBase(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	v := view.NewSimple[string](newPlainModel(rec))

	require.NoError(t, v.Method("hi"))
	assert.Equal(t, []string{"root: hi"}, rec.calls)
	require.Len(t, rec.views, 1)
	assert.Same(t, v, rec.views[0])
	assert.Equal(t, capability.Present, v.Supports())
}

func TestSimple_OtherSignatureIsSkipped(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	m := &shadowModel{root: rootModel[*shadowModel]{rec: rec}, rec: rec}

	require.NoError(t, view.NewSimple[string](m).Method("hi"))
	require.NoError(t, view.NewSimple[int](m).Method(7))

	assert.Equal(t, []string{"root: hi", "shadow: 7"}, rec.calls)
}

func TestSimple_MissingCapability(t *testing.T) {
	t.Parallel()

	v := view.NewSimple[string](&bareModel{})
	assert.Equal(t, capability.Absent, v.Supports())

	err := v.Method("hi")
	require.Error(t, err)
	assert.ErrorIs(t, err, capability.ErrMissingCapability)

	var missing capability.MissingCapabilityError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, view.OpSimple, missing.Op)
	assert.Equal(t, "*view_test.bareModel", missing.Model)

	// same outcome on every call
	assert.ErrorIs(t, v.Method("again"), capability.ErrMissingCapability)
}

func TestSimple_NilInterfaceModel(t *testing.T) {
	t.Parallel()

	var b Bar
	err := view.NewSimple[Target](b).Method(Target{})
	assert.ErrorIs(t, err, capability.ErrNilModel)
}

func TestSimple_ReturnsModelErrorUnchanged(t *testing.T) {
	t.Parallel()

	err := view.NewSimple[string](failingModel{}).Method("x")
	assert.Same(t, errRefused, err)
}

func TestSimple_ZeroValueIsNotOwned(t *testing.T) {
	t.Parallel()

	var v view.Simple[string, *plainModel]
	err := v.Method("hi")
	require.Error(t, err)
	assert.ErrorIs(t, err, selfref.ErrNotOwned)
}

func TestSimple_Checked(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	d := NewBarDerived(rec)

	v := view.NewSimpleChecked[Target](d)
	require.NoError(t, v.Method(Target{Note: "checked"}))
	assert.Same(t, d, v.Model())
	assert.Equal(t, []string{"simple in BarDerived: checked"}, rec.calls)
}

//
// -----------------------------------------------------------------------------
// Cached
// -----------------------------------------------------------------------------

func TestCached_CacheIsImmutable(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	v := view.NewCached[Target](NewBarDerived(rec), 3.14)

	assert.Equal(t, 3.14, v.Cache())
	for range 5 {
		require.NoError(t, v.Method(Target{Note: "n"}))
		assert.Equal(t, 3.14, v.Cache())
	}
	assert.Equal(t, 3.14, v.Cache())
	assert.Len(t, rec.calls, 5)
	assert.Equal(t, "cached in BarDerived: n (cache 3.14)", rec.calls[0])
}

func TestCached_ReferenceCacheIsShallow(t *testing.T) {
	t.Parallel()

	v := view.NewCached[string](scribbler{}, []int{1, 2})
	require.NoError(t, v.Method("x"))

	// Same length: the view keeps its own slice header.
	assert.Equal(t, []int{9, 2}, v.Cache())
}

func TestCached_UsesCachedCapabilityOnly(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	// plainModel's chain answers SimpleMethod only.
	v := view.NewCached[string](newPlainModel(rec), "c")

	assert.Equal(t, capability.Absent, v.Supports())
	assert.ErrorIs(t, v.Method("hi"), capability.ErrMissingCapability)
	assert.Empty(t, rec.calls)
}

func TestCached_DefaultCache(t *testing.T) {
	t.Parallel()

	rec := &recorder{}

	withDefault := view.NewCachedDefault[Target, *BarDerived, float64](NewBarDerived(rec))
	assert.Equal(t, 3.14, withDefault.Cache())

	zero := view.NewCachedDefault[Target, *BarReusing, int](NewBarReusing(rec))
	assert.Equal(t, 0, zero.Cache())
}

func TestCached_ZeroValueIsNotOwned(t *testing.T) {
	t.Parallel()

	var v view.Cached[Target, *BarDerived, float64]
	assert.ErrorIs(t, v.Method(Target{}), selfref.ErrNotOwned)
}

func TestCached_Checked(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	r := NewBarReusing(rec)

	v := view.NewCachedChecked[Target](r, 7)
	require.NoError(t, v.Method(Target{Note: "reuse"}))
	assert.Same(t, r, v.Model())
	assert.Equal(t, []string{"cached in BarBase: reuse (cache 7)"}, rec.calls)
	assert.Same(t, v, rec.views[0])
}

//
// -----------------------------------------------------------------------------
// Bar hierarchy
// -----------------------------------------------------------------------------

func TestBar_DerivedAndReusing(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	derived := NewBarDerived(rec)
	reusing := NewBarReusing(rec)

	bars := []Bar{derived, reusing}
	for _, b := range bars {
		require.NoError(t, b.TargetView(false).Method(Target{Note: "s"}))
		require.NoError(t, b.TargetView(true).Method(Target{Note: "c"}))
	}

	assert.Equal(t, []string{
		"simple in BarDerived: s",
		"cached in BarDerived: c (cache 3.14)",
		"simple in BarBase: s",
		"cached in BarBase: c (cache 0)",
	}, rec.calls)
}

func TestBar_ViewsAreTypedWithDerivedModel(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	var b Bar = NewBarDerived(rec)

	v, ok := b.TargetView(false).(*view.Simple[Target, *BarDerived])
	require.True(t, ok)
	assert.Same(t, b, v.Model())

	c, ok := b.TargetView(true).(*view.Cached[Target, *BarDerived, float64])
	require.True(t, ok)
	assert.Equal(t, 3.14, c.Cache())
}

//
// -----------------------------------------------------------------------------
// Logging
// -----------------------------------------------------------------------------

func TestWithLogger_TracesDelegation(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	rec := &recorder{}
	require.NoError(t, view.NewSimple[string](newPlainModel(rec), view.WithLogger(logger)).Method("hi"))
	out := buf.String()
	assert.Contains(t, out, "msg=delegating")
	assert.Contains(t, out, "op=SimpleMethod")
	assert.Contains(t, out, "depth=1")

	buf.Reset()
	_ = view.NewSimple[string](&bareModel{}, view.WithLogger(logger)).Method("hi")
	assert.Contains(t, buf.String(), `msg="delegation failed"`)
}

func TestWithLogger_NilOptionsIgnored(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	v := view.NewSimple[string](newPlainModel(rec), nil, view.WithLogger(nil))
	require.NoError(t, v.Method("hi"))
	assert.Equal(t, []string{"root: hi"}, rec.calls)
}
