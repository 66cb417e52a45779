package view_test

import (
	"errors"
	"fmt"

	"github.com/sghaida/facet/capability"
	"github.com/sghaida/facet/selfref"
	"github.com/sghaida/facet/view"
)

// recorder collects delegated calls in order.
type recorder struct {
	calls []string
	views []any
}

func (r *recorder) add(call string, v any) {
	r.calls = append(r.calls, call)
	r.views = append(r.views, v)
}

// Target is the argument carried by the Bar front-ends.
type Target struct{ Note string }

//
// -----------------------------------------------------------------------------
// Bar hierarchy: Top <- BarBase[D, C] <- {BarDerived, BarReusing}
// -----------------------------------------------------------------------------

// Top is the root of the model hierarchy.
type Top struct{ capability.Root }

// Bar is a model family that can hand out views over itself.
type Bar interface {
	capability.Model
	TargetView(cached bool) view.Front[Target]
}

// BarBase implements Bar for the derived model D with cache type C. Views it
// creates are typed with D, so overrides on D are found first.
type BarBase[D, C any] struct {
	Top
	selfref.Anchor[D]
	rec *recorder
}

func (b *BarBase[D, C]) Base() capability.Model { return b.Top }

func (b *BarBase[D, C]) TargetView(cached bool) view.Front[Target] {
	self := b.MustSelf()
	if cached {
		return view.NewCachedDefault[Target, D, C](self)
	}
	return view.NewSimple[Target](self)
}

func (b *BarBase[D, C]) SimpleMethod(v *view.Simple[Target, D], t Target) error {
	b.rec.add("simple in BarBase: "+t.Note, v)
	return nil
}

func (b *BarBase[D, C]) CachedMethod(v *view.Cached[Target, D, C], t Target) error {
	b.rec.add(fmt.Sprintf("cached in BarBase: %s (cache %v)", t.Note, v.Cache()), v)
	return nil
}

// BarDerived overrides both capabilities and declares its default cache.
type BarDerived struct {
	BarBase[*BarDerived, float64]
}

func NewBarDerived(rec *recorder) *BarDerived {
	d := &BarDerived{}
	d.rec = rec
	d.MustBind(d)
	return d
}

func (d *BarDerived) SimpleMethod(v *view.Simple[Target, *BarDerived], t Target) error {
	d.rec.add("simple in BarDerived: "+t.Note, v)
	return nil
}

func (d *BarDerived) CachedMethod(v *view.Cached[Target, *BarDerived, float64], t Target) error {
	d.rec.add(fmt.Sprintf("cached in BarDerived: %s (cache %v)", t.Note, v.Cache()), v)
	return nil
}

func (*BarDerived) DefaultCache() float64 { return 3.14 }

// BarReusing reuses BarBase's implementations.
type BarReusing struct {
	BarBase[*BarReusing, int]
}

func NewBarReusing(rec *recorder) *BarReusing {
	r := &BarReusing{}
	r.rec = rec
	r.MustBind(r)
	return r
}

//
// -----------------------------------------------------------------------------
// Explicit Base chain without embedding
// -----------------------------------------------------------------------------

// rootModel answers SimpleMethod for views over D.
type rootModel[D any] struct {
	capability.Root
	rec *recorder
}

func (r rootModel[D]) SimpleMethod(v *view.Simple[string, D], msg string) error {
	r.rec.add("root: "+msg, v)
	return nil
}

// plainModel overrides nothing; its Base is rootModel.
type plainModel struct {
	root rootModel[*plainModel]
}

func newPlainModel(rec *recorder) *plainModel {
	return &plainModel{root: rootModel[*plainModel]{rec: rec}}
}

func (p *plainModel) Base() capability.Model { return p.root }

// shadowModel declares SimpleMethod for another argument type and falls back
// to rootModel for strings.
type shadowModel struct {
	root rootModel[*shadowModel]
	rec  *recorder
}

func (s *shadowModel) Base() capability.Model { return s.root }

func (s *shadowModel) SimpleMethod(v *view.Simple[int, *shadowModel], n int) error {
	s.rec.add(fmt.Sprintf("shadow: %d", n), v)
	return nil
}

// bareModel has no capabilities anywhere on its chain.
type bareModel struct{ capability.Root }

// failingModel returns an error from its implementation.
type failingModel struct{ capability.Root }

var errRefused = errors.New("refused")

func (failingModel) SimpleMethod(*view.Simple[string, failingModel], string) error { return errRefused }

// scribbler writes into a slice cache while serving CachedMethod.
type scribbler struct{ capability.Root }

func (scribbler) CachedMethod(v *view.Cached[string, scribbler, []int], _ string) error {
	c := v.Cache()
	c[0] = 9
	_ = append(c, 3)
	return nil
}
