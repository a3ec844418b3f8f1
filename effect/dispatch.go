package effect

import (
	"time"

	"github.com/gogpu/compositor/internal/logging"
	"github.com/gogpu/compositor/paint"
	"github.com/gogpu/compositor/quad"
	"github.com/gogpu/compositor/region"
)

// hop records whether one effect handed the walk on.
type hop struct{ forwarded bool }

// terminalPanic carries a panic raised by the terminal implementation
// through the effects' recover handlers unchanged.
type terminalPanic struct{ v any }

// walk is one synchronous traversal of a stage. A is the stage's argument
// tuple; bind returns the effect's handler for the stage, or nil.
type walk[A any] struct {
	stage   string
	effects []entry
	bind    func(e Effect, next func(A)) func(A)
	final   func(A)
}

func (w *walk[A]) run(args A) {
	defer func() {
		if r := recover(); r != nil {
			if tp, ok := r.(terminalPanic); ok {
				panic(tp.v)
			}
			panic(r)
		}
	}()
	w.from(0, args)
}

func (w *walk[A]) from(i int, args A) {
	for ; i < len(w.effects); i++ {
		en := w.effects[i]
		h := &hop{}
		rest := i + 1
		next := func(a A) {
			if h.forwarded {
				logging.Logger().Debug("effect: stage continued twice", "stage", w.stage, "effect", en.name)
				return
			}
			h.forwarded = true
			w.from(rest, a)
		}
		call := w.bind(en.effect, next)
		if call == nil {
			continue
		}
		w.invoke(en, call, args)
		if !h.forwarded {
			h.forwarded = true
			logging.Logger().Debug("effect: stage not forwarded", "stage", w.stage, "effect", en.name)
			w.from(rest, args)
		}
		return
	}
	w.terminal(args)
}

func (w *walk[A]) invoke(en entry, call func(A), args A) {
	defer func() {
		if r := recover(); r != nil {
			if tp, ok := r.(terminalPanic); ok {
				panic(tp)
			}
			logging.Logger().Warn("effect: recovered panic", "stage", w.stage, "effect", en.name, "panic", r)
		}
	}()
	call(args)
}

func (w *walk[A]) terminal(args A) {
	if w.final == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(terminalPanic); ok {
				panic(r)
			}
			panic(terminalPanic{r})
		}
	}()
	w.final(args)
}

// Stage argument tuples.

type prePaintScreenArgs struct {
	data        *paint.ScreenPrePaintData
	presentTime time.Duration
}

type paintScreenArgs struct {
	mask paint.Mask
	r    region.Region
	data *paint.ScreenPaintData
}

type prePaintWindowArgs struct {
	w           Window
	data        *paint.WindowPrePaintData
	presentTime time.Duration
}

type paintWindowArgs struct {
	w    Window
	mask paint.Mask
	r    region.Region
	data *paint.WindowPaintData
}

type buildQuadsArgs struct {
	w     Window
	quads *quad.List
}

// PrePaintScreen walks the screen pre-paint stage.
func (h *Handler) PrePaintScreen(data *paint.ScreenPrePaintData, presentTime time.Duration) {
	(&walk[prePaintScreenArgs]{
		stage:   "prePaintScreen",
		effects: h.snapshot(),
		bind: func(e Effect, next func(prePaintScreenArgs)) func(prePaintScreenArgs) {
			p, ok := e.(ScreenPrePainter)
			if !ok {
				return nil
			}
			cont := PrePaintScreenNext{fn: func(d *paint.ScreenPrePaintData, t time.Duration) {
				next(prePaintScreenArgs{d, t})
			}}
			return func(a prePaintScreenArgs) { p.PrePaintScreen(a.data, a.presentTime, cont) }
		},
	}).run(prePaintScreenArgs{data, presentTime})
}

// PaintScreen walks the screen paint stage, ending in the scene's
// FinalPaintScreen.
func (h *Handler) PaintScreen(mask paint.Mask, r region.Region, data *paint.ScreenPaintData) {
	s := h.sceneRef()
	(&walk[paintScreenArgs]{
		stage:   "paintScreen",
		effects: h.snapshot(),
		bind: func(e Effect, next func(paintScreenArgs)) func(paintScreenArgs) {
			p, ok := e.(ScreenPainter)
			if !ok {
				return nil
			}
			cont := PaintScreenNext{fn: func(m paint.Mask, r region.Region, d *paint.ScreenPaintData) {
				next(paintScreenArgs{m, r, d})
			}}
			return func(a paintScreenArgs) { p.PaintScreen(a.mask, a.r, a.data, cont) }
		},
		final: func(a paintScreenArgs) {
			if s != nil {
				s.FinalPaintScreen(a.mask, a.r, a.data)
			}
		},
	}).run(paintScreenArgs{mask, r, data})
}

// PostPaintScreen walks the screen post-paint stage.
func (h *Handler) PostPaintScreen() {
	(&walk[struct{}]{
		stage:   "postPaintScreen",
		effects: h.snapshot(),
		bind: func(e Effect, next func(struct{})) func(struct{}) {
			p, ok := e.(ScreenPostPainter)
			if !ok {
				return nil
			}
			cont := PostPaintScreenNext{fn: func() { next(struct{}{}) }}
			return func(struct{}) { p.PostPaintScreen(cont) }
		},
	}).run(struct{}{})
}

// PrePaintWindow walks the window pre-paint stage.
func (h *Handler) PrePaintWindow(w Window, data *paint.WindowPrePaintData, presentTime time.Duration) {
	(&walk[prePaintWindowArgs]{
		stage:   "prePaintWindow",
		effects: h.snapshot(),
		bind: func(e Effect, next func(prePaintWindowArgs)) func(prePaintWindowArgs) {
			p, ok := e.(WindowPrePainter)
			if !ok {
				return nil
			}
			cont := PrePaintWindowNext{fn: func(w Window, d *paint.WindowPrePaintData, t time.Duration) {
				next(prePaintWindowArgs{w, d, t})
			}}
			return func(a prePaintWindowArgs) { p.PrePaintWindow(a.w, a.data, a.presentTime, cont) }
		},
	}).run(prePaintWindowArgs{w, data, presentTime})
}

// PaintWindow walks the window paint stage, ending in the scene's
// FinalPaintWindow.
func (h *Handler) PaintWindow(w Window, mask paint.Mask, r region.Region, data *paint.WindowPaintData) {
	s := h.sceneRef()
	(&walk[paintWindowArgs]{
		stage:   "paintWindow",
		effects: h.snapshot(),
		bind: func(e Effect, next func(paintWindowArgs)) func(paintWindowArgs) {
			p, ok := e.(WindowPainter)
			if !ok {
				return nil
			}
			cont := PaintWindowNext{fn: func(w Window, m paint.Mask, r region.Region, d *paint.WindowPaintData) {
				next(paintWindowArgs{w, m, r, d})
			}}
			return func(a paintWindowArgs) { p.PaintWindow(a.w, a.mask, a.r, a.data, cont) }
		},
		final: func(a paintWindowArgs) {
			if s != nil {
				s.FinalPaintWindow(a.w, a.mask, a.r, a.data)
			}
		},
	}).run(paintWindowArgs{w, mask, r, data})
}

// DrawWindow walks the window draw stage, ending in the scene's
// FinalDrawWindow.
func (h *Handler) DrawWindow(w Window, mask paint.Mask, r region.Region, data *paint.WindowPaintData) {
	s := h.sceneRef()
	(&walk[paintWindowArgs]{
		stage:   "drawWindow",
		effects: h.snapshot(),
		bind: func(e Effect, next func(paintWindowArgs)) func(paintWindowArgs) {
			p, ok := e.(WindowDrawer)
			if !ok {
				return nil
			}
			cont := DrawWindowNext{fn: func(w Window, m paint.Mask, r region.Region, d *paint.WindowPaintData) {
				next(paintWindowArgs{w, m, r, d})
			}}
			return func(a paintWindowArgs) { p.DrawWindow(a.w, a.mask, a.r, a.data, cont) }
		},
		final: func(a paintWindowArgs) {
			if s != nil {
				s.FinalDrawWindow(a.w, a.mask, a.r, a.data)
			}
		},
	}).run(paintWindowArgs{w, mask, r, data})
}

// PostPaintWindow walks the window post-paint stage.
func (h *Handler) PostPaintWindow(w Window) {
	(&walk[Window]{
		stage:   "postPaintWindow",
		effects: h.snapshot(),
		bind: func(e Effect, next func(Window)) func(Window) {
			p, ok := e.(WindowPostPainter)
			if !ok {
				return nil
			}
			cont := PostPaintWindowNext{fn: next}
			return func(w Window) { p.PostPaintWindow(w, cont) }
		},
	}).run(w)
}

// BuildQuads offers a freshly built quad list to every loaded effect.
// Quads are cached across frames, so inactive effects take part too.
func (h *Handler) BuildQuads(w Window, quads *quad.List) {
	(&walk[buildQuadsArgs]{
		stage:   "buildQuads",
		effects: h.loadedSnapshot(),
		bind: func(e Effect, next func(buildQuadsArgs)) func(buildQuadsArgs) {
			p, ok := e.(QuadBuilder)
			if !ok {
				return nil
			}
			cont := BuildQuadsNext{fn: func(w Window, q *quad.List) { next(buildQuadsArgs{w, q}) }}
			return func(a buildQuadsArgs) { p.BuildQuads(a.w, a.quads, cont) }
		},
	}).run(buildQuadsArgs{w, quads})
}
