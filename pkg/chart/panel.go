package chart

import (
	"fmt"
	"slices"
	"sync"

	"github.com/matzehuels/ratechart/pkg/dataset"
	"github.com/matzehuels/ratechart/pkg/scene"
)

// EmptyMessage is shown in place of the chart while nothing is selected.
const EmptyMessage = "그래프를 보려면 데이터를 추가해주세요"

// Title is the panel heading.
const Title = "합계출산율 변화"

// Panel hosts the live chart for a selection. The scene returned by
// [Panel.Scene] is owned by the panel; callers that need to change it must
// work on a clone.
type Panel struct {
	mu      sync.Mutex
	sel     *dataset.Selection
	theme   Theme
	hover   int
	onHover func(year int, ok bool)

	built  []dataset.Point
	active int
	chart  *Chart
	err    error
}

// NewPanel returns a panel showing sel with theme.
func NewPanel(sel *dataset.Selection, theme Theme) *Panel {
	if sel == nil {
		sel = &dataset.Selection{}
	}
	return &Panel{sel: sel, theme: theme}
}

// Selection returns the panel's data source.
func (p *Panel) Selection() *dataset.Selection { return p.sel }

// Theme returns the panel theme.
func (p *Panel) Theme() Theme { return p.theme }

// Points returns the selected points in insertion order.
func (p *Panel) Points() []dataset.Point { return p.sel.Points() }

// Chart returns the current chart, rebuilding it if the selection or the
// hover highlight changed. It returns nil when nothing is selected.
func (p *Panel) Chart() *Chart {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.chartLocked()
}

func (p *Panel) chartLocked() *Chart {
	pts := p.sel.Points()
	if len(pts) == 0 {
		p.chart, p.built = nil, nil
		return nil
	}
	if p.chart != nil && p.active == p.hover && slices.Equal(pts, p.built) {
		return p.chart
	}
	c, err := Build(pts, p.theme, WithActive(p.hover))
	if err != nil {
		p.err = err
		return nil
	}
	p.chart, p.built, p.active, p.err = c, pts, p.hover, nil
	return c
}

// Scene returns the live scene, or nil when there is nothing to show.
func (p *Panel) Scene() *scene.Scene {
	if c := p.Chart(); c != nil {
		return c.Scene
	}
	return nil
}

// Err returns the last build error.
func (p *Panel) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

// OnHover registers the hover/selection callback. ok is false when the
// pointer leaves the chart.
func (p *Panel) OnHover(fn func(year int, ok bool)) {
	p.mu.Lock()
	p.onHover = fn
	p.mu.Unlock()
}

// Hover moves the pointer over year's marker. A year that is not selected,
// or zero, means the pointer left the chart.
func (p *Panel) Hover(year int) {
	if year != 0 && !p.sel.Has(year) {
		year = 0
	}
	p.mu.Lock()
	changed := p.hover != year
	p.hover = year
	fn := p.onHover
	p.mu.Unlock()
	if changed && fn != nil {
		fn(year, year != 0)
	}
}

// Hovered returns the year under the pointer.
func (p *Panel) Hovered() (int, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.hover, p.hover != 0
}

// Tooltip is the hover card for one point.
type Tooltip struct {
	Title string
	Value string
}

// Tooltip returns the hover card for year.
func (p *Panel) Tooltip(year int) (Tooltip, bool) {
	for _, pt := range p.sel.Points() {
		if pt.Year == year {
			return Tooltip{
				Title: fmt.Sprintf("%d년", pt.Year),
				Value: fmt.Sprintf("출산율: %.2f명", pt.Rate),
			}, true
		}
	}
	return Tooltip{}, false
}
