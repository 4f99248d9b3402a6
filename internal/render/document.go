package render

import (
	"sort"
	"sync"

	"github.com/samber/lo"
	"golang.org/x/exp/slices"

	"exusiai.dev/dashsync/internal/model"
)

// Element is the rendered state of one id.
type Element struct {
	ID      string         `json:"id"`
	Text    string         `json:"text,omitempty"`
	Classes []string       `json:"classes,omitempty"`
	Rows    []Row          `json:"rows,omitempty"`
	Items   []Item         `json:"items,omitempty"`
	Chart   []model.Series `json:"chart,omitempty"`
}

// Document is an in-memory Surface. Elements keep their last rendered content
// until a later call overwrites it.
type Document struct {
	mu       sync.RWMutex
	elements map[string]*Element
}

func NewDocument() *Document {
	return &Document{
		elements: make(map[string]*Element),
	}
}

var _ Surface = (*Document)(nil)

func (d *Document) element(id string) *Element {
	e, ok := d.elements[id]
	if !ok {
		e = &Element{ID: id}
		d.elements[id] = e
	}
	return e
}

func (d *Document) SetText(id, text string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.element(id).Text = text
}

func (d *Document) SetClass(id string, add, remove []string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	e := d.element(id)
	classes := lo.Reject(e.Classes, func(c string, _ int) bool { return slices.Contains(remove, c) })
	classes = lo.Uniq(append(classes, add...))
	sort.Strings(classes)
	e.Classes = classes
}

func (d *Document) ReplaceRows(id string, rows []Row) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.element(id).Rows = append([]Row(nil), rows...)
}

func (d *Document) ReplaceList(id string, items []Item) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.element(id).Items = append([]Item(nil), items...)
}

func (d *Document) UpdateChart(id string, series []model.Series) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.element(id).Chart = append([]model.Series(nil), series...)
}

func (d *Document) Element(id string) (Element, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	e, ok := d.elements[id]
	if !ok {
		return Element{}, false
	}
	return *e, true
}

func (d *Document) Text(id string) string {
	e, _ := d.Element(id)
	return e.Text
}

func (d *Document) HasClass(id, class string) bool {
	e, _ := d.Element(id)
	return slices.Contains(e.Classes, class)
}

func (d *Document) Rows(id string) []Row {
	e, _ := d.Element(id)
	return e.Rows
}

func (d *Document) Items(id string) []Item {
	e, _ := d.Element(id)
	return e.Items
}

// Elements returns every element sorted by id.
func (d *Document) Elements() []Element {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := lo.MapToSlice(d.elements, func(_ string, e *Element) Element { return *e })
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
