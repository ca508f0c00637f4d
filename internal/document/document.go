// Package document models the host page the card lives in: a small tree of
// positioned elements addressable by ID, with visibility classes and
// hit-testing. Offsets are relative to the element's offset parent, the
// same way a browser reports offsetLeft/offsetTop.
package document

import (
	"image"
	"sync"
)

// Stable element IDs of the card page.
const (
	IDLoading     = "loading"
	IDMain        = "main"
	IDCanvas      = "maincanvas"
	IDResetButton = "resetbutton"
)

// ClassHidden marks an element (and its subtree) as not displayed.
const ClassHidden = "hidden"

// Offsetter is anything positioned relative to an offset parent.
// OffsetParent returns nil at the top of the chain.
type Offsetter interface {
	OffsetLeft() int
	OffsetTop() int
	OffsetParent() Offsetter
}

type Element struct {
	ID string

	doc      *Document
	parent   *Element
	children []*Element
	offset   image.Point
	size     image.Point
	class    string
}

// Document is safe for concurrent use: the event loop mutates it while the
// renderer reads it.
type Document struct {
	mu   sync.RWMutex
	body *Element
	byID map[string]*Element
}

func New(width, height int) *Document {
	d := &Document{byID: map[string]*Element{}}
	d.body = &Element{ID: "body", doc: d, size: image.Pt(width, height)}
	d.byID[d.body.ID] = d.body
	return d
}

func (d *Document) Body() *Element { return d.body }

// Size returns the page size.
func (d *Document) Size() (int, int) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.body.size.X, d.body.size.Y
}

// Append adds a child of parent. rect is relative to parent.
func (d *Document) Append(parent *Element, id string, rect image.Rectangle) *Element {
	d.mu.Lock()
	defer d.mu.Unlock()
	if parent == nil {
		parent = d.body
	}
	rect = Normalize(rect)
	el := &Element{ID: id, doc: d, parent: parent, offset: rect.Min, size: rect.Size()}
	parent.children = append(parent.children, el)
	if id != "" {
		d.byID[id] = el
	}
	return el
}

// ByID returns the element with id, or nil.
func (d *Document) ByID(id string) *Element {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.byID[id]
}

// Hit returns the deepest displayed element whose page rectangle contains p,
// or nil when p is outside the page.
func (d *Document) Hit(p image.Point) *Element {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return hit(d.body, image.Point{}, p)
}

func hit(el *Element, origin image.Point, p image.Point) *Element {
	if el.class == ClassHidden {
		return nil
	}
	topLeft := origin.Add(el.offset)
	if !p.In(image.Rectangle{Min: topLeft, Max: topLeft.Add(el.size)}) {
		return nil
	}
	// Later siblings paint on top, so search them first.
	for i := len(el.children) - 1; i >= 0; i-- {
		if found := hit(el.children[i], topLeft, p); found != nil {
			return found
		}
	}
	return el
}

func (e *Element) OffsetLeft() int {
	e.doc.mu.RLock()
	defer e.doc.mu.RUnlock()
	return e.offset.X
}

func (e *Element) OffsetTop() int {
	e.doc.mu.RLock()
	defer e.doc.mu.RUnlock()
	return e.offset.Y
}

func (e *Element) OffsetParent() Offsetter {
	e.doc.mu.RLock()
	defer e.doc.mu.RUnlock()
	if e.parent == nil {
		return nil
	}
	return e.parent
}

// PageRect is the element's rectangle in page coordinates.
func (e *Element) PageRect() image.Rectangle {
	e.doc.mu.RLock()
	defer e.doc.mu.RUnlock()
	var topLeft image.Point
	for el := e; el != nil; el = el.parent {
		topLeft = topLeft.Add(el.offset)
	}
	return image.Rectangle{Min: topLeft, Max: topLeft.Add(e.size)}
}

func (e *Element) Size() image.Point {
	e.doc.mu.RLock()
	defer e.doc.mu.RUnlock()
	return e.size
}

// SetRect moves and resizes the element relative to its parent.
func (e *Element) SetRect(rect image.Rectangle) {
	e.doc.mu.Lock()
	rect = Normalize(rect)
	e.offset = rect.Min
	e.size = rect.Size()
	e.doc.mu.Unlock()
}

func (e *Element) SetClass(class string) {
	e.doc.mu.Lock()
	e.class = class
	e.doc.mu.Unlock()
}

func (e *Element) Class() string {
	e.doc.mu.RLock()
	defer e.doc.mu.RUnlock()
	return e.class
}

// Displayed reports whether neither e nor any ancestor is hidden.
func (e *Element) Displayed() bool {
	e.doc.mu.RLock()
	defer e.doc.mu.RUnlock()
	for el := e; el != nil; el = el.parent {
		if el.class == ClassHidden {
			return false
		}
	}
	return true
}

// Contains reports whether other is e or one of its descendants.
func (e *Element) Contains(other *Element) bool {
	if other == nil {
		return false
	}
	e.doc.mu.RLock()
	defer e.doc.mu.RUnlock()
	for el := other; el != nil; el = el.parent {
		if el == e {
			return true
		}
	}
	return false
}
