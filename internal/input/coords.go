package input

import "github.com/rook-computer/scratchcard/internal/document"

// LocalCoords returns the event position relative to elem, found by
// subtracting the summed offsets of elem's offset-parent chain from the
// event's page coordinates. ok is false when the event has no coordinates.
func LocalCoords(elem document.Offsetter, ev Event) (Point, bool) {
	page, ok := ev.PagePoint()
	if !ok {
		return Point{}, false
	}
	var ox, oy int
	for el := elem; el != nil; el = el.OffsetParent() {
		ox += el.OffsetLeft()
		oy += el.OffsetTop()
	}
	return Point{X: page.X - float64(ox), Y: page.Y - float64(oy)}, true
}
