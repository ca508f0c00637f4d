package document

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPageRectAccumulatesOffsets(t *testing.T) {
	doc := New(1000, 800)
	outer := doc.Append(doc.Body(), "outer", image.Rect(100, 50, 900, 750))
	inner := doc.Append(outer, "inner", image.Rect(20, 30, 220, 130))

	assert.Equal(t, image.Rect(120, 80, 320, 180), inner.PageRect())
	assert.Equal(t, 20, inner.OffsetLeft())
	assert.Equal(t, 30, inner.OffsetTop())
	assert.Equal(t, Offsetter(outer), inner.OffsetParent())
	assert.Nil(t, doc.Body().OffsetParent())
}

func TestHitSkipsHiddenAndPrefersTopmost(t *testing.T) {
	doc := New(100, 100)
	a := doc.Append(nil, "a", image.Rect(0, 0, 60, 60))
	b := doc.Append(nil, "b", image.Rect(40, 40, 100, 100))

	assert.Equal(t, b, doc.Hit(image.Pt(50, 50)))
	b.SetClass(ClassHidden)
	assert.Equal(t, a, doc.Hit(image.Pt(50, 50)))
	assert.Equal(t, doc.Body(), doc.Hit(image.Pt(80, 80)))
	assert.Nil(t, doc.Hit(image.Pt(-1, 5)))
}

func TestCardPageViews(t *testing.T) {
	doc := NewCardPage(1280, 720)
	for _, id := range []string{IDLoading, IDMain, IDCanvas, IDResetButton} {
		require.NotNil(t, doc.ByID(id), id)
	}
	canvas := doc.ByID(IDCanvas)
	assert.False(t, canvas.Displayed())
	assert.True(t, doc.ByID(IDLoading).Displayed())

	LayoutCanvas(doc, 400, 300)
	ShowMain(doc)
	assert.True(t, canvas.Displayed())
	assert.False(t, doc.ByID(IDLoading).Displayed())
	assert.Equal(t, image.Pt(400, 300), canvas.Size())

	rect := canvas.PageRect()
	assert.Equal(t, canvas, doc.Hit(rect.Min.Add(image.Pt(10, 10))))
	assert.Equal(t, doc.ByID(IDResetButton), doc.Hit(doc.ByID(IDResetButton).PageRect().Min))
	assert.True(t, doc.ByID(IDMain).Contains(canvas))

	ShowLoading(doc)
	assert.False(t, canvas.Displayed())
}

func TestLayoutHelpers(t *testing.T) {
	top, bottom := SplitHorizontal(image.Rect(0, 0, 10, 10), 15)
	assert.Equal(t, image.Rect(0, 0, 10, 10), top)
	assert.True(t, bottom.Empty())
	assert.Equal(t, image.Rect(2, 2, 8, 8), Inset(image.Rect(0, 0, 10, 10), 2))
	assert.Equal(t, image.Rect(3, 4, 7, 6), CenterIn(image.Rect(0, 0, 10, 10), 4, 2))
}
