package document

import "image"

const (
	footerHeight = 120
	buttonWidth  = 240
	buttonHeight = 64
	pagePadding  = 24
)

// NewCardPage builds the page the card is hosted in: a loading indicator
// covering the page, and a hidden main view holding the drawing surface and
// the reset control. The drawing surface has no size until LayoutCanvas.
func NewCardPage(width, height int) *Document {
	doc := New(width, height)
	page := image.Rect(0, 0, width, height)

	doc.Append(doc.Body(), IDLoading, page)
	main := doc.Append(doc.Body(), IDMain, page)
	main.SetClass(ClassHidden)

	cardArea, footer := SplitHorizontal(Inset(page, pagePadding), height-2*pagePadding-footerHeight)
	doc.Append(main, IDCanvas, CenterIn(cardArea, 0, 0))
	doc.Append(main, IDResetButton, CenterIn(footer, buttonWidth, buttonHeight))
	return doc
}

// LayoutCanvas sizes the drawing surface to the image dimensions and centers
// it in the card area above the footer.
func LayoutCanvas(doc *Document, width, height int) {
	canvas := doc.ByID(IDCanvas)
	if canvas == nil {
		return
	}
	pageW, pageH := doc.Size()
	cardArea, _ := SplitHorizontal(Inset(image.Rect(0, 0, pageW, pageH), pagePadding), pageH-2*pagePadding-footerHeight)
	canvas.SetRect(CenterIn(cardArea, width, height))
}

// ShowLoading displays the loading indicator and hides the main view.
func ShowLoading(doc *Document) { setView(doc, true) }

// ShowMain hides the loading indicator and displays the main view.
func ShowMain(doc *Document) { setView(doc, false) }

func setView(doc *Document, loading bool) {
	loadingEl, mainEl := doc.ByID(IDLoading), doc.ByID(IDMain)
	if loadingEl == nil || mainEl == nil {
		return
	}
	if loading {
		loadingEl.SetClass("")
		mainEl.SetClass(ClassHidden)
		return
	}
	loadingEl.SetClass(ClassHidden)
	mainEl.SetClass("")
}
