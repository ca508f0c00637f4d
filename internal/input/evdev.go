package input

// Linux input-event-codes.h
const (
	evSyn = 0x00
	evKey = 0x01
	evRel = 0x02
	evAbs = 0x03

	synReport = 0x00

	relX = 0x00
	relY = 0x01

	absX           = 0x00
	absY           = 0x01
	absMTPositionX = 0x35
	absMTPositionY = 0x36

	btnLeft  = 0x110
	btnTouch = 0x14a

	KeyR  = 19
	KeyF4 = 62
)

// AbsRange is the reported value range of an absolute axis.
type AbsRange struct {
	Min, Max int32
}

// DefaultAbsRange is assumed when a device does not report its range.
var DefaultAbsRange = AbsRange{Min: 0, Max: 4095}

// Decoder turns a stream of evdev records into pointer events in page
// coordinates. Records are buffered until SYN_REPORT, so a press and the
// position it happened at arrive as one event. It is not safe for
// concurrent use; each device gets its own Decoder.
type Decoder struct {
	PageWidth, PageHeight float64
	AbsX, AbsY            AbsRange

	OnPointer func(Event)
	OnKey     func(code uint16)

	x, y    float64
	pressed bool
	source  Source

	moved       bool
	pressChange bool
	nextPressed bool
}

func NewDecoder(pageWidth, pageHeight int) *Decoder {
	return &Decoder{
		PageWidth:  float64(pageWidth),
		PageHeight: float64(pageHeight),
		AbsX:       DefaultAbsRange,
		AbsY:       DefaultAbsRange,
	}
}

// Feed consumes one input_event record.
func (d *Decoder) Feed(typ, code uint16, value int32) {
	switch typ {
	case evKey:
		switch code {
		case btnLeft, btnTouch:
			if code == btnTouch {
				d.source = Touch
			} else {
				d.source = Mouse
			}
			d.nextPressed = value != 0
			d.pressChange = d.nextPressed != d.pressed
		default:
			if value == 1 && d.OnKey != nil {
				d.OnKey(code)
			}
		}
	case evRel:
		switch code {
		case relX:
			d.x = clampf(d.x+float64(value), 0, d.PageWidth-1)
			d.moved = true
		case relY:
			d.y = clampf(d.y+float64(value), 0, d.PageHeight-1)
			d.moved = true
		}
	case evAbs:
		switch code {
		case absX, absMTPositionX:
			d.x = scaleAbs(value, d.AbsX, d.PageWidth)
			d.moved = true
		case absY, absMTPositionY:
			d.y = scaleAbs(value, d.AbsY, d.PageHeight)
			d.moved = true
		}
	case evSyn:
		if code == synReport {
			d.flush()
		}
	}
}

func (d *Decoder) flush() {
	moved, pressChange := d.moved, d.pressChange
	d.moved, d.pressChange = false, false

	switch {
	case pressChange && d.nextPressed:
		d.pressed = true
		d.emit(Down)
	case pressChange:
		d.pressed = false
		d.emit(Up)
	case moved:
		d.emit(Move)
	}
}

func (d *Decoder) emit(t Type) {
	if d.OnPointer == nil {
		return
	}
	p := Point{X: d.x, Y: d.y}
	ev := Event{Type: t, Source: d.source, Cancelable: true}
	if d.source == Touch {
		ev.ChangedTouches = []Point{p}
	} else {
		ev.Page = &p
	}
	d.OnPointer(ev)
}

func scaleAbs(value int32, r AbsRange, extent float64) float64 {
	span := float64(r.Max) - float64(r.Min)
	if span <= 0 {
		return 0
	}
	return clampf((float64(value)-float64(r.Min))/span*(extent-1), 0, extent-1)
}

func clampf(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
