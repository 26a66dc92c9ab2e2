package transport

// Screen is a thin shim over a single mutable text cell, standing in for
// an in-game display surface's text property. It is the canonical worker
// transport: the controller writes commands into it and reads the
// worker's replies back out, or vice versa depending on which side of the
// underlying cell each peer process is bound to.
//
// A real deployment backs this with whatever platform call sets/gets the
// display's text (e.g. an in-game entity's caption); this shim keeps the
// same two-call contract so the engine never has to know the difference.
type Screen struct {
	SetText   func(string)
	GetText   func() string
	size      int
	asControl bool
}

// NewScreen builds a Screen transport bound to setter/getter platform
// calls. The screen surface is always the worker's side of the channel in
// the canonical deployment, but asController lets the same shim stand in
// for either role in tests.
func NewScreen(setText func(string), getText func() string, blockSize int, asController bool) *Screen {
	return &Screen{SetText: setText, GetText: getText, size: blockSize, asControl: asController}
}

func (s *Screen) Send(f string) {
	s.SetText(f)
}

func (s *Screen) Read() string {
	return s.GetText()
}

func (s *Screen) Clear() {
	s.SetText("")
}

func (s *Screen) BlockSize() int {
	return s.size
}

func (s *Screen) IsController() bool {
	return s.asControl
}
