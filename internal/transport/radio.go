package transport

// Radio is a thin shim over a bound emitter/receiver pair of cells,
// modeling two independently addressable one-way channels rather than the
// Screen shim's single shared cell. Either role may bind to it.
type Radio struct {
	emitter  *Cell
	receiver *Cell
	size     int
	control  bool
}

// NewRadio builds a Radio transport. emitter is the cell this peer writes
// to; receiver is the cell it reads from. Pairing two Radios with swapped
// emitter/receiver cells yields a full channel, same as NewLoopbackPair
// but backed by the Cell primitive instead of an internal mutex pair.
func NewRadio(emitter, receiver *Cell, blockSize int, asController bool) *Radio {
	return &Radio{emitter: emitter, receiver: receiver, size: blockSize, control: asController}
}

func (r *Radio) Send(f string) {
	r.emitter.Set(f)
}

func (r *Radio) Read() string {
	return r.receiver.Get()
}

func (r *Radio) Clear() {
	r.emitter.Set("")
}

func (r *Radio) BlockSize() int {
	return r.size
}

func (r *Radio) IsController() bool {
	return r.control
}
