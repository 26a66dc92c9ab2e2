package transport

import "os"

// FileRadio is Radio's cross-process counterpart: the same
// emitter/receiver pair shape, backed by two files instead of two
// in-memory Cells, for peers running as separate OS processes.
type FileRadio struct {
	emitterPath  string
	receiverPath string
	size         int
	control      bool
}

// NewFileRadio builds a FileRadio transport. emitterPath is the file
// this peer writes to; receiverPath is the file it reads from. Pairing
// two FileRadios with swapped paths yields a full channel, the same
// relationship NewRadio establishes between two in-memory Cells.
func NewFileRadio(emitterPath, receiverPath string, blockSize int, asController bool) *FileRadio {
	return &FileRadio{emitterPath: emitterPath, receiverPath: receiverPath, size: blockSize, control: asController}
}

func (r *FileRadio) Send(f string) {
	_ = os.WriteFile(r.emitterPath, []byte(f), 0o600)
}

func (r *FileRadio) Read() string {
	data, err := os.ReadFile(r.receiverPath)
	if err != nil {
		return ""
	}
	return string(data)
}

func (r *FileRadio) Clear() {
	_ = os.WriteFile(r.emitterPath, nil, 0o600)
}

func (r *FileRadio) BlockSize() int {
	return r.size
}

func (r *FileRadio) IsController() bool {
	return r.control
}
