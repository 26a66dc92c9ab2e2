// Package chunker splits a serialized value into frame-sized chunks ready
// to be stamped with sequence numbers and encoded by the frame package.
package chunker

import (
	"errors"
	"math"
)

// MaxChunks is the largest block count representable by the 3-digit
// remaining field: a value requiring more chunks than this cannot be
// written.
const MaxChunks = 999

// ErrTooLarge is returned when data would require more than MaxChunks
// chunks at the given chunk size. Its wrapped message is exactly the
// literal string the protocol's write-path error reports to callers.
var ErrTooLarge = errors.New("Too large data")

// Split divides data into chunks of at most size bytes each, in order.
// An empty input yields a single empty chunk, since the protocol always
// needs at least one Data frame to carry the new=1/remaining=0 terminator.
func Split(data []byte, size int) ([][]byte, error) {
	if size <= 0 {
		return nil, errors.New("chunker: chunk size must be positive")
	}
	n := len(data)
	count := 1
	if n > 0 {
		count = int(math.Ceil(float64(n) / float64(size)))
	}
	if count > MaxChunks {
		return nil, ErrTooLarge
	}
	chunks := make([][]byte, 0, count)
	for offset := 0; offset < n; offset += size {
		end := offset + size
		if end > n {
			end = n
		}
		chunks = append(chunks, data[offset:end])
	}
	if len(chunks) == 0 {
		chunks = append(chunks, nil)
	}
	return chunks, nil
}
