package engine

import (
	"strings"
	"testing"
	"time"

	"github.com/danmuck/relaylink/internal/protocol/command"
	"github.com/danmuck/relaylink/internal/protocol/frame"
	"github.com/danmuck/relaylink/internal/protocol/value"
	"github.com/danmuck/relaylink/internal/testutil/testlog"
	"github.com/danmuck/relaylink/internal/transport"
)

type fakeReceiver struct {
	handle   Handle
	data     []value.Value
	timeouts []bool
	asmErrs  []error
}

func (f *fakeReceiver) OnData(v value.Value)      { f.data = append(f.data, v) }
func (f *fakeReceiver) OnTimeout(b bool, h Handle) { f.timeouts = append(f.timeouts, b) }
func (f *fakeReceiver) RegisterStream(h Handle)    { f.handle = h }
func (f *fakeReceiver) OnAssemblyError(err error)  { f.asmErrs = append(f.asmErrs, err) }

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func tickBoth(n int, c, w *Engine) {
	for i := 0; i < n; i++ {
		c.Tick()
		w.Tick()
	}
}

func newPair(t *testing.T, blockSize int, timeout time.Duration) (*Engine, *fakeReceiver, *Engine, *fakeReceiver) {
	t.Helper()
	ctrlTr, workTr := transport.NewLoopbackPair(blockSize)
	cRecv := &fakeReceiver{}
	wRecv := &fakeReceiver{}
	c := New(ctrlTr, cRecv, timeout)
	w := New(workTr, wRecv, timeout)
	return c, cRecv, w, wRecv
}

func TestRoundTripControllerToWorker(t *testing.T) {
	testlog.Start(t)
	c, _, w, wRecv := newPair(t, 1024, time.Second)
	if err := c.Write(value.NewString("1234567890")); err != nil {
		t.Fatalf("write: %v", err)
	}
	tickBoth(5, c, w)
	if len(wRecv.data) != 1 || wRecv.data[0].Str != "1234567890" {
		t.Fatalf("worker did not receive expected value, got %+v", wRecv.data)
	}
}

func TestRoundTripWorkerToController(t *testing.T) {
	testlog.Start(t)
	c, cRecv, w, _ := newPair(t, 1024, time.Second)
	if err := w.Write(value.NewString("1234567890")); err != nil {
		t.Fatalf("write: %v", err)
	}
	tickBoth(5, c, w)
	if len(cRecv.data) != 1 || cRecv.data[0].Str != "1234567890" {
		t.Fatalf("controller did not receive expected value, got %+v", cRecv.data)
	}
}

func TestStructuralRoundTripNestedMap(t *testing.T) {
	testlog.Start(t)
	c, cRecv, w, wRecv := newPair(t, 1024, time.Second)
	ctrlVal := value.NewMap(map[string]value.Value{
		"abc": value.NewMap(map[string]value.Value{
			"def": value.NewMap(map[string]value.Value{
				"v": value.NewInt(123),
			}),
		}),
	})
	workerVal := value.NewMap(map[string]value.Value{"foo": value.NewString("bar")})
	if err := c.Write(ctrlVal); err != nil {
		t.Fatalf("controller write: %v", err)
	}
	if err := w.Write(workerVal); err != nil {
		t.Fatalf("worker write: %v", err)
	}
	tickBoth(5, c, w)
	if len(wRecv.data) != 1 || !value.Equal(wRecv.data[0], ctrlVal) {
		t.Fatalf("worker did not receive structural match, got %+v", wRecv.data)
	}
	if len(cRecv.data) != 1 || !value.Equal(cRecv.data[0], workerVal) {
		t.Fatalf("controller did not receive structural match, got %+v", cRecv.data)
	}
}

func TestIdempotentReadDoesNotRedeliver(t *testing.T) {
	testlog.Start(t)
	c, _, w, wRecv := newPair(t, 1024, time.Second)
	if err := c.Write(value.NewString("hello")); err != nil {
		t.Fatalf("write: %v", err)
	}
	tickBoth(3, c, w)
	if len(wRecv.data) != 1 {
		t.Fatalf("expected exactly one delivery before idle ticks, got %d", len(wRecv.data))
	}
	for i := 0; i < 5; i++ {
		w.Tick()
	}
	if len(wRecv.data) != 1 {
		t.Fatalf("idle ticks re-delivered the same message, got %d deliveries", len(wRecv.data))
	}
}

func TestSequenceWrapAcrossTenMessages(t *testing.T) {
	testlog.Start(t)
	c, _, w, wRecv := newPair(t, 1024, time.Second)
	want := make([]string, 0, 12)
	for i := 0; i < 12; i++ {
		s := strings.Repeat("x", i+1)
		want = append(want, s)
		if err := c.Write(value.NewString(s)); err != nil {
			t.Fatalf("write %d: %v", i, err)
		}
	}
	tickBoth(60, c, w)
	if len(wRecv.data) != len(want) {
		t.Fatalf("expected %d deliveries across the seq wrap, got %d", len(want), len(wRecv.data))
	}
	for i, v := range wRecv.data {
		if v.Str != want[i] {
			t.Fatalf("delivery %d: got %q want %q", i, v.Str, want[i])
		}
	}
}

func TestTimeoutFiresWhenPeerStopsTicking(t *testing.T) {
	testlog.Start(t)
	clk := &fakeClock{t: time.Now()}
	ctrlTr, _ := transport.NewLoopbackPair(1024)
	cRecv := &fakeReceiver{}
	c := NewWithClock(ctrlTr, cRecv, time.Second, clk.now)

	c.Tick()
	clk.advance(2 * time.Second)
	c.Tick()

	found := false
	for _, to := range cRecv.timeouts {
		if to {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected OnTimeout(true) after the timeout window elapsed, got %+v", cRecv.timeouts)
	}
}

func TestTimeoutClearsOnResumption(t *testing.T) {
	testlog.Start(t)
	clk := &fakeClock{t: time.Now()}
	ctrlTr, workTr := transport.NewLoopbackPair(1024)
	cRecv := &fakeReceiver{}
	wRecv := &fakeReceiver{}
	c := NewWithClock(ctrlTr, cRecv, time.Second, clk.now)
	w := NewWithClock(workTr, wRecv, time.Second, clk.now)

	c.Tick()
	clk.advance(2 * time.Second)
	c.Tick()

	cRecv.timeouts = nil
	c.Tick()
	w.Tick()
	c.Tick()

	sawFalse := false
	for _, to := range cRecv.timeouts {
		if !to {
			sawFalse = true
		}
	}
	if !sawFalse {
		t.Fatalf("expected OnTimeout(false) once the peer resumed, got %+v", cRecv.timeouts)
	}

	if err := c.Write(value.NewString("back")); err != nil {
		t.Fatalf("write after recovery: %v", err)
	}
	tickBoth(5, c, w)
	if len(wRecv.data) == 0 || wRecv.data[len(wRecv.data)-1].Str != "back" {
		t.Fatalf("write after recovery did not complete, got %+v", wRecv.data)
	}
}

func TestWriteRejectsOversizeData(t *testing.T) {
	testlog.Start(t)
	c, _, _, _ := newPair(t, 1024, time.Second)
	huge := make([]byte, 1024*1000)
	err := c.Write(value.NewBytes(huge))
	if err == nil {
		t.Fatalf("expected an error for oversize write")
	}
	if err.Error() != "Too large data" {
		t.Fatalf("got error %q, want %q", err.Error(), "Too large data")
	}
}

func TestCorruptedChecksumDropsSilently(t *testing.T) {
	testlog.Start(t)
	cellCW := &transport.Cell{}
	cellWC := &transport.Cell{}
	ctrlTr := transport.NewRadio(cellCW, cellWC, 1024, true)
	workTr := transport.NewRadio(cellWC, cellCW, 1024, false)
	cRecv := &fakeReceiver{}
	wRecv := &fakeReceiver{}
	c := New(ctrlTr, cRecv, time.Second)
	w := New(workTr, wRecv, time.Second)

	if err := c.Write(value.NewString("corrupt-me")); err != nil {
		t.Fatalf("write: %v", err)
	}
	c.Tick()

	corrupted := corruptChecksum(cellCW.Get())
	cellCW.Set(corrupted)

	w.Tick()
	c.Tick()

	if len(wRecv.data) != 0 {
		t.Fatalf("expected no delivery for a corrupted message, got %+v", wRecv.data)
	}

	if err := c.Write(value.NewString("clean")); err != nil {
		t.Fatalf("write: %v", err)
	}
	for i := 0; i < 5; i++ {
		c.Tick()
		w.Tick()
	}
	if len(wRecv.data) != 1 || wRecv.data[0].Str != "clean" {
		t.Fatalf("expected the next clean message to be delivered, got %+v", wRecv.data)
	}
}

// corruptChecksum flips the two hex digits making up a frame's checksum
// field (byte offsets 3:5) to a different value, for tests that simulate
// corruption in transit.
func corruptChecksum(s string) string {
	b := []byte(s)
	if len(b) < 5 {
		return s
	}
	if string(b[3:5]) == "ff" {
		b[3], b[4] = '0', '0'
	} else {
		b[3], b[4] = 'f', 'f'
	}
	return string(b)
}

func TestAssemblyErrorHookOnUndecodablePayload(t *testing.T) {
	testlog.Start(t)
	ctrlTr, workTr := transport.NewLoopbackPair(1024)
	cRecv := &fakeReceiver{}
	wRecv := &fakeReceiver{}
	_ = New(ctrlTr, cRecv, time.Second)
	w := New(workTr, wRecv, time.Second)

	badPayload := []byte("not valid json")
	ctrlTr.Send(frame.Encode(frame.Frame{
		New:       true,
		Checksum:  frame.Checksum(badPayload),
		Remaining: 0,
		Seq:       0,
		Cmd:       command.Data,
		Payload:   badPayload,
	}))

	w.Tick()

	if len(wRecv.data) != 0 {
		t.Fatalf("a checksum-valid but undecodable payload must not reach OnData, got %+v", wRecv.data)
	}
	if len(wRecv.asmErrs) != 1 {
		t.Fatalf("expected exactly one OnAssemblyError, got %d", len(wRecv.asmErrs))
	}
}

func TestLongMixedContentRoundTripEitherDirection(t *testing.T) {
	testlog.Start(t)
	c, cRecv, w, wRecv := newPair(t, 1024, time.Second)
	ctrlPayload := strings.Repeat("a1B2!@#$ 日本語", 60)
	workerPayload := strings.Repeat("Z9y8X7w6-v5U4t3", 60)

	if err := c.Write(value.NewString(ctrlPayload)); err != nil {
		t.Fatalf("controller write: %v", err)
	}
	for i := 0; i < 500; i++ {
		if i%3 == 0 {
			w.Tick()
		}
		c.Tick()
	}
	if len(wRecv.data) != 1 || wRecv.data[0].Str != ctrlPayload {
		t.Fatalf("worker did not receive the long payload intact")
	}

	if err := w.Write(value.NewString(workerPayload)); err != nil {
		t.Fatalf("worker write: %v", err)
	}
	for i := 0; i < 500; i++ {
		c.Tick()
		if i%3 == 0 {
			w.Tick()
		}
	}
	if len(cRecv.data) != 1 || cRecv.data[0].Str != workerPayload {
		t.Fatalf("controller did not receive the long payload intact")
	}
}
