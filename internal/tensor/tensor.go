package tensor

import (
	"fmt"
	"log/slog"
	"runtime"
)

// Tensor owns exactly one buffer tagged with a dtype and a shape.
//
// A Tensor is live from construction until Release. Release runs the
// buffer's deallocator exactly once, even when called repeatedly or raced
// against the GC cleanup registered at construction. After release every
// accessor fails with ErrUseAfterFree.
//
// Example:
//
//	t, _ := tensor.FromValue([][3]int32{{1, 2, 3}, {4, 5, 6}})
//	defer t.Release()
//	shape, _ := t.Shape() // [2 3]
type Tensor struct {
	dtype   DataType
	shape   Shape
	h       *handle
	cleanup runtime.Cleanup
}

// newTensor wraps data in a live Tensor. The shape is copied.
func newTensor(dt DataType, shape Shape, data []byte, d Deallocator, ctx any, ownership Ownership) *Tensor {
	t := &Tensor{
		dtype: dt,
		shape: shape.Clone(),
		h:     newHandle(data, d, ctx, ownership),
	}
	t.cleanup = runtime.AddCleanup(t, reclaim, t.h)
	Logger().Debug("tensor created", "tensor", t)
	return t
}

// reclaim releases a handle whose Tensor became unreachable without Release.
func reclaim(h *handle) {
	if h.release() {
		Logger().Warn("tensor reclaimed without Release",
			slog.String("ownership", h.ownership.String()),
			slog.Int("bytes", h.size))
	}
}

func (t *Tensor) live() error {
	if t == nil || t.h == nil {
		return fmt.Errorf("%w: nil tensor", ErrInvalidArgument)
	}
	if t.h.isReleased() {
		return ErrUseAfterFree
	}
	return nil
}

// DType returns the tensor's data type.
func (t *Tensor) DType() (DataType, error) {
	if err := t.live(); err != nil {
		return Invalid, err
	}
	return t.dtype, nil
}

// Shape returns a copy of the tensor's shape.
func (t *Tensor) Shape() (Shape, error) {
	if err := t.live(); err != nil {
		return nil, err
	}
	return t.shape.Clone(), nil
}

// NumDims returns the tensor's rank.
func (t *Tensor) NumDims() (int, error) {
	if err := t.live(); err != nil {
		return 0, err
	}
	return len(t.shape), nil
}

// Dim returns the size of dimension i.
func (t *Tensor) Dim(i int) (int, error) {
	if err := t.live(); err != nil {
		return 0, err
	}
	if i < 0 || i >= len(t.shape) {
		return 0, fmt.Errorf("%w: dimension %d out of range for rank %d", ErrInvalidArgument, i, len(t.shape))
	}
	return t.shape[i], nil
}

// NumElements returns the total number of elements.
func (t *Tensor) NumElements() (int, error) {
	if err := t.live(); err != nil {
		return 0, err
	}
	return t.shape.NumElements(), nil
}

// ByteLen returns the buffer length in bytes.
func (t *Tensor) ByteLen() (int, error) {
	if err := t.live(); err != nil {
		return 0, err
	}
	return t.h.size, nil
}

// Bytes returns the raw buffer.
// WARNING: Direct access to underlying memory. The slice must not be used
// after Release.
func (t *Tensor) Bytes() ([]byte, error) {
	if err := t.live(); err != nil {
		return nil, err
	}
	return t.h.data, nil
}

// Ownership returns which party supplied the tensor's memory.
// A nil tensor reports Owned.
func (t *Tensor) Ownership() Ownership {
	if t == nil || t.h == nil {
		return Owned
	}
	return t.h.ownership
}

// Released reports whether Release has run. A nil tensor holds no memory and
// reports true.
func (t *Tensor) Released() bool {
	if t == nil || t.h == nil {
		return true
	}
	return t.h.isReleased()
}

// Release runs the tensor's deallocator. Only the first call has an effect;
// it is safe to call concurrently.
func (t *Tensor) Release() {
	if t == nil || t.h == nil {
		return
	}
	if t.h.release() {
		t.cleanup.Stop()
		Logger().Debug("tensor released",
			slog.String("dtype", t.dtype.String()),
			slog.String("ownership", t.h.ownership.String()),
			slog.Int("bytes", t.h.size))
	}
}

// Close releases the tensor. It implements io.Closer and always returns nil.
func (t *Tensor) Close() error {
	t.Release()
	return nil
}

// String returns a human-readable representation of the tensor.
func (t *Tensor) String() string {
	if t == nil || t.h == nil {
		return "Tensor[nil]"
	}
	state := "live"
	if t.h.isReleased() {
		state = "released"
	}
	return fmt.Sprintf("Tensor[%s]%v %s %s", t.dtype, t.shape, t.h.ownership, state)
}

// LogValue implements slog.LogValuer.
func (t *Tensor) LogValue() slog.Value {
	if t == nil || t.h == nil {
		return slog.StringValue("nil")
	}
	return slog.GroupValue(
		slog.String("dtype", t.dtype.String()),
		slog.Any("shape", []int(t.shape)),
		slog.Int("bytes", t.h.size),
		slog.String("ownership", t.h.ownership.String()),
		slog.Bool("released", t.h.isReleased()),
	)
}
