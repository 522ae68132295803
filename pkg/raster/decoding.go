package raster

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/matzehuels/ratechart/pkg/blob"
)

// Decoding is the pending result of an asynchronous decode. It settles
// exactly once, either resolved with a Source or rejected with an error;
// later Resolve/Reject calls are ignored.
type Decoding struct {
	done chan struct{}
	once sync.Once
	src  Source
	err  error
}

// Pending returns an unsettled Decoding.
func Pending() *Decoding {
	return &Decoding{done: make(chan struct{})}
}

// Resolved returns a Decoding that has already succeeded.
func Resolved(src Source) *Decoding {
	d := Pending()
	d.Resolve(src)
	return d
}

// Rejected returns a Decoding that has already failed.
func Rejected(err error) *Decoding {
	d := Pending()
	d.Reject(err)
	return d
}

// Resolve settles d with src. It reports whether this call settled d.
func (d *Decoding) Resolve(src Source) bool {
	if src == nil {
		return d.Reject(errors.New("decoder resolved without a source"))
	}
	return d.settle(src, nil)
}

// Reject settles d with err. It reports whether this call settled d.
func (d *Decoding) Reject(err error) bool {
	if err == nil {
		err = errors.New("decode failed")
	}
	return d.settle(nil, err)
}

func (d *Decoding) settle(src Source, err error) bool {
	settled := false
	d.once.Do(func() {
		d.src, d.err = src, err
		settled = true
		close(d.done)
	})
	return settled
}

// Done is closed once d settles.
func (d *Decoding) Done() <-chan struct{} { return d.done }

// Wait blocks until d settles and returns its outcome.
func (d *Decoding) Wait() (Source, error) {
	<-d.done
	return d.src, d.err
}

// Settled reports whether d has settled, without blocking.
func (d *Decoding) Settled() bool {
	select {
	case <-d.done:
		return true
	default:
		return false
	}
}

// Decoder starts decoding an encoded document. Implementations must not
// block: the work happens behind the returned Decoding. The handle stays
// valid until the Decoding settles; the caller releases it afterwards.
type Decoder interface {
	Decode(ctx context.Context, h *blob.Handle) *Decoding
}

// DecoderFunc adapts a function to the Decoder interface.
type DecoderFunc func(ctx context.Context, h *blob.Handle) *Decoding

// Decode calls f.
func (f DecoderFunc) Decode(ctx context.Context, h *blob.Handle) *Decoding { return f(ctx, h) }

// async runs fn on its own goroutine and settles the returned Decoding with
// its result. A panic in fn rejects the decode.
func async(fn func() (Source, error)) *Decoding {
	d := Pending()
	go func() {
		defer func() {
			if r := recover(); r != nil {
				d.Reject(panicError{r})
			}
		}()
		src, err := fn()
		if err != nil {
			d.Reject(err)
			return
		}
		d.Resolve(src)
	}()
	return d
}

type panicError struct{ v any }

func (p panicError) Error() string { return fmt.Sprintf("decoder panic: %v", p.v) }
