package endpoint

import "time"

// promise is a one-shot completion signal bridging an asynchronous transport
// callback to a blocking caller. The first resolution wins; later ones are
// dropped, so a late callback after a timeout is harmless.
type promise struct {
	ch chan error
}

func newPromise() *promise {
	return &promise{ch: make(chan error, 1)}
}

// complete resolves the promise. Safe to call from any goroutine and more
// than once; only the first call is observed.
func (p *promise) complete(err error) {
	select {
	case p.ch <- err:
	default:
	}
}

// await blocks until the promise resolves or the wait window elapses.
// Expiry is reported as errWaitTimeout, distinct from any resolved error.
func (p *promise) await(wait time.Duration) error {
	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case err := <-p.ch:
		return err
	case <-timer.C:
		return errWaitTimeout
	}
}
