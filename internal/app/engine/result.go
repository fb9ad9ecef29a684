package engine

import "context"

// OrderResult is the completion handle returned by SubmitOrder. It is
// single-shot: resolved exactly once (by the worker that processed the
// order, or with false by Stop or by a submission after Stop), and
// readable once.
type OrderResult struct {
	ch chan bool
}

func newOrderResult() *OrderResult {
	return &OrderResult{ch: make(chan bool, 1)}
}

// resolve delivers the outcome. Extra resolutions are dropped so the
// handle can never block a worker.
func (r *OrderResult) resolve(accepted bool) {
	select {
	case r.ch <- accepted:
	default:
	}
}

// Get blocks until the order has been processed and returns whether the
// book accepted it. A rejected, cancelled-on-shutdown, or invalid order
// resolves to false.
func (r *OrderResult) Get(ctx context.Context) (bool, error) {
	select {
	case accepted := <-r.ch:
		return accepted, nil
	case <-ctx.Done():
		return false, ctx.Err()
	}
}
