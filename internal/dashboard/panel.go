// Package dashboard holds the three analytics query panels. Each panel owns
// its parameters, its single latest result and its own error; panels never
// share state.
package dashboard

// Ticket identifies one request issued by a panel.
type Ticket[Q comparable] struct {
	Query Q
	seq   uint64
}

// Panel is a query panel whose result is a pure function of its parameters.
type Panel[Q comparable, R any] struct {
	query   Q
	result  R
	has     bool
	err     error
	seq     uint64
	loading bool
}

// NewPanel returns a panel with initial parameters q and no result.
func NewPanel[Q comparable, R any](q Q) *Panel[Q, R] {
	return &Panel[Q, R]{query: q}
}

// Query returns the current parameters.
func (p *Panel[Q, R]) Query() Q { return p.query }

// SetQuery changes the parameters. A change discards the previous result
// and error and invalidates any request still in flight.
func (p *Panel[Q, R]) SetQuery(q Q) bool {
	if q == p.query {
		return false
	}
	p.query = q
	p.clear()
	p.seq++
	p.loading = false
	return true
}

// Begin issues a request for the current parameters.
func (p *Panel[Q, R]) Begin() Ticket[Q] {
	p.seq++
	p.loading = true
	return Ticket[Q]{Query: p.query, seq: p.seq}
}

// Resolve stores the outcome of t. Only the latest ticket is accepted.
func (p *Panel[Q, R]) Resolve(t Ticket[Q], r R, err error) bool {
	if t.seq != p.seq || t.Query != p.query {
		return false
	}
	p.loading = false
	if err != nil {
		p.clear()
		p.err = err
		return true
	}
	p.result = r
	p.has = true
	p.err = nil
	return true
}

func (p *Panel[Q, R]) clear() {
	var zero R
	p.result = zero
	p.has = false
	p.err = nil
}

// Reset clears the result and cancels interest in any pending request.
func (p *Panel[Q, R]) Reset(q Q) {
	p.query = q
	p.clear()
	p.seq++
	p.loading = false
}

// Result returns the latest result and whether there is one.
func (p *Panel[Q, R]) Result() (R, bool) { return p.result, p.has }

func (p *Panel[Q, R]) Err() error    { return p.err }
func (p *Panel[Q, R]) Loading() bool { return p.loading }
