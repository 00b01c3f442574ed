package gateway

import (
	"fmt"
	"time"

	domainErrors "github.com/ses9133/pointpay/internal/domain/errors"
	"github.com/ses9133/pointpay/internal/domain/payment"

	"github.com/sony/gobreaker/v2"
)

// Resolver maps a payment method to its registered client. Registration
// happens once at startup; there is no retry or caching logic here.
// Every client gets its own circuit breaker so a flapping provider does
// not take the others down with it.
type Resolver struct {
	clients  map[payment.Method]Client
	breakers map[payment.Method]*gobreaker.CircuitBreaker[*Result]
}

func NewResolver(clients ...Client) *Resolver {
	r := &Resolver{
		clients:  make(map[payment.Method]Client),
		breakers: make(map[payment.Method]*gobreaker.CircuitBreaker[*Result]),
	}
	for _, c := range clients {
		r.Register(c)
	}
	return r
}

func (r *Resolver) Register(c Client) {
	method := payment.Method(c.Name())
	r.clients[method] = c
	r.breakers[method] = gobreaker.NewCircuitBreaker[*Result](gobreaker.Settings{
		Name:        c.Name(),
		MaxRequests: 10,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 10 && failureRatio >= 0.6
		},
	})
}

// Resolve returns the client and breaker for the given method, or
// ErrUnsupportedMethod for anything outside the registered set.
func (r *Resolver) Resolve(method payment.Method) (Client, *gobreaker.CircuitBreaker[*Result], error) {
	c, ok := r.clients[method]
	if !ok {
		return nil, nil, fmt.Errorf("method %q: %w", method, domainErrors.ErrUnsupportedMethod)
	}
	return c, r.breakers[method], nil
}
