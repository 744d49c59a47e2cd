package chain

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/oadtz/eth-pepe-bot/internal/logger"
)

// ErrAllProvidersExhausted is returned when every endpoint has failed for
// the full retry budget. The last underlying error is wrapped alongside it.
var ErrAllProvidersExhausted = errors.New("all rpc providers exhausted")

var rateLimitPhrases = []string{"429", "too many requests", "rate limit", "quota exceeded"}

// IsRateLimited classifies an endpoint error as a rate-limit rejection.
func IsRateLimited(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, phrase := range rateLimitPhrases {
		if strings.Contains(msg, phrase) {
			return true
		}
	}
	return false
}

// Pool rotates reads across multiple endpoints. Failing endpoints are
// quarantined until ResetFailed is called; quarantine never expires on its
// own.
type Pool struct {
	mu         sync.Mutex
	nodes      []Node
	cursor     int
	failed     map[string]struct{}
	maxRetries int
	retryDelay time.Duration

	// OnQuarantine, when set, is invoked after an endpoint is quarantined.
	OnQuarantine func(url string, rateLimited bool)
}

func NewPool(nodes []Node, maxRetries int, retryDelay time.Duration) *Pool {
	if maxRetries <= 0 {
		maxRetries = 3
	}
	return &Pool{
		nodes:      nodes,
		failed:     make(map[string]struct{}),
		maxRetries: maxRetries,
		retryDelay: retryDelay,
	}
}

// Current returns the node at the rotation cursor.
func (p *Pool) Current() Node {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.nodes[p.cursor]
}

// CurrentIndex returns the rotation cursor position.
func (p *Pool) CurrentIndex() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cursor
}

func (p *Pool) rotateLocked() {
	p.cursor = (p.cursor + 1) % len(p.nodes)
}

// MarkFailed quarantines the endpoint and, when it holds the cursor,
// advances rotation past it.
func (p *Pool) MarkFailed(url string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, n := range p.nodes {
		if n.URL() == url {
			p.failed[url] = struct{}{}
			break
		}
	}
	if p.nodes[p.cursor].URL() == url {
		p.rotateLocked()
	}
}

// FailedCount returns the number of quarantined endpoints.
func (p *Pool) FailedCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.failed)
}

// ResetFailed clears the quarantine set. Called on a schedule by the
// operator loop, never by the pool itself.
func (p *Pool) ResetFailed() {
	p.mu.Lock()
	n := len(p.failed)
	p.failed = make(map[string]struct{})
	p.mu.Unlock()
	if n > 0 {
		logger.Info(context.Background(), "Reset failed RPC providers", "count", n)
	}
}

// Call executes op against the current endpoint, rotating and retrying on
// failure. The attempt budget is maxRetries x endpoint count.
func (p *Pool) Call(ctx context.Context, op string, fn func(ctx context.Context, n Node) error) error {
	attempts := p.maxRetries * len(p.nodes)
	var lastErr error

	for attempt := 0; attempt < attempts; attempt++ {
		node := p.Current()
		err := fn(ctx, node)
		if err == nil {
			logger.Debug(ctx, "RPC call succeeded", "op", op, "provider", node.URL())
			return nil
		}
		lastErr = err

		rateLimited := IsRateLimited(err)
		if rateLimited {
			logger.Warn(ctx, "Rate limit hit on RPC provider", "op", op, "provider", node.URL())
		} else {
			logger.Warn(ctx, "RPC provider failed", "op", op, "provider", node.URL(), "error", err)
		}
		p.MarkFailed(node.URL())
		if p.OnQuarantine != nil {
			p.OnQuarantine(node.URL(), rateLimited)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(p.retryDelay):
		}
	}

	logger.Error(ctx, "All RPC providers failed", "op", op, "attempts", attempts)
	return fmt.Errorf("%w after %d attempts: %w", ErrAllProvidersExhausted, attempts, lastErr)
}
