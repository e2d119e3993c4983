package queue

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/bandstand/onboarding-api/internal/api/metrics"
)

const (
	defaultWorkers = 4
	channelBuffer  = 64
)

// ErrPoolStopped is returned for work submitted after the pool shut down.
var ErrPoolStopped = errors.New("hash pool stopped")

// SecretHasher is the CPU-bound hashing primitive the pool runs.
type SecretHasher interface {
	Hash(secret string) (string, error)
	Verify(secret, hash string) bool
}

type jobKind int

const (
	jobHash jobKind = iota
	jobVerify
)

type job struct {
	kind   jobKind
	secret string
	hash   string
	result chan jobResult
}

type jobResult struct {
	hash string
	ok   bool
	err  error
}

// HashPool runs password hashing on a fixed set of workers so that request
// goroutines wait on a channel instead of each competing for CPU.
type HashPool struct {
	jobs   chan job
	hasher SecretHasher
	size   int
	log    zerolog.Logger

	done     chan struct{}
	stopOnce sync.Once
}

// NewHashPool creates a pool with numWorkers workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewHashPool(numWorkers int, hasher SecretHasher, log zerolog.Logger) *HashPool {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	return &HashPool{
		jobs:   make(chan job, channelBuffer),
		hasher: hasher,
		size:   numWorkers,
		log:    log,
		done:   make(chan struct{}),
	}
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled,
// after which Hash and Verify fail with ErrPoolStopped.
func (p *HashPool) Start(ctx context.Context) {
	for i := 0; i < p.size; i++ {
		go p.runWorker(ctx, i)
	}
	go func() {
		<-ctx.Done()
		p.stopOnce.Do(func() { close(p.done) })
		p.log.Debug().Msg("hash pool stopped")
	}()
	p.log.Debug().Int("workers", p.size).Msg("hash pool started")
}

// Hash queues secret for hashing and waits for the result.
func (p *HashPool) Hash(ctx context.Context, secret string) (string, error) {
	res, err := p.submit(ctx, job{kind: jobHash, secret: secret})
	if err != nil {
		return "", err
	}
	return res.hash, res.err
}

// Verify queues a comparison and waits for it. A cancelled context is
// reported as a mismatch.
func (p *HashPool) Verify(ctx context.Context, secret, hash string) bool {
	res, err := p.submit(ctx, job{kind: jobVerify, secret: secret, hash: hash})
	if err != nil {
		return false
	}
	return res.ok
}

func (p *HashPool) submit(ctx context.Context, j job) (jobResult, error) {
	j.result = make(chan jobResult, 1)

	select {
	case <-p.done:
		return jobResult{}, ErrPoolStopped
	default:
	}

	select {
	case <-ctx.Done():
		return jobResult{}, ctx.Err()
	case <-p.done:
		return jobResult{}, ErrPoolStopped
	case p.jobs <- j:
	}
	metrics.HashQueueDepth.Set(float64(len(p.jobs)))

	select {
	case <-ctx.Done():
		return jobResult{}, ctx.Err()
	case res := <-j.result:
		return res, nil
	case <-p.done:
		return jobResult{}, ErrPoolStopped
	}
}

func (p *HashPool) runWorker(ctx context.Context, id int) {
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-p.jobs:
			start := time.Now()
			var res jobResult
			switch j.kind {
			case jobHash:
				res.hash, res.err = p.hasher.Hash(j.secret)
				if res.err != nil {
					p.log.Error().Err(res.err).Int("worker_id", id).Msg("hash failed")
				}
			case jobVerify:
				res.ok = p.hasher.Verify(j.secret, j.hash)
			}
			metrics.HashDuration.WithLabelValues(j.kind.String()).Observe(time.Since(start).Seconds())
			j.result <- res
		}
	}
}

func (k jobKind) String() string {
	if k == jobVerify {
		return "verify"
	}
	return "hash"
}
