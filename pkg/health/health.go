package health

import (
	"context"
	"fmt"
	"time"
)

type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusUnhealthy Status = "unhealthy"
)

type Checker interface {
	Check(ctx context.Context) error
	Name() string
}

type Health struct {
	Status    Status                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Checks    map[string]CheckResult `json:"checks"`
}

type CheckResult struct {
	Status    Status    `json:"status"`
	Message   string    `json:"message,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type CheckerRegistry struct {
	checkers []Checker
}

func NewCheckerRegistry() *CheckerRegistry {
	return &CheckerRegistry{
		checkers: make([]Checker, 0),
	}
}

func (r *CheckerRegistry) Register(checker Checker) {
	r.checkers = append(r.checkers, checker)
}

func (r *CheckerRegistry) Check(ctx context.Context) Health {
	results := make(map[string]CheckResult)
	overall := StatusHealthy

	for _, checker := range r.checkers {
		result := CheckResult{
			Status:    StatusHealthy,
			Timestamp: time.Now(),
		}

		if err := checker.Check(ctx); err != nil {
			result.Status = StatusUnhealthy
			result.Message = err.Error()
			overall = StatusUnhealthy
		}

		results[checker.Name()] = result
	}

	return Health{
		Status:    overall,
		Timestamp: time.Now(),
		Checks:    results,
	}
}

// Pinger is anything with a cheap liveness probe; the template blob
// store satisfies it.
type Pinger interface {
	Ping(ctx context.Context) error
}

type BlobStoreChecker struct {
	store Pinger
}

func NewBlobStoreChecker(store Pinger) *BlobStoreChecker {
	return &BlobStoreChecker{store: store}
}

func (c *BlobStoreChecker) Name() string {
	return "blob_store"
}

func (c *BlobStoreChecker) Check(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := c.store.Ping(ctx); err != nil {
		return fmt.Errorf("blob store ping failed: %w", err)
	}
	return nil
}
