package partition

import (
	"context"
	"fmt"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/athena"
	athenatypes "github.com/aws/aws-sdk-go-v2/service/athena/types"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"lakehose/internal/config"
	"lakehose/internal/logger"
)

// Catalog registers storage partitions with the query engine so new
// data is queryable without a crawler run.
type Catalog interface {
	AddPartition(ctx context.Context, key Key) error
}

type queryRunner interface {
	StartQueryExecution(ctx context.Context, params *athena.StartQueryExecutionInput, optFns ...func(*athena.Options)) (*athena.StartQueryExecutionOutput, error)
}

// AthenaCatalog submits idempotent ADD IF NOT EXISTS partition DDL.
// Submissions are rate limited and run behind a circuit breaker: a
// broken catalog slows nothing down and record delivery never depends
// on the result.
type AthenaCatalog struct {
	client         queryRunner
	database       string
	table          string
	eventsBucket   string
	outputLocation string
	workGroup      string
	limiter        *rate.Limiter
	breaker        *gobreaker.CircuitBreaker
	logger         logger.Logger

	mu          sync.Mutex
	lastApplied *Key
}

func NewAthenaCatalog(awsCfg aws.Config, endpoint string, cfg config.CatalogConfig, log logger.Logger) *AthenaCatalog {
	opts := []func(*athena.Options){}
	if endpoint != "" {
		opts = append(opts, func(o *athena.Options) {
			o.BaseEndpoint = aws.String(endpoint)
		})
	}

	return newCatalog(athena.NewFromConfig(awsCfg, opts...), cfg, log)
}

func newCatalog(client queryRunner, cfg config.CatalogConfig, log logger.Logger) *AthenaCatalog {
	return &AthenaCatalog{
		client:         client,
		database:       cfg.Database,
		table:          cfg.Table,
		eventsBucket:   cfg.EventsBucket,
		outputLocation: cfg.OutputLocation,
		workGroup:      cfg.WorkGroup,
		limiter:        rate.NewLimiter(rate.Limit(float64(cfg.QueriesPerMinute)/60.0), cfg.QueriesPerMinute),
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name: "athena-catalog",
		}),
		logger: log,
	}
}

// AddPartition submits the DDL for key unless this instance already
// applied it. The statement itself is idempotent, so skipping under
// rate pressure is safe: the next record in the same hour bucket
// triggers it again.
func (c *AthenaCatalog) AddPartition(ctx context.Context, key Key) error {
	c.mu.Lock()
	if c.lastApplied != nil && *c.lastApplied == key {
		c.mu.Unlock()
		return nil
	}
	c.mu.Unlock()

	if !c.limiter.Allow() {
		c.logger.DebugwCtx(ctx, "Partition DDL rate limited, skipping",
			"partition", key.TimestampSpec(),
		)
		return nil
	}

	ddl := fmt.Sprintf(
		"ALTER TABLE `%s`.`%s` ADD IF NOT EXISTS PARTITION (ingest_timestamp='%s') LOCATION 's3://%s/events/%s'",
		c.database, c.table, key.TimestampSpec(), c.eventsBucket, key.Path(),
	)

	input := &athena.StartQueryExecutionInput{
		QueryString: aws.String(ddl),
		QueryExecutionContext: &athenatypes.QueryExecutionContext{
			Database: aws.String(c.database),
		},
		WorkGroup: aws.String(c.workGroup),
	}
	if c.outputLocation != "" {
		input.ResultConfiguration = &athenatypes.ResultConfiguration{
			OutputLocation: aws.String(c.outputLocation),
		}
	}

	_, err := c.breaker.Execute(func() (interface{}, error) {
		return c.client.StartQueryExecution(ctx, input)
	})
	if err != nil {
		return fmt.Errorf("add partition %s: %w", key.TimestampSpec(), err)
	}

	c.mu.Lock()
	applied := key
	c.lastApplied = &applied
	c.mu.Unlock()

	c.logger.DebugwCtx(ctx, "Partition registered",
		"partition", key.TimestampSpec(),
	)
	return nil
}
