package neo4jstore

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// Runner executes one parameterized Cypher statement and buffers the result.
type Runner interface {
	Run(ctx context.Context, cypher string, params map[string]any) (*neo4j.EagerResult, error)
}

// DriverRunner runs statements through the official driver against one database.
type DriverRunner struct {
	Driver   neo4j.DriverWithContext
	Database string
}

// Dial creates a driver with basic auth and checks connectivity.
func Dial(ctx context.Context, uri, user, password, database string) (*DriverRunner, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(user, password, ""))
	if err != nil {
		return nil, fmt.Errorf("create neo4j driver: %w", err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		driver.Close(ctx)
		return nil, mapErr("dial", "", err)
	}
	return &DriverRunner{Driver: driver, Database: database}, nil
}

// Run executes cypher with automatic session and transaction handling.
func (r *DriverRunner) Run(ctx context.Context, cypher string, params map[string]any) (*neo4j.EagerResult, error) {
	return neo4j.ExecuteQuery(ctx, r.Driver, cypher, params,
		neo4j.EagerResultTransformer,
		neo4j.ExecuteQueryWithDatabase(r.Database),
	)
}

// Close releases the driver's connections.
func (r *DriverRunner) Close(ctx context.Context) error {
	return r.Driver.Close(ctx)
}
