package api

import "context"

// BrowsebotAPI defines the interface for the chatbot backend client.
// *Client satisfies this interface. The session layer and tests can use
// fake implementations.
type BrowsebotAPI interface {
	Query(ctx context.Context, query string, maxSources int) (*QueryResponse, error)
	QueryStream(ctx context.Context, query string, maxSources int) (<-chan Event, <-chan error, error)
	ServiceInfo(ctx context.Context) (*ServiceInfo, error)
	Health(ctx context.Context) (*HealthStatus, error)
}
