package app

import (
	"context"
	"fmt"

	"github.com/machinebox/graphql"

	"github.com/coverwallet/httplog/internal/config"
	"github.com/coverwallet/httplog/internal/logger"
)

// GraphQLOptions describes a GraphQL operation.
type GraphQLOptions struct {
	// Query is the GraphQL document.
	Query string
	// Variables are passed as string variables of the operation.
	Variables map[string]string
	// Headers are "Name: value" pairs added to the request.
	Headers []string
}

// ExecuteGraphQLCommand runs one GraphQL operation against endpoint through the
// logging client and returns the decoded data.
func ExecuteGraphQLCommand(
	ctx context.Context,
	cfg *config.Config,
	endpoint string,
	opts GraphQLOptions,
) (map[string]any, error) {
	headers, err := ParseHeaders(opts.Headers)
	if err != nil {
		return nil, err
	}

	client := graphql.NewClient(endpoint,
		graphql.WithHTTPClient(NewHTTPClient(cfg, NewPipeline(cfg, nil), nil)))
	client.Log = func(s string) {
		logger.Debug(ctx, s)
	}

	req := graphql.NewRequest(opts.Query)

	for name, value := range opts.Variables {
		req.Var(name, value)
	}

	for name, values := range headers {
		for _, value := range values {
			req.Header.Add(name, value)
		}
	}

	var data map[string]any
	if err = client.Run(ctx, req, &data); err != nil {
		return nil, fmt.Errorf("failed to run graphql query: %w", err)
	}

	return data, nil
}
