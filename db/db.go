package db

import (
	"context"
	"fmt"
	"sort"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbiface"
	"github.com/jsphweid/practice/constants"
)

// Backend lists the scores the backend knows about. Each item of the table
// is one score, keyed by its filename in PK.
type Backend struct {
	client dynamodbiface.DynamoDBAPI
	table  string
}

func NewBackend(client dynamodbiface.DynamoDBAPI, table string) *Backend {
	return &Backend{client: client, table: table}
}

// NewBackendFromEnv connects to the table named by SCORES_TABLE at
// DYNAMODB_ENDPOINT.
func NewBackendFromEnv() (*Backend, error) {
	endpoint := constants.GetDynamoEndpoint()
	sess, err := session.NewSession(&aws.Config{
		Region:   aws.String(constants.GetAwsRegion()),
		Endpoint: &endpoint,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create a new DynamoDB session: %w", err)
	}
	return NewBackend(dynamodb.New(sess), constants.GetScoresTable()), nil
}

// ListScoreNames returns every score identifier in the table, sorted. Items
// without a string PK are skipped.
func (b *Backend) ListScoreNames(ctx context.Context) ([]string, error) {
	input := &dynamodb.ScanInput{
		TableName:            aws.String(b.table),
		ProjectionExpression: aws.String("PK"),
	}

	var res []string
	err := b.client.ScanPagesWithContext(ctx, input, func(page *dynamodb.ScanOutput, lastPage bool) bool {
		for _, item := range page.Items {
			if pk, ok := item["PK"]; ok && pk.S != nil {
				res = append(res, *pk.S)
			}
		}
		return true
	})
	if err != nil {
		return nil, fmt.Errorf("error from DynamoDB: %w", err)
	}

	sort.Strings(res)
	return res, nil
}
