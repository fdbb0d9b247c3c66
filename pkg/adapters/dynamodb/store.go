// Package dynamodb stores participant state in an Amazon DynamoDB table.
package dynamodb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/KIIGIN/bot-constructor/pkg/domain"
)

const (
	// DefaultTTL matches the lifetime used by the Redis store.
	DefaultTTL = 24 * time.Hour

	attrKey   = "PK"
	attrState = "state"
	attrTTL   = "ttl"
)

// dynamodbAPI is the minimal DynamoDB interface required by Store.
// *dynamodb.Client satisfies it.
type dynamodbAPI interface {
	GetItem(ctx context.Context, in *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DeleteItem(ctx context.Context, in *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
}

// Store implements ports.StateStore on a DynamoDB table keyed by "PK".
// Items carry a numeric "ttl" attribute for DynamoDB expiry.
type Store struct {
	api       dynamodbAPI
	tableName string
	ttl       time.Duration
	now       func() time.Time
}

// Option configures the Store.
type Option func(*Store)

// WithTTL sets the expiration for stored state.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// New creates a Store over the given table.
func New(api dynamodbAPI, tableName string, opts ...Option) (*Store, error) {
	if api == nil {
		return nil, errors.New("dynamodb: api must not be nil")
	}
	if strings.TrimSpace(tableName) == "" {
		return nil, errors.New("dynamodb: table name must not be empty")
	}
	s := &Store{api: api, tableName: tableName, ttl: DefaultTTL, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func stateKey(participantID int64) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		attrKey: &types.AttributeValueMemberS{Value: "USER#" + strconv.FormatInt(participantID, 10)},
	}
}

// Save writes the state with a fresh expiry.
func (s *Store) Save(ctx context.Context, state *domain.State) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("dynamodb: marshal state: %w", err)
	}

	item := stateKey(state.ParticipantID)
	item[attrState] = &types.AttributeValueMemberS{Value: string(data)}
	if s.ttl > 0 {
		expiry := s.now().Add(s.ttl).Unix()
		item[attrTTL] = &types.AttributeValueMemberN{Value: strconv.FormatInt(expiry, 10)}
	}

	if _, err := s.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item:      item,
	}); err != nil {
		return fmt.Errorf("dynamodb: save state: %w", err)
	}
	return nil
}

// Load reads the state of a participant. Items past their ttl are treated as absent,
// since DynamoDB deletes expired items lazily.
func (s *Store) Load(ctx context.Context, participantID int64) (*domain.State, error) {
	out, err := s.api.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.tableName),
		Key:            stateKey(participantID),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("dynamodb: load state: %w", err)
	}
	if out == nil || len(out.Item) == 0 {
		return nil, domain.ErrStateNotFound
	}

	if n, ok := out.Item[attrTTL].(*types.AttributeValueMemberN); ok {
		expiry, err := strconv.ParseInt(n.Value, 10, 64)
		if err == nil && expiry <= s.now().Unix() {
			return nil, domain.ErrStateNotFound
		}
	}

	raw, ok := out.Item[attrState].(*types.AttributeValueMemberS)
	if !ok {
		return nil, fmt.Errorf("dynamodb: attribute %q is not a string", attrState)
	}
	var state domain.State
	if err := json.Unmarshal([]byte(raw.Value), &state); err != nil {
		return nil, fmt.Errorf("dynamodb: unmarshal state: %w", err)
	}
	return state.Normalize(), nil
}

// Delete removes the state item.
func (s *Store) Delete(ctx context.Context, participantID int64) error {
	if _, err := s.api.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.tableName),
		Key:       stateKey(participantID),
	}); err != nil {
		return fmt.Errorf("dynamodb: delete state: %w", err)
	}
	return nil
}
