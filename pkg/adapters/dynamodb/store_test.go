package dynamodb

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/require"

	"github.com/KIIGIN/bot-constructor/pkg/domain"
	"github.com/KIIGIN/bot-constructor/pkg/ports"
)

// fakeDynamo keeps items in a map keyed by the PK attribute.
type fakeDynamo struct {
	mu     sync.Mutex
	items  map[string]map[string]types.AttributeValue
	getErr error
	putErr error

	lastPut *dynamodb.PutItemInput
}

func newFakeDynamo() *fakeDynamo {
	return &fakeDynamo{items: make(map[string]map[string]types.AttributeValue)}
}

func pk(key map[string]types.AttributeValue) string {
	return key[attrKey].(*types.AttributeValueMemberS).Value
}

func (f *fakeDynamo) GetItem(_ context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	return &dynamodb.GetItemOutput{Item: f.items[pk(in.Key)]}, nil
}

func (f *fakeDynamo) PutItem(_ context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastPut = in
	if f.putErr != nil {
		return nil, f.putErr
	}
	f.items[pk(in.Item)] = in.Item
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeDynamo) DeleteItem(_ context.Context, in *dynamodb.DeleteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.items, pk(in.Key))
	return &dynamodb.DeleteItemOutput{}, nil
}

func mustNewStore(t *testing.T, db *fakeDynamo, opts ...Option) *Store {
	t.Helper()
	s, err := New(db, "bot-state", opts...)
	require.NoError(t, err)
	return s
}

func TestStore_Contract(t *testing.T) {
	ports.RunStateStoreContract(t, mustNewStore(t, newFakeDynamo()))
}

func TestNew_Validation(t *testing.T) {
	_, err := New(nil, "t")
	require.Error(t, err)
	_, err = New(newFakeDynamo(), "  ")
	require.Error(t, err)
}

func TestStore_WritesTTL(t *testing.T) {
	db := newFakeDynamo()
	s := mustNewStore(t, db, WithTTL(time.Hour))
	fixed := time.Unix(1_700_000_000, 0)
	s.now = func() time.Time { return fixed }

	require.NoError(t, s.Save(context.Background(), domain.NewState(9, "1")))
	require.NotNil(t, db.lastPut)
	require.Equal(t, "bot-state", *db.lastPut.TableName)
	require.Equal(t, "USER#9", pk(db.lastPut.Item))

	ttl := db.lastPut.Item[attrTTL].(*types.AttributeValueMemberN)
	require.Equal(t, strconv.FormatInt(fixed.Add(time.Hour).Unix(), 10), ttl.Value)
}

func TestStore_ExpiredItemIsAbsent(t *testing.T) {
	db := newFakeDynamo()
	s := mustNewStore(t, db, WithTTL(time.Minute))
	require.NoError(t, s.Save(context.Background(), domain.NewState(9, "1")))

	s.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	_, err := s.Load(context.Background(), 9)
	require.ErrorIs(t, err, domain.ErrStateNotFound)
}

func TestStore_Errors(t *testing.T) {
	db := newFakeDynamo()
	db.getErr = errors.New("boom")
	db.putErr = errors.New("throttled")
	s := mustNewStore(t, db)

	_, err := s.Load(context.Background(), 1)
	require.ErrorContains(t, err, "load state")

	err = s.Save(context.Background(), domain.NewState(1, "1"))
	require.ErrorContains(t, err, "throttled")
}

func TestStore_MalformedItem(t *testing.T) {
	db := newFakeDynamo()
	db.items["USER#3"] = map[string]types.AttributeValue{
		attrKey:   &types.AttributeValueMemberS{Value: "USER#3"},
		attrState: &types.AttributeValueMemberN{Value: "1"},
	}
	_, err := mustNewStore(t, db).Load(context.Background(), 3)
	require.ErrorContains(t, err, "not a string")
}
