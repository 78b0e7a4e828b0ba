package database

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/code-sharad/e-com-sub000/internal/customers"
	"github.com/code-sharad/e-com-sub000/internal/models"
)

func namespace(mt *mtest.T) string {
	return mt.Coll.Database().Name() + "." + mt.Coll.Name()
}

func TestProfileStoreList(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("decodes and skips malformed documents", func(mt *mtest.T) {
		joined := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
		mt.AddMockResponses(
			mtest.CreateCursorResponse(1, namespace(mt), mtest.FirstBatch,
				bson.D{{Key: "_id", Value: primitive.NewObjectID()}, {Key: "email", Value: "a@x.com"}, {Key: "createdAt", Value: primitive.NewDateTimeFromTime(joined)}},
				bson.D{{Key: "_id", Value: primitive.NewObjectID()}, {Key: "email", Value: int32(42)}},
			),
			mtest.CreateCursorResponse(0, namespace(mt), mtest.NextBatch,
				bson.D{{Key: "_id", Value: primitive.NewObjectID()}, {Key: "email", Value: "b@x.com"}, {Key: "createdAt", Value: "2025-01-03T00:00:00Z"}},
			),
		)

		store := &ProfileStore{coll: mt.Coll}
		profiles, err := store.ListUserProfiles(context.Background(), customers.ProfileFilter{})
		require.NoError(mt, err)
		require.Len(mt, profiles, 2)
		assert.Equal(mt, "a@x.com", profiles[0].Email)
		assert.True(mt, profiles[0].CreatedAt.Equal(joined))
		assert.Equal(mt, "b@x.com", profiles[1].Email)
		assert.False(mt, profiles[1].CreatedAt.IsZero())
	})
}

func TestProfileStoreSetStatusOverride(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("updates a matched profile", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}))

		store := &ProfileStore{coll: mt.Coll}
		err := store.SetStatusOverride(context.Background(), primitive.NewObjectID().Hex(), models.StatusBlocked)
		assert.NoError(mt, err)
	})

	mt.Run("reports an unmatched profile", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}, bson.E{Key: "nModified", Value: 0}))

		store := &ProfileStore{coll: mt.Coll}
		err := store.SetStatusOverride(context.Background(), primitive.NewObjectID().Hex(), "")
		assert.ErrorIs(mt, err, customers.ErrProfileNotFound)
	})

	mt.Run("rejects a malformed id", func(mt *mtest.T) {
		store := &ProfileStore{coll: mt.Coll}
		err := store.SetStatusOverride(context.Background(), "not-an-id", models.StatusActive)
		assert.ErrorIs(mt, err, customers.ErrProfileNotFound)
	})
}

func TestOrderStoreFallsBackWhenIndexIsMissing(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("planner retries unsorted", func(mt *mtest.T) {
		older := primitive.NewDateTimeFromTime(time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC))
		newer := primitive.NewDateTimeFromTime(time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC))
		mt.AddMockResponses(
			mtest.CreateCommandErrorResponse(mtest.CommandError{
				Code:    2,
				Name:    "BadValue",
				Message: "hint provided does not correspond to an existing index",
			}),
			mtest.CreateCursorResponse(0, namespace(mt), mtest.FirstBatch,
				bson.D{{Key: "_id", Value: primitive.NewObjectID()}, {Key: "customerEmail", Value: "a@x.com"}, {Key: "totalPrice", Value: "12.50"}, {Key: "createdAt", Value: older}},
				bson.D{{Key: "_id", Value: primitive.NewObjectID()}, {Key: "customerEmail", Value: "a@x.com"}, {Key: "totalPrice", Value: int32(30)}, {Key: "createdAt", Value: newer}},
			),
		)

		planner := customers.NewPlanner(&OrderStore{coll: mt.Coll})
		orders, err := planner.ListOrders(context.Background(), customers.OrderQuery{Email: "a@x.com", SortNewestFirst: true})
		require.NoError(mt, err)
		require.Len(mt, orders, 2)
		assert.Equal(mt, models.FlexAmount(30), orders[0].TotalPrice)
		assert.Equal(mt, models.FlexAmount(12.5), orders[1].TotalPrice)
	})

	mt.Run("other command errors are not retried", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    13,
			Name:    "Unauthorized",
			Message: "not authorized on shop to execute command",
		}))

		planner := customers.NewPlanner(&OrderStore{coll: mt.Coll})
		_, err := planner.ListOrders(context.Background(), customers.OrderQuery{SortNewestFirst: true})
		require.Error(mt, err)
		assert.False(mt, errors.Is(err, customers.ErrIndexNotReady))
		assert.False(mt, errors.Is(err, customers.ErrSourceUnavailable))
	})
}

func sentEmailFilter(mt *mtest.T, field string) (pattern, opts string) {
	mt.Helper()
	evt := mt.GetStartedEvent()
	require.NotNil(mt, evt)
	require.Equal(mt, "find", evt.CommandName)
	pattern, opts, ok := evt.Command.Lookup("filter", field).RegexOK()
	require.True(mt, ok, "filter on %s is not a regex: %s", field, evt.Command.Lookup("filter"))
	return pattern, opts
}

func TestEmailLookupsIgnoreCaseAndPadding(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("profiles", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, namespace(mt), mtest.FirstBatch,
			bson.D{{Key: "_id", Value: primitive.NewObjectID()}, {Key: "email", Value: "Alice@X.com"}},
		))

		store := &ProfileStore{coll: mt.Coll}
		profiles, err := store.ListUserProfiles(context.Background(), customers.ProfileFilter{Email: customers.NormalizeEmail("Alice@X.com")})
		require.NoError(mt, err)
		require.Len(mt, profiles, 1)

		pattern, opts := sentEmailFilter(mt, "email")
		assert.Equal(mt, `^\s*alice@x\.com\s*$`, pattern)
		assert.Equal(mt, "i", opts)
	})

	mt.Run("orders", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, namespace(mt), mtest.FirstBatch))

		store := &OrderStore{coll: mt.Coll}
		_, err := store.ListOrders(context.Background(), customers.OrderQuery{Email: "alice@x.com", SortNewestFirst: true})
		require.NoError(mt, err)

		pattern, opts := sentEmailFilter(mt, "customerEmail")
		assert.Equal(mt, `^\s*alice@x\.com\s*$`, pattern)
		assert.Equal(mt, "i", opts)
	})
}

func TestEmailMatch(t *testing.T) {
	re := regexp.MustCompile("(?i)" + emailMatch(" Alice+1@X.com ").Pattern)
	assert.True(t, re.MatchString("alice+1@x.com"))
	assert.True(t, re.MatchString(" ALICE+1@X.COM "))
	assert.False(t, re.MatchString("xalice+1@x.com"))
	assert.False(t, re.MatchString("alice+1@x.com.evil"))
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"missing index", mongo.CommandError{Code: codeIndexNotFound, Message: "index not found with name [x]"}, customers.ErrIndexNotReady},
		{"hint on bad value", mongo.CommandError{Code: codeBadValue, Message: "error processing query: bad hint"}, customers.ErrIndexNotReady},
		{"index build in progress", mongo.CommandError{Code: codeIndexBuildAlreadyInProgress, Message: "index build already in progress"}, customers.ErrIndexNotReady},
		{"sort over memory limit", mongo.CommandError{Code: codeQueryExceededMemoryLimit, Message: "Sort exceeded memory limit"}, customers.ErrIndexNotReady},
		{"network label", mongo.CommandError{Code: 89, Message: "timed out", Labels: []string{"NetworkError"}}, customers.ErrSourceUnavailable},
		{"client disconnected", mongo.ErrClientDisconnected, customers.ErrSourceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, classifyError("find", tt.err), tt.want)
		})
	}

	plain := mongo.CommandError{Code: codeBadValue, Message: "unknown operator: $foo"}
	err := classifyError("find", plain)
	assert.False(t, errors.Is(err, customers.ErrIndexNotReady))
	assert.Nil(t, classifyError("find", nil))

	err = classifyError("find", context.Canceled)
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, errors.Is(err, customers.ErrSourceUnavailable))
}

func TestChangePipeline(t *testing.T) {
	assert.Empty(t, changePipeline(customers.CollectionProfiles, customers.ChangeFilter{}))

	pipeline := changePipeline(customers.CollectionOrders, customers.ChangeFilter{Email: "a.b+c@x.com"})
	require.Len(t, pipeline, 1)
	match := pipeline[0][0]
	assert.Equal(t, "$match", match.Key)

	or := match.Value.(bson.M)["$or"].(bson.A)
	byEmail := or[0].(bson.M)["fullDocument.customerEmail"].(primitive.Regex)
	assert.Equal(t, `^\s*a\.b\+c@x\.com\s*$`, byEmail.Pattern)
	assert.Equal(t, "i", byEmail.Options)
	assert.Equal(t, bson.M{"operationType": "delete"}, or[1])
}
