package audit_test

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/dmitrymomot/venuehub/pkg/audit"
)

func TestMongoStorage(t *testing.T) {
	t.Parallel()
	url := os.Getenv("MONGODB_TEST_URL")
	if url == "" {
		t.Skip("MONGODB_TEST_URL not set")
	}

	client, err := mongo.Connect(options.Client().ApplyURI(url))
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Disconnect(context.Background()) })
	db := client.Database("venuehub_test")

	testStorage(t, func(t *testing.T) audit.Storage {
		name := "audit_" + strings.ReplaceAll(uuid.NewString(), "-", "")
		s := audit.NewMongoStorage(db, name)
		require.NoError(t, s.EnsureIndexes(context.Background()))
		t.Cleanup(func() { _ = db.Collection(name).Drop(context.Background()) })
		return s
	})
}
