package staging

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DomPolizzi/loyverse-woocomerce-api/internal/logger"
	"github.com/DomPolizzi/loyverse-woocomerce-api/internal/models"
)

func testStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewWithClient(rdb, logger.New("error")), mr
}

func record(handle, sku string) models.VariantRecord {
	return models.VariantRecord{Handle: handle, SKU: sku, Name: handle}
}

func TestPutRecordsRoundTrip(t *testing.T) {
	store, _ := testStore(t)
	ctx := context.Background()

	records := []models.VariantRecord{record("bike", "B1"), record("tee", "T1")}
	require.NoError(t, store.PutRecords(ctx, records))

	got, err := store.Records(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)

	// Keys are sorted, so B1 comes back first.
	assert.Equal(t, "B1", got[0].SKU)
	assert.Equal(t, "T1", got[1].SKU)
}

func TestPutRecordsRejectsWholeBatchOnMissingSKU(t *testing.T) {
	store, mr := testStore(t)
	ctx := context.Background()

	records := []models.VariantRecord{
		record("bike", "B1"),
		record("broken", ""),
	}

	err := store.PutRecords(ctx, records)
	require.ErrorIs(t, err, ErrMissingKey)

	// Nothing was persisted, not even the valid record.
	assert.Empty(t, mr.Keys())
}

func TestFlushClearsStore(t *testing.T) {
	store, mr := testStore(t)
	ctx := context.Background()

	require.NoError(t, store.PutRecords(ctx, []models.VariantRecord{record("bike", "B1")}))
	require.NotEmpty(t, mr.Keys())

	require.NoError(t, store.Flush(ctx))
	assert.Empty(t, mr.Keys())
}

func TestRecordsIgnoresOtherPrefixes(t *testing.T) {
	store, _ := testStore(t)
	ctx := context.Background()

	require.NoError(t, store.PutRecords(ctx, []models.VariantRecord{record("bike", "B1")}))
	require.NoError(t, store.PutRaw(ctx, RawPrefix, map[string]interface{}{
		"item-1": map[string]string{"id": "item-1"},
	}))

	got, err := store.Records(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "B1", got[0].SKU)
}

func TestPutRawRejectsEmptyKey(t *testing.T) {
	store, mr := testStore(t)
	ctx := context.Background()

	err := store.PutRaw(ctx, RawPrefix, map[string]interface{}{"": "value"})
	require.ErrorIs(t, err, ErrMissingKey)
	assert.Empty(t, mr.Keys())
}
