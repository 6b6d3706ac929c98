package pipeline

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DomPolizzi/loyverse-woocomerce-api/internal/database"
	"github.com/DomPolizzi/loyverse-woocomerce-api/internal/logger"
	"github.com/DomPolizzi/loyverse-woocomerce-api/internal/models"
	"github.com/DomPolizzi/loyverse-woocomerce-api/internal/services/loyverse"
	"github.com/DomPolizzi/loyverse-woocomerce-api/internal/services/woocommerce"
	"github.com/DomPolizzi/loyverse-woocomerce-api/internal/staging"
	"github.com/DomPolizzi/loyverse-woocomerce-api/internal/sync"
)

// testPipeline builds a pipeline against miniredis, an in-memory sqlite
// database and the given fake API endpoints. dbName keeps each test on its
// own shared-cache database.
func testPipeline(t *testing.T, dbName, loyverseURL, wooURL string) (*Pipeline, *database.Database, *staging.Store) {
	t.Helper()
	log := logger.New("error")

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	store := staging.NewWithClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}), log)

	db, err := database.New("sqlite://file:" + dbName + "?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	loyClient := loyverse.NewClient(loyverseURL, "token", log)
	extractor := loyverse.NewExtractor(loyClient, log, 250, 1, time.Millisecond)
	upserter := sync.NewUpserter(woocommerce.NewClient(wooURL, "ck", "cs", log), log)

	return New(log, store, extractor, upserter, db, nil), db, store
}

// wooServer fakes the two product endpoints a categoryless single product
// needs: slug search and create. createStatus controls whether the create
// succeeds.
func wooServer(t *testing.T, createStatus int) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /wp-json/wc/v3/products", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]woocommerce.Product{})
	})
	mux.HandleFunc("POST /wp-json/wc/v3/products", func(w http.ResponseWriter, r *http.Request) {
		if createStatus != http.StatusCreated {
			w.WriteHeader(createStatus)
			json.NewEncoder(w).Encode(map[string]string{"code": "internal_server_error", "message": "boom"})
			return
		}
		json.NewEncoder(w).Encode(woocommerce.Product{ID: 10, SKU: "M1"})
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func stageRecord(t *testing.T, store *staging.Store) {
	t.Helper()
	require.NoError(t, store.PutRecords(context.Background(), []models.VariantRecord{
		{Handle: "mug", SKU: "M1", Name: "Mug", Price: 8},
	}))
}

func TestInsertCompletesCleanRun(t *testing.T) {
	woo := wooServer(t, http.StatusCreated)
	p, db, store := testPipeline(t, "insert_clean", "http://unused.invalid", woo.URL)
	stageRecord(t, store)

	run, err := p.Insert(context.Background())
	require.NoError(t, err)

	assert.Equal(t, models.PhaseInsert, run.Phase)
	assert.Equal(t, models.StatusCompleted, run.Status)
	assert.Equal(t, 1, run.RecordCount)
	assert.Nil(t, run.Error)
	require.NotNil(t, run.FinishedAt)

	persisted, err := db.GetRun(run.ID)
	require.NoError(t, err)
	require.NotNil(t, persisted)
	assert.Empty(t, persisted.Failures)
}

func TestInsertRecordsPartialRunWithFailures(t *testing.T) {
	woo := wooServer(t, http.StatusInternalServerError)
	p, db, store := testPipeline(t, "insert_partial", "http://unused.invalid", woo.URL)
	stageRecord(t, store)

	run, err := p.Insert(context.Background())

	// The aggregated report error drives the caller's exit policy.
	require.Error(t, err)
	assert.Equal(t, models.StatusPartial, run.Status)
	require.NotNil(t, run.Error)
	assert.Contains(t, *run.Error, "product")

	persisted, dbErr := db.GetRun(run.ID)
	require.NoError(t, dbErr)
	require.NotNil(t, persisted)
	require.Len(t, persisted.Failures, 1)
	assert.Equal(t, "product", persisted.Failures[0].EntityType)
	assert.Equal(t, "mug", persisted.Failures[0].Key)
	assert.NotEmpty(t, persisted.Failures[0].Reason)
}

func TestExtractStagesRecords(t *testing.T) {
	loy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(loyverse.ItemsResponse{
			Items: []loyverse.Item{
				{ID: "1", Name: "Mug", Handle: "mug", Variants: []loyverse.Variant{{SKU: "M1", Cost: 8}}},
			},
		})
	}))
	defer loy.Close()

	p, db, store := testPipeline(t, "extract_clean", loy.URL, "http://unused.invalid")

	run, err := p.Extract(context.Background(), ExtractOptions{})
	require.NoError(t, err)

	assert.Equal(t, models.PhaseExtract, run.Phase)
	assert.Equal(t, models.StatusCompleted, run.Status)
	assert.Equal(t, 1, run.ItemCount)
	assert.Equal(t, 1, run.RecordCount)

	records, err := store.Records(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "M1", records[0].SKU)

	persisted, err := db.GetRun(run.ID)
	require.NoError(t, err)
	require.NotNil(t, persisted)
	assert.Equal(t, models.StatusCompleted, persisted.Status)
}

func TestExtractRecordsFailedRun(t *testing.T) {
	loy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer loy.Close()

	p, db, _ := testPipeline(t, "extract_failed", loy.URL, "http://unused.invalid")

	run, err := p.Extract(context.Background(), ExtractOptions{})
	require.Error(t, err)
	assert.Equal(t, models.StatusFailed, run.Status)
	require.NotNil(t, run.Error)

	persisted, dbErr := db.GetRun(run.ID)
	require.NoError(t, dbErr)
	require.NotNil(t, persisted)
	assert.Equal(t, models.StatusFailed, persisted.Status)
	require.NotNil(t, persisted.Error)
}
