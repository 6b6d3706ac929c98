package pipeline

import (
	"github.com/DomPolizzi/loyverse-woocomerce-api/internal/config"
	"github.com/DomPolizzi/loyverse-woocomerce-api/internal/database"
	"github.com/DomPolizzi/loyverse-woocomerce-api/internal/events"
	"github.com/DomPolizzi/loyverse-woocomerce-api/internal/logger"
	"github.com/DomPolizzi/loyverse-woocomerce-api/internal/services/loyverse"
	"github.com/DomPolizzi/loyverse-woocomerce-api/internal/services/woocommerce"
	"github.com/DomPolizzi/loyverse-woocomerce-api/internal/staging"
	"github.com/DomPolizzi/loyverse-woocomerce-api/internal/sync"
)

// FromConfig builds a pipeline with all collaborators constructed from one
// explicit configuration value. The publisher may be nil for runs that should
// not emit events.
func FromConfig(cfg *config.Config, log *logger.Logger, db *database.Database, publisher *events.Publisher) (*Pipeline, error) {
	store, err := staging.New(cfg.RedisURL, log)
	if err != nil {
		return nil, err
	}

	loyClient := loyverse.NewClient(cfg.LoyverseAPIBase, cfg.LoyverseToken, log)
	extractor := loyverse.NewExtractor(loyClient, log, cfg.PageSize, cfg.MaxRetries, cfg.RetryBaseDelay)

	wcClient := woocommerce.NewClient(cfg.WooBaseURL, cfg.WooConsumerKey, cfg.WooConsumerSecret, log)
	upserter := sync.NewUpserter(wcClient, log)

	return New(log, store, extractor, upserter, db, publisher), nil
}
