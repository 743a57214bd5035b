package migrate

import (
	"context"
	"fmt"

	"github.com/SeptianAdiraharja/Inventory/pkg/config"
	"github.com/SeptianAdiraharja/Inventory/pkg/db"
	"github.com/SeptianAdiraharja/Inventory/pkg/db/models"
	"github.com/SeptianAdiraharja/Inventory/pkg/logger"
	"gorm.io/gorm"
)

// MaybeRunDev executes migrations automatically when the app is running in dev mode and
// the feature flag is enabled. SQLite databases are built from the GORM models since
// the goose migrations target Postgres.
func MaybeRunDev(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if !cfg.App.IsDev() || !cfg.FeatureFlags.AutoMigrate {
		return nil
	}

	meta := map[string]any{"env": cfg.App.Env, "dir": DefaultDir, "sqlite": cfg.FeatureFlags.UseSQLite}
	ctx = logg.WithFields(ctx, meta)

	if cfg.FeatureFlags.UseSQLite {
		logg.Info(ctx, "running model auto-migration (sqlite)")
		if err := AutoMigrateModels(client.DB().WithContext(ctx)); err != nil {
			return err
		}
		logg.Info(ctx, "model auto-migration completed")
		return nil
	}

	sqlDB, err := client.DB().DB()
	if err != nil {
		return fmt.Errorf("extracting sql.DB: %w", err)
	}

	logg.Info(ctx, "running Goose migrations (dev auto-run)")

	if err := Run(ctx, sqlDB, DefaultDir, "up"); err != nil {
		return fmt.Errorf("running goose up: %w", err)
	}

	logg.Info(ctx, "Goose migrations completed")
	return nil
}

// AutoMigrateModels creates every inventory table from the GORM models.
func AutoMigrateModels(conn *gorm.DB) error {
	if err := conn.AutoMigrate(
		&models.Category{},
		&models.Supplier{},
		&models.Guest{},
		&models.Item{},
		&models.InboundRecord{},
		&models.Cart{},
		&models.CartItem{},
		&models.GuestCart{},
		&models.GuestCartItem{},
		&models.OutboundRecord{},
		&models.StockMovement{},
	); err != nil {
		return fmt.Errorf("auto-migrating models: %w", err)
	}
	return nil
}
