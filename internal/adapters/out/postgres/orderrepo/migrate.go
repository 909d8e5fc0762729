package orderrepo

import (
	"fmt"

	"gorm.io/gorm"
)

// OneOpenOrderIndex allows at most one Pending or Active order per agent.
const OneOpenOrderIndex = "idx_orders_one_open_per_agent"

// Migrate creates the orders table and its partial unique index.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&OrderDTO{}); err != nil {
		return err
	}
	return db.Exec(fmt.Sprintf(
		`CREATE UNIQUE INDEX IF NOT EXISTS %s ON orders (agent_id) WHERE status IN (1, 2)`,
		OneOpenOrderIndex,
	)).Error
}
