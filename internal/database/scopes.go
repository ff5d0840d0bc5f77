package database

import "gorm.io/gorm"

// ActiveOnly restricts a query to rows that have not been soft deleted.
func ActiveOnly(db *gorm.DB) *gorm.DB {
	return db.Where("active = ?", true)
}
