// Package catalog reads the product and brand tables this service answers
// questions about. Access is strictly read-only; the schema is owned by the
// shop backend, so rows are scanned from fixed queries rather than migrated
// models.
package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ProductRow is one row of the product table joined to its brand.
// A product without a brand keeps the row; the brand columns come back null.
type ProductRow struct {
	Title      sql.NullString `gorm:"column:title"`
	Content    sql.NullString `gorm:"column:content"`
	Price      sql.NullInt64  `gorm:"column:price"`
	Stock      sql.NullInt64  `gorm:"column:stock"`
	Materials  sql.NullString `gorm:"column:materials"`
	// The column really is spelled explamation_date upstream.
	ExpiryDate sql.NullString `gorm:"column:explamation_date"`
	Weight     sql.NullString `gorm:"column:weight"`
	Origin     sql.NullString `gorm:"column:origin"`
	Category   sql.NullString `gorm:"column:category"`
	BrandID    sql.NullInt64  `gorm:"column:brand_id"`
	BrandTitle sql.NullString `gorm:"column:brand_title"`
	BrandIntro sql.NullString `gorm:"column:brand_intro"`
}

// BrandRow is one row of the brand table.
type BrandRow struct {
	Title          sql.NullString `gorm:"column:title"`
	Content        sql.NullString `gorm:"column:content"`
	Founded        sql.NullString `gorm:"column:founded"`
	Office         sql.NullString `gorm:"column:office"`
	Representative sql.NullString `gorm:"column:representative"`
	Website        sql.NullString `gorm:"column:web_site"`
	Country        sql.NullString `gorm:"column:country"`
	Introduction   sql.NullString `gorm:"column:introduction"`
	History        sql.NullString `gorm:"column:history"`
}

const productQuery = `
SELECT
    p.title, p.content, p.price, p.stock, p.materials, p.explamation_date,
    p.weight, p.origin, p.category, p.brand_id,
    b.title AS brand_title, b.introduction AS brand_intro
FROM product p
LEFT JOIN brand b ON p.brand_id = b.id`

const brandQuery = `
SELECT title, content, founded, office, representative, web_site, country, introduction, history
FROM brand`

// Source reads catalog rows from MySQL.
type Source struct {
	db *gorm.DB
}

// DSNConfig holds the MySQL connection parameters.
type DSNConfig struct {
	User     string
	Password string
	Host     string
	Port     int
	Database string
}

// DSN renders the go-sql-driver connection string.
func (c DSNConfig) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		c.User, c.Password, c.Host, c.Port, c.Database)
}

// Open connects to MySQL. The connection is verified eagerly so a bad
// credential fails at startup, not on the first query.
func Open(dsn string) (*Source, error) {
	gormLogger := logger.Default.LogMode(logger.Warn)
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{Logger: gormLogger})
	if err != nil {
		return nil, fmt.Errorf("catalog: open mysql: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("catalog: underlying db: %w", err)
	}
	sqlDB.SetMaxOpenConns(4)
	sqlDB.SetConnMaxLifetime(time.Hour)
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("catalog: ping: %w", err)
	}
	return &Source{db: db}, nil
}

// Close releases the connection pool.
func (s *Source) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Products returns all product rows with their joined brand columns.
func (s *Source) Products(ctx context.Context) ([]ProductRow, error) {
	var rows []ProductRow
	if err := s.db.WithContext(ctx).Raw(productQuery).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("catalog: load products: %w", err)
	}
	return rows, nil
}

// Brands returns all brand rows.
func (s *Source) Brands(ctx context.Context) ([]BrandRow, error) {
	var rows []BrandRow
	if err := s.db.WithContext(ctx).Raw(brandQuery).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("catalog: load brands: %w", err)
	}
	return rows, nil
}
