package database

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/op/go-logging"

	"github.com/Agence-Glanum/customer-portrait/models"
)

var log = logging.MustGetLogger("log")

// Open connects to the sales database. DSNs in mariadb:// or mysql:// URL
// form are rewritten to the driver format; anything else is passed through.
func Open(dsn string) (*sql.DB, error) {
	driverDSN, err := toDriverDSN(dsn)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open("mysql", driverDSN)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)
	return db, nil
}

func toDriverDSN(dsn string) (string, error) {
	if !strings.HasPrefix(dsn, "mariadb://") && !strings.HasPrefix(dsn, "mysql://") {
		return dsn, nil
	}
	u, err := url.Parse(dsn)
	if err != nil {
		return "", fmt.Errorf("parse dsn: %w", err)
	}
	user, pass := "", ""
	if u.User != nil {
		user = u.User.Username()
		pass, _ = u.User.Password()
	}
	name := strings.TrimPrefix(u.Path, "/")
	if user == "" || u.Host == "" || name == "" {
		return "", fmt.Errorf("incomplete dsn, need user, host and database name")
	}
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?parseTime=true&loc=UTC", user, pass, u.Host, name), nil
}

// Loader reads the input tables of an analysis session. It is the external
// data-access collaborator: everything downstream works on the in-memory
// tables it returns.
type Loader struct {
	db *sql.DB
}

func NewLoader(db *sql.DB) *Loader {
	return &Loader{db: db}
}

// Headers loads the family's transaction headers inside the snapshot window.
func (l *Loader) Headers(ctx context.Context, family models.Family, start, end time.Time) ([]models.SalesHeader, error) {
	query := fmt.Sprintf(
		`SELECT %[1]s_ID, Customer_ID, %[1]s_date, Total_price, Paid
		 FROM %[1]ss
		 WHERE %[1]s_date >= ? AND %[1]s_date <= ?`, family)

	rows, err := l.db.QueryContext(ctx, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("load %s headers: %w", family, err)
	}
	defer rows.Close()

	headers := make([]models.SalesHeader, 0)
	for rows.Next() {
		var h models.SalesHeader
		if err := rows.Scan(&h.TransactionID, &h.CustomerID, &h.Date, &h.TotalPrice, &h.Paid); err != nil {
			return nil, fmt.Errorf("scan %s header: %w", family, err)
		}
		headers = append(headers, h)
	}
	return headers, rows.Err()
}

// Lines loads every line of the family. Lines whose header falls outside the
// snapshot window are dropped later by the joiner.
func (l *Loader) Lines(ctx context.Context, family models.Family) ([]models.SalesLine, error) {
	query := fmt.Sprintf(
		`SELECT %[1]s_ID, Product_ID, Quantity, Total_price FROM %[1]s_lines`, family)

	rows, err := l.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("load %s lines: %w", family, err)
	}
	defer rows.Close()

	lines := make([]models.SalesLine, 0)
	for rows.Next() {
		var line models.SalesLine
		if err := rows.Scan(&line.TransactionID, &line.ProductID, &line.Quantity, &line.TotalPrice); err != nil {
			return nil, fmt.Errorf("scan %s line: %w", family, err)
		}
		lines = append(lines, line)
	}
	return lines, rows.Err()
}

func (l *Loader) Products(ctx context.Context) ([]models.Product, error) {
	rows, err := l.db.QueryContext(ctx, `SELECT Product_ID, Product_name, Category_ID FROM Products`)
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}
	defer rows.Close()

	products := make([]models.Product, 0)
	for rows.Next() {
		var p models.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.CategoryID); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (l *Loader) Categories(ctx context.Context) ([]models.Category, error) {
	rows, err := l.db.QueryContext(ctx, `SELECT Category_ID, Category_name, Parent_ID FROM Categories`)
	if err != nil {
		return nil, fmt.Errorf("load categories: %w", err)
	}
	defer rows.Close()

	categories := make([]models.Category, 0)
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.ParentID); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// Dataset loads all four tables of one session.
func (l *Loader) Dataset(ctx context.Context, family models.Family, start, end time.Time) (models.Dataset, error) {
	var ds models.Dataset
	var err error
	if ds.Headers, err = l.Headers(ctx, family, start, end); err != nil {
		return models.Dataset{}, err
	}
	if ds.Lines, err = l.Lines(ctx, family); err != nil {
		return models.Dataset{}, err
	}
	if ds.Products, err = l.Products(ctx); err != nil {
		return models.Dataset{}, err
	}
	if ds.Categories, err = l.Categories(ctx); err != nil {
		return models.Dataset{}, err
	}
	log.Debugf("Loaded dataset: %d headers, %d lines, %d products, %d categories",
		len(ds.Headers), len(ds.Lines), len(ds.Products), len(ds.Categories))
	return ds, nil
}
