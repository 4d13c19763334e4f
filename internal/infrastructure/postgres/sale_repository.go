package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/agropos-api/internal/domain"
	"github.com/jhoicas/agropos-api/internal/domain/entity"
	"github.com/jhoicas/agropos-api/internal/domain/repository"
)

var _ repository.SaleRepository = (*SaleRepo)(nil)

const saleColumns = `id, number, subtotal, tax, total, payment_method, status, user_id, notes, created_at, updated_at`

// SaleRepo implementación sobre PostgreSQL (usable con pool o tx).
type SaleRepo struct {
	q Querier
}

// NewSaleRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSaleRepository(q Querier) *SaleRepo {
	return &SaleRepo{q: q}
}

// Create persiste la cabecera de una venta.
func (r *SaleRepo) Create(sale *entity.Sale) error {
	query := `
		INSERT INTO sales (id, number, subtotal, tax, total, payment_method, status, user_id, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	notes := (*string)(nil)
	if sale.Notes != "" {
		notes = &sale.Notes
	}
	_, err := r.q.Exec(context.Background(), query,
		sale.ID, sale.Number, sale.Subtotal, sale.Tax, sale.Total,
		sale.PaymentMethod, sale.Status, sale.UserID, notes,
		sale.CreatedAt, sale.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert sale: %w", err)
	}
	return nil
}

// CreateDetail persiste una línea de venta.
func (r *SaleRepo) CreateDetail(detail *entity.SaleDetail) error {
	query := `
		INSERT INTO sale_details (id, sale_id, product_id, quantity, unit_price, subtotal)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.q.Exec(context.Background(), query,
		detail.ID, detail.SaleID, detail.ProductID, detail.Quantity, detail.UnitPrice, detail.Subtotal,
	)
	if err != nil {
		return fmt.Errorf("insert sale detail: %w", err)
	}
	return nil
}

// GetByID obtiene una venta por ID.
func (r *SaleRepo) GetByID(id string) (*entity.Sale, error) {
	query := `SELECT ` + saleColumns + ` FROM sales WHERE id = $1`
	s, err := scanSale(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get sale: %w", err)
	}
	return s, nil
}

// GetDetailsBySaleID obtiene las líneas de una venta.
func (r *SaleRepo) GetDetailsBySaleID(saleID string) ([]*entity.SaleDetail, error) {
	query := `
		SELECT id, sale_id, product_id, quantity, unit_price, subtotal
		FROM sale_details WHERE sale_id = $1 ORDER BY id`
	rows, err := r.q.Query(context.Background(), query, saleID)
	if err != nil {
		return nil, fmt.Errorf("get sale details: %w", err)
	}
	defer rows.Close()
	var list []*entity.SaleDetail
	for rows.Next() {
		var d entity.SaleDetail
		if err := rows.Scan(&d.ID, &d.SaleID, &d.ProductID, &d.Quantity, &d.UnitPrice, &d.Subtotal); err != nil {
			return nil, fmt.Errorf("scan sale detail: %w", err)
		}
		list = append(list, &d)
	}
	return list, rows.Err()
}

// UpdateStatus cambia el estado de la venta. El UPDATE es condicional
// (status <> $2): bajo dos cancelaciones concurrentes la segunda re-evalúa el
// WHERE al soltarse el lock de fila, toca cero filas y recibe ErrConflict, con
// lo que la transición completed → cancelled es de una sola vía también bajo
// concurrencia.
func (r *SaleRepo) UpdateStatus(saleID, status string, updatedAt time.Time) error {
	cmd, err := r.q.Exec(context.Background(),
		`UPDATE sales SET status = $2, updated_at = $3 WHERE id = $1 AND status <> $2`,
		saleID, status, updatedAt,
	)
	if err != nil {
		return fmt.Errorf("update sale status: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrConflict
	}
	return nil
}

// LastNumberOfDay devuelve el mayor número de venta que empieza por el
// prefijo del día (YYYYMMDD), o "" si no hay ventas ese día. Se llama dentro
// de la tx de la venta para calcular el consecutivo.
func (r *SaleRepo) LastNumberOfDay(dayPrefix string) (string, error) {
	query := `SELECT COALESCE(MAX(number), '') FROM sales WHERE number LIKE $1 || '%'`
	var last string
	if err := r.q.QueryRow(context.Background(), query, dayPrefix).Scan(&last); err != nil {
		return "", fmt.Errorf("last sale number: %w", err)
	}
	return last, nil
}

// List lista ventas por rango de fechas con paginación, recientes primero.
func (r *SaleRepo) List(from, to *time.Time, limit, offset int) ([]*entity.Sale, error) {
	query := `SELECT ` + saleColumns + ` FROM sales WHERE 1=1`
	args := []any{}
	pos := 1
	if from != nil {
		query += fmt.Sprintf(" AND created_at >= $%d", pos)
		args = append(args, *from)
		pos++
	}
	if to != nil {
		query += fmt.Sprintf(" AND created_at <= $%d", pos)
		args = append(args, *to)
		pos++
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, limit, offset)

	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	defer rows.Close()
	var list []*entity.Sale
	for rows.Next() {
		s, err := scanSale(rows)
		if err != nil {
			return nil, fmt.Errorf("scan sale: %w", err)
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

func scanSale(row pgx.Row) (*entity.Sale, error) {
	var s entity.Sale
	var notes *string
	if err := row.Scan(
		&s.ID, &s.Number, &s.Subtotal, &s.Tax, &s.Total, &s.PaymentMethod,
		&s.Status, &s.UserID, &notes, &s.CreatedAt, &s.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if notes != nil {
		s.Notes = *notes
	}
	return &s, nil
}
