// Package report stores valuations the user chose to keep.
// Stored reports are history only; they are never used to answer a new request.
package report

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/evcraddock/arv/internal/comps"
)

// ErrNotFound is returned when a report ID does not exist.
var ErrNotFound = errors.New("report not found")

// Report is a saved valuation with its summary columns.
type Report struct {
	ID        int64            `json:"id"`
	Address   string           `json:"address"`
	Sqft      float64          `json:"sqft"`
	LotSize   float64          `json:"lot_size"`
	Provider  comps.Provider   `json:"provider"`
	CompCount int              `json:"comp_count"`
	Ranked    bool             `json:"ranked"`
	ARV       *int64           `json:"arv,omitempty"`
	Valuation *comps.Valuation `json:"valuation,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
}

// Repository provides access to saved reports.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a report repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const insertSQL = `INSERT INTO valuations
	(address, sqft, lot_size, provider, comp_count, ranked, arv, result_json, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

const selectColumns = `id, address, sqft, lot_size, provider, comp_count, ranked, arv, result_json, created_at`

// Insert saves v and returns the stored report.
func (r *Repository) Insert(v *comps.Valuation) (*Report, error) {
	result, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encoding valuation: %w", err)
	}

	createdAt := v.CreatedAt.UTC()
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	res, err := r.db.Exec(insertSQL,
		v.Subject.Address, v.Subject.LivingAreaSqft, v.Subject.LotSizeSqft,
		string(v.Provider), len(v.Comps), v.Ranked, v.ARV,
		string(result), createdAt,
	)
	if err != nil {
		return nil, fmt.Errorf("inserting report: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting insert id: %w", err)
	}

	return r.GetByID(id)
}

// GetByID returns a report, including its full valuation.
func (r *Repository) GetByID(id int64) (*Report, error) {
	query := fmt.Sprintf("SELECT %s FROM valuations WHERE id = ?", selectColumns)

	rep, err := scanReport(r.db.QueryRow(query, id), true)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("report %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying report %d: %w", id, err)
	}
	return rep, nil
}

// ListOptions controls filtering for List.
type ListOptions struct {
	Address string // case-insensitive substring; empty = all
	Limit   int    // 0 = no limit
}

// List returns report summaries, newest first. Valuation is not populated.
func (r *Repository) List(opts ListOptions) (reports []*Report, err error) {
	query := fmt.Sprintf("SELECT %s FROM valuations", selectColumns)
	var args []any

	if opts.Address != "" {
		query += " WHERE address LIKE ? ESCAPE '\\'"
		args = append(args, "%"+escapeLike(opts.Address)+"%")
	}
	query += " ORDER BY created_at DESC, id DESC"
	if opts.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, opts.Limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing reports: %w", err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing rows: %w", cerr)
		}
	}()

	for rows.Next() {
		rep, err := scanReport(rows, false)
		if err != nil {
			return nil, fmt.Errorf("scanning report: %w", err)
		}
		reports = append(reports, rep)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating reports: %w", err)
	}

	return reports, nil
}

// Delete removes a report.
func (r *Repository) Delete(id int64) error {
	res, err := r.db.Exec("DELETE FROM valuations WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting report %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking delete result: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("report %d: %w", id, ErrNotFound)
	}
	return nil
}

// scanReport scans a report row, decoding the stored valuation when full is set.
func scanReport(row interface{ Scan(...any) error }, full bool) (*Report, error) {
	var rep Report
	var provider, resultJSON string
	var arv sql.NullInt64

	err := row.Scan(
		&rep.ID, &rep.Address, &rep.Sqft, &rep.LotSize, &provider,
		&rep.CompCount, &rep.Ranked, &arv, &resultJSON, &rep.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	rep.Provider = comps.Provider(provider)
	if arv.Valid {
		rep.ARV = &arv.Int64
	}
	if full {
		var v comps.Valuation
		if err := json.Unmarshal([]byte(resultJSON), &v); err != nil {
			return nil, fmt.Errorf("decoding stored valuation: %w", err)
		}
		rep.Valuation = &v
	}

	return &rep, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
