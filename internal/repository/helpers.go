package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/godror/godror"
	"github.com/shopspring/decimal"
)

// querier is satisfied by both *sql.DB and *sql.Tx so helpers can run inside or outside a transaction
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// ═══════════════════════════════════════════════════════════════════════════
// SQL NULL HELPERS - Conversion between Go types and sql.Null* types
// ═══════════════════════════════════════════════════════════════════════════

// NullableString returns a sql.NullString for a string value.
// Empty strings result in a NULL database value.
func NullableString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// NullableTime returns a sql.NullTime for a *time.Time value.
func NullableTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

// NullableInt64 returns a sql.NullInt64 for an *int64 value.
func NullableInt64(i *int64) sql.NullInt64 {
	if i == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *i, Valid: true}
}

// StringFromNull extracts the string value from a sql.NullString.
// Returns empty string if null.
func StringFromNull(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

// TimeFromNull extracts the *time.Time value from a sql.NullTime.
// Returns nil if null.
func TimeFromNull(nt sql.NullTime) *time.Time {
	if nt.Valid {
		t := nt.Time
		return &t
	}
	return nil
}

// TimeValueFromNull extracts the time.Time value from a sql.NullTime.
// Returns zero time if null.
func TimeValueFromNull(nt sql.NullTime) time.Time {
	if nt.Valid {
		return nt.Time
	}
	return time.Time{}
}

// Int64PtrFromNull extracts an *int64 from a sql.NullInt64.
func Int64PtrFromNull(ni sql.NullInt64) *int64 {
	if ni.Valid {
		v := ni.Int64
		return &v
	}
	return nil
}

// ═══════════════════════════════════════════════════════════════════════════
// MONEY HELPERS - NUMBER columns are scanned as text to keep exact decimals
// ═══════════════════════════════════════════════════════════════════════════

// DecimalFromNull parses a NUMBER scanned into a sql.NullString.
// NULL or unparseable values yield zero.
func DecimalFromNull(ns sql.NullString) decimal.Decimal {
	if !ns.Valid {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(strings.TrimSpace(ns.String))
	if err != nil {
		return decimal.Zero
	}
	return d
}

// ═══════════════════════════════════════════════════════════════════════════
// BOOLEAN HELPERS - Oracle doesn't have native BOOLEAN, uses NUMBER(1)
// ═══════════════════════════════════════════════════════════════════════════

// BoolToInt converts a boolean to an int for Oracle NUMBER(1) storage.
func BoolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// IntToBool converts an Oracle NUMBER(1) to boolean.
func IntToBool(i int) bool {
	return i == 1
}

// ═══════════════════════════════════════════════════════════════════════════
// ORACLE ERROR HELPERS
// ═══════════════════════════════════════════════════════════════════════════

// oraUniqueViolation is ORA-00001: unique constraint violated
const oraUniqueViolation = 1

// IsUniqueViolation reports whether err is ORA-00001, optionally on a specific constraint or index
func IsUniqueViolation(err error, constraint string) bool {
	if err == nil {
		return false
	}
	oraErr, ok := godror.AsOraErr(err)
	if !ok || oraErr.Code() != oraUniqueViolation {
		return false
	}
	if constraint == "" {
		return true
	}
	return strings.Contains(strings.ToUpper(oraErr.Message()), strings.ToUpper(constraint))
}

// ═══════════════════════════════════════════════════════════════════════════
// IN CLAUSE BUILDER - Build Oracle IN clauses with positional parameters
// ═══════════════════════════════════════════════════════════════════════════

// MaxInClauseSize is the maximum number of items in an IN clause.
// Oracle has a limit of 1000 items per IN clause.
const MaxInClauseSize = 1000

// InClauseBuilder helps build Oracle IN clauses with positional params.
type InClauseBuilder struct {
	placeholders []string
	args         []any
	startIdx     int
}

// NewInClauseBuilder creates a new InClauseBuilder starting at the given parameter index.
func NewInClauseBuilder(startIdx int) *InClauseBuilder {
	return &InClauseBuilder{startIdx: startIdx}
}

// Add adds a value to the IN clause.
func (b *InClauseBuilder) Add(value any) {
	idx := b.startIdx + len(b.args)
	b.placeholders = append(b.placeholders, fmt.Sprintf(":%d", idx))
	b.args = append(b.args, value)
}

// Placeholders returns the comma-separated placeholder string.
func (b *InClauseBuilder) Placeholders() string {
	return strings.Join(b.placeholders, ", ")
}

// Args returns the argument values.
func (b *InClauseBuilder) Args() []any {
	return b.args
}

// ═══════════════════════════════════════════════════════════════════════════
// QUERY BUILDER HELPERS - Dynamic WHERE clause construction
// ═══════════════════════════════════════════════════════════════════════════

// QueryBuilder helps construct dynamic SQL queries with Oracle positional params.
type QueryBuilder struct {
	conditions []string
	args       []any
	nextIdx    int
}

// NewQueryBuilder creates a new QueryBuilder starting at the given parameter index.
func NewQueryBuilder(startIdx int) *QueryBuilder {
	return &QueryBuilder{nextIdx: startIdx}
}

// AddCondition adds a condition with a single placeholder.
// The placeholder in the condition should be %d which will be replaced with :N.
func (b *QueryBuilder) AddCondition(conditionFmt string, value any) {
	condition := fmt.Sprintf(conditionFmt, b.nextIdx)
	b.conditions = append(b.conditions, condition)
	b.args = append(b.args, value)
	b.nextIdx++
}

// AddAnyOf adds a parenthesized OR group. Each format takes one %d placeholder
// and consumes the matching value, so every bind position is distinct.
func (b *QueryBuilder) AddAnyOf(conditionFmts []string, values ...any) {
	parts := make([]string, 0, len(conditionFmts))
	for i, f := range conditionFmts {
		parts = append(parts, fmt.Sprintf(f, b.nextIdx))
		b.args = append(b.args, values[i])
		b.nextIdx++
	}
	b.conditions = append(b.conditions, "("+strings.Join(parts, " OR ")+")")
}

// WhereClause returns the WHERE conditions joined with AND.
// Returns empty string if no conditions.
func (b *QueryBuilder) WhereClause() string {
	if len(b.conditions) == 0 {
		return ""
	}
	return " AND " + strings.Join(b.conditions, " AND ")
}

// Args returns all accumulated arguments.
func (b *QueryBuilder) Args() []any {
	return b.args
}

// NextIndex returns the next available parameter index.
func (b *QueryBuilder) NextIndex() int {
	return b.nextIdx
}

// ChunkSlice splits a slice into chunks of the specified size.
func ChunkSlice[T any](slice []T, chunkSize int) [][]T {
	if chunkSize <= 0 {
		chunkSize = MaxInClauseSize
	}
	if len(slice) == 0 {
		return nil
	}

	var chunks [][]T
	for i := 0; i < len(slice); i += chunkSize {
		end := i + chunkSize
		if end > len(slice) {
			end = len(slice)
		}
		chunks = append(chunks, slice[i:end])
	}
	return chunks
}

// retryOnConflict runs fn up to attempts times while its error satisfies isConflict.
// Any other error, or the last conflict, is returned as is.
func retryOnConflict(attempts int, isConflict func(error) bool, fn func() error) error {
	var err error
	for i := 0; i < attempts; i++ {
		if err = fn(); err == nil || !isConflict(err) {
			return err
		}
	}
	return err
}
