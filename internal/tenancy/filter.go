package tenancy

import (
	"errors"
	"reflect"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/schema"

	"github.com/kingrain94/tenant-auth-api/internal/domain"
	"github.com/kingrain94/tenant-auth-api/pkg/logger"
)

// Column is the tenant discriminator every tenant-owned table carries.
const Column = "tenant_id"

var (
	ErrMissingTenantContext = errors.New("tenancy: no tenant bound to context")
	ErrCrossTenantWrite     = errors.New("tenancy: row belongs to another tenant")
)

// Filter is a gorm plugin that constrains every query, row, update and delete on
// a tenant-owned table to the tenant bound in the statement context, and
// stamps that tenant onto inserted rows.
//
// Statements whose context has no bound tenant get an always-false predicate.
// Raw/Exec SQL is not rewritten; repositories do not use it for tenant-owned tables.
type Filter struct {
	logger       *logger.Logger
	tables       map[string]struct{}
	onFailClosed func(table string)
}

type FilterOption func(*Filter)

func WithLogger(l *logger.Logger) FilterOption {
	return func(f *Filter) {
		f.logger = l
	}
}

// WithTables registers table names as tenant-owned for statements built
// without a model (db.Table("...")).
func WithTables(tables ...string) FilterOption {
	return func(f *Filter) {
		for _, t := range tables {
			f.tables[t] = struct{}{}
		}
	}
}

// WithFailClosedHook is called with the table name each time a statement is
// forced to match nothing.
func WithFailClosedHook(fn func(table string)) FilterOption {
	return func(f *Filter) {
		f.onFailClosed = fn
	}
}

func NewFilter(opts ...FilterOption) *Filter {
	f := &Filter{
		logger: logger.NewNop(),
		tables: map[string]struct{}{
			"users":     {},
			"clients":   {},
			"locations": {},
		},
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *Filter) Name() string {
	return "tenancy:filter"
}

func (f *Filter) Initialize(db *gorm.DB) error {
	cb := db.Callback()
	if err := cb.Query().Before("gorm:query").Register("tenancy:query", f.scope); err != nil {
		return err
	}
	if err := cb.Row().Before("gorm:row").Register("tenancy:row", f.scope); err != nil {
		return err
	}
	if err := cb.Update().Before("gorm:update").Register("tenancy:update", f.scopeUpdate); err != nil {
		return err
	}
	if err := cb.Delete().Before("gorm:delete").Register("tenancy:delete", f.scope); err != nil {
		return err
	}
	return cb.Create().Before("gorm:create").Register("tenancy:create", f.assign)
}

func (f *Filter) scope(db *gorm.DB) {
	if db.Error != nil {
		return
	}
	stmt := db.Statement
	table, ok := f.tenantTable(stmt)
	if !ok || IsUnscoped(stmt.Context) {
		return
	}

	tenantID, bound := TenantID(stmt.Context)
	if !bound {
		f.failClosed(table)
		constrain(stmt, clause.Expr{SQL: "1 = 0"})
		return
	}

	constrain(stmt, clause.Eq{
		Column: clause.Column{Table: clause.CurrentTable, Name: Column},
		Value:  tenantID,
	})
}

// scopeUpdate refuses to write a foreign tenant_id before scoping the WHERE clause.
func (f *Filter) scopeUpdate(db *gorm.DB) {
	f.guardAssignments(db)
	f.scope(db)
}

func (f *Filter) guardAssignments(db *gorm.DB) {
	if db.Error != nil {
		return
	}
	stmt := db.Statement
	if _, ok := f.tenantTable(stmt); !ok || IsUnscoped(stmt.Context) {
		return
	}
	tenantID, bound := TenantID(stmt.Context)
	if !bound {
		return
	}

	// only columns the UPDATE will actually SET matter
	selected, restricted := stmt.SelectAndOmitColumns(false, true)
	writes := func(dbName string) (explicit, implicit bool) {
		v, ok := selected[dbName]
		return ok && v, !ok && !restricted
	}

	if values, ok := stmt.Dest.(map[string]interface{}); ok {
		if explicit, implicit := writes(Column); explicit || implicit {
			_ = db.AddError(checkMap(values, tenantID))
		}
		return
	}
	if stmt.Schema == nil {
		return
	}
	field := stmt.Schema.LookUpField(Column)
	if field == nil {
		return
	}

	rv := reflect.Indirect(reflect.ValueOf(stmt.Dest))
	if rv.Kind() != reflect.Struct || rv.Type() != stmt.Schema.ModelType {
		return
	}
	explicit, implicit := writes(field.DBName)
	value, zero := field.ValueOf(stmt.Context, rv)
	switch {
	case zero && explicit:
		// Save selects every column, so an empty tenant_id would orphan the row
		if rv.CanAddr() {
			_ = db.AddError(field.Set(stmt.Context, rv, tenantID))
		}
	case !zero && (explicit || implicit):
		if current, _ := value.(string); current != tenantID {
			_ = db.AddError(ErrCrossTenantWrite)
		}
	}
}

func (f *Filter) assign(db *gorm.DB) {
	if db.Error != nil {
		return
	}
	stmt := db.Statement
	if _, ok := f.tenantTable(stmt); !ok || IsUnscoped(stmt.Context) {
		return
	}

	tenantID, bound := TenantID(stmt.Context)
	if !bound {
		_ = db.AddError(ErrMissingTenantContext)
		return
	}

	guardUpsert(stmt, tenantID)

	if values, ok := stmt.Dest.(map[string]interface{}); ok {
		_ = db.AddError(stampMap(values, tenantID))
		return
	}
	if stmt.Schema == nil {
		return
	}
	field := stmt.Schema.LookUpField(Column)
	if field == nil {
		return
	}

	rv := reflect.Indirect(stmt.ReflectValue)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		for i := 0; i < rv.Len(); i++ {
			if err := stampRow(db, field, reflect.Indirect(rv.Index(i)), tenantID); err != nil {
				_ = db.AddError(err)
				return
			}
		}
	case reflect.Struct:
		_ = db.AddError(stampRow(db, field, rv, tenantID))
	}
}

// tenantTable reports the table name when the statement targets a tenant-owned table.
func (f *Filter) tenantTable(stmt *gorm.Statement) (string, bool) {
	table := baseTable(stmt)
	if stmt.Schema != nil {
		if table == "" {
			table = stmt.Schema.Table
		}
		// the tenant table is the root of ownership and has nothing to filter by
		if stmt.Schema.Table == (domain.Tenant{}).TableName() {
			return "", false
		}
		if field := stmt.Schema.LookUpField(Column); field != nil && field.DBName == Column {
			return table, true
		}
	}
	_, ok := f.tables[table]
	return table, ok
}

func (f *Filter) failClosed(table string) {
	f.logger.Warn("Tenant-scoped statement without tenant context, matching no rows",
		zap.String("table", table))
	if f.onFailClosed != nil {
		f.onFailClosed(table)
	}
}

// baseTable is the bare table name a statement reads from, with any alias,
// schema qualifier and quoting removed: `"public"."users" AS u` is users.
func baseTable(stmt *gorm.Statement) string {
	name := stmt.Table
	if stmt.TableExpr != nil && stmt.TableExpr.SQL != "" {
		name = stmt.TableExpr.SQL
	}
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return ""
	}
	name = strings.TrimRight(fields[0], ",")
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		name = name[i+1:]
	}
	return strings.Trim(name, "\"`")
}

// constrain ANDs expr onto the WHERE clause. Existing conditions are always
// parenthesized so an OR in them cannot escape the tenant predicate.
func constrain(stmt *gorm.Statement, expr clause.Expression) {
	if c, ok := stmt.Clauses["WHERE"]; ok {
		if where, ok := c.Expression.(clause.Where); ok && len(where.Exprs) > 0 {
			c.Expression = clause.Where{Exprs: []clause.Expression{group(where.Exprs)}}
			stmt.Clauses["WHERE"] = c
		}
	}
	stmt.AddClause(clause.Where{Exprs: []clause.Expression{expr}})
}

type group []clause.Expression

func (g group) Build(builder clause.Builder) {
	// AndConditions only parenthesizes itself with more than one expression
	if len(g) > 1 {
		clause.AndConditions{Exprs: g}.Build(builder)
		return
	}
	builder.WriteByte('(')
	g[0].Build(builder)
	builder.WriteByte(')')
}

// guardUpsert limits ON CONFLICT DO UPDATE to rows of the bound tenant, so an
// insert colliding with another tenant's primary key cannot overwrite it.
func guardUpsert(stmt *gorm.Statement, tenantID string) {
	c, ok := stmt.Clauses["ON CONFLICT"]
	if !ok {
		return
	}
	onConflict, ok := c.Expression.(clause.OnConflict)
	if !ok || onConflict.DoNothing {
		return
	}
	onConflict.Where.Exprs = append(onConflict.Where.Exprs, clause.Eq{
		Column: clause.Column{Table: clause.CurrentTable, Name: Column},
		Value:  tenantID,
	})
	c.Expression = onConflict
	stmt.Clauses["ON CONFLICT"] = c
}

func stampRow(db *gorm.DB, field *schema.Field, rv reflect.Value, tenantID string) error {
	ctx := db.Statement.Context
	value, zero := field.ValueOf(ctx, rv)
	if zero {
		return field.Set(ctx, rv, tenantID)
	}
	if current, _ := value.(string); current != tenantID {
		return ErrCrossTenantWrite
	}
	return nil
}

func checkMap(values map[string]interface{}, tenantID string) error {
	for _, key := range []string{Column, "TenantID"} {
		if v, ok := values[key]; ok {
			if current, _ := v.(string); current != tenantID {
				return ErrCrossTenantWrite
			}
		}
	}
	return nil
}

func stampMap(values map[string]interface{}, tenantID string) error {
	for _, key := range []string{Column, "TenantID"} {
		if v, ok := values[key]; ok {
			if current, _ := v.(string); current != "" && current != tenantID {
				return ErrCrossTenantWrite
			}
			values[key] = tenantID
			return nil
		}
	}
	values[Column] = tenantID
	return nil
}
