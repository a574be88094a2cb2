package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/and161185/stockroom/internal/errs"
	"github.com/and161185/stockroom/internal/model"
	"github.com/and161185/stockroom/internal/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

var productColumns = []string{"id", "name", "price", "description", "category", "stock_quantity", "created_at", "updated_at"}

func TestProductRepo_Create(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewProductRepo(db)
	ctx := context.Background()

	id := uuid.Must(uuid.NewV4())
	now := time.Now().UTC()
	p := &model.Product{Name: "Widget", Price: decimal.RequireFromString("9.99"), Category: strp("Tools"), StockQuantity: 3}

	mock.ExpectQuery(`INSERT INTO products \(name, price, description, category, stock_quantity\) VALUES \(\$1, \$2, \$3, \$4, \$5\) RETURNING id, created_at, updated_at`).
		WithArgs("Widget", p.Price, (*string)(nil), p.Category, int32(3)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(id, now, now))
	require.NoError(t, r.Create(ctx, p))
	require.Equal(t, id, p.ID)

	mock.ExpectQuery(`INSERT INTO products`).
		WithArgs("Widget", p.Price, (*string)(nil), p.Category, int32(3)).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "uq_products_name_lower"})
	err := r.Create(ctx, p)
	sc, ok := errs.AsStoreConflict(err)
	require.True(t, ok)
	require.Equal(t, "name", sc.Field)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepo_GetByIDAndName(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewProductRepo(db)
	ctx := context.Background()
	id := uuid.Must(uuid.NewV4())
	now := time.Now().UTC()
	price := decimal.RequireFromString("9.99")

	mock.ExpectQuery(`SELECT .* FROM products WHERE id = \$1`).
		WithArgs(id).
		WillReturnRows(pgxmock.NewRows(productColumns).
			AddRow(id, "Widget", price, strp("blue"), (*string)(nil), int32(4), now, now))
	p, err := r.GetByID(ctx, id)
	require.NoError(t, err)
	require.Equal(t, "Widget", p.Name)
	require.True(t, p.Price.Equal(price))
	require.Equal(t, "blue", *p.Description)
	require.Nil(t, p.Category)
	require.EqualValues(t, 4, p.StockQuantity)

	mock.ExpectQuery(`SELECT .* FROM products WHERE lower\(name\) = lower\(\$1\)`).
		WithArgs("WIDGET").
		WillReturnError(pgx.ErrNoRows)
	_, err = r.GetByName(ctx, "WIDGET")
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestProductRepo_UpdateDelete(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewProductRepo(db)
	ctx := context.Background()
	now := time.Now().UTC()
	p := &model.Product{ID: uuid.Must(uuid.NewV4()), Name: "Widget", Price: decimal.RequireFromString("8.99")}

	mock.ExpectQuery(`UPDATE products SET name = \$2, price = \$3, description = \$4, category = \$5, stock_quantity = \$6, updated_at = now\(\) WHERE id = \$1 RETURNING created_at, updated_at`).
		WithArgs(p.ID, "Widget", p.Price, (*string)(nil), (*string)(nil), int32(0)).
		WillReturnRows(pgxmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))
	require.NoError(t, r.Update(ctx, p))

	mock.ExpectQuery(`UPDATE products`).
		WithArgs(p.ID, "Widget", p.Price, (*string)(nil), (*string)(nil), int32(0)).
		WillReturnError(pgx.ErrNoRows)
	require.ErrorIs(t, r.Update(ctx, p), errs.ErrNotFound)

	mock.ExpectExec(`DELETE FROM products WHERE id = \$1`).
		WithArgs(p.ID).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	require.ErrorIs(t, r.Delete(ctx, p.ID), errs.ErrNotFound)

	mock.ExpectExec(`DELETE FROM products WHERE id = \$1`).
		WithArgs(p.ID).
		WillReturnError(errors.New("conn reset"))
	err := r.Delete(ctx, p.ID)
	require.Error(t, err)
	require.NotErrorIs(t, err, errs.ErrNotFound)
}

func TestBuildFilter(t *testing.T) {
	where, args := buildFilter(model.ProductFilter{})
	require.Empty(t, where)
	require.Empty(t, args)

	lo, hi := decimal.NewFromInt(1), decimal.NewFromInt(5)
	where, args = buildFilter(model.ProductFilter{NameContains: "app", Category: "Fruit", MinPrice: &lo, MaxPrice: &hi})
	require.Equal(t, ` WHERE strpos(lower(name), lower($1)) > 0 AND lower(category) = lower($2) AND price >= $3 AND price <= $4`, where)
	require.Equal(t, []any{"app", "Fruit", lo, hi}, args)
}

func TestProductRepo_List(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewProductRepo(db)
	ctx := context.Background()
	now := time.Now().UTC()

	mock.ExpectQuery(`SELECT .* FROM products WHERE lower\(category\) = lower\(\$1\) ORDER BY name`).
		WithArgs("fruit").
		WillReturnRows(pgxmock.NewRows(productColumns).
			AddRow(uuid.Must(uuid.NewV4()), "Apple", decimal.RequireFromString("1.20"), (*string)(nil), strp("Fruit"), int32(10), now, now))
	list, err := r.List(ctx, model.ProductFilter{Category: "fruit"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, "Apple", list[0].Name)
}

func TestProductRepo_Categories(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewProductRepo(db)
	ctx := context.Background()

	mock.ExpectQuery(`SELECT DISTINCT category FROM products WHERE category IS NOT NULL ORDER BY category`).
		WillReturnRows(pgxmock.NewRows([]string{"category"}).AddRow("Fruit").AddRow("Tools"))
	cats, err := r.Categories(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"Fruit", "Tools"}, cats)

	mock.ExpectQuery(`SELECT DISTINCT category`).WillReturnError(errors.New("boom"))
	_, err = r.Categories(ctx)
	require.Error(t, err)
}
