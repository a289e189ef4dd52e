package repositories

import (
	"context"
	"database/sql"
	"fmt"
)

// SQLExecutor покрывает и *sql.DB, и *sql.Tx, чтобы репозитории могли
// работать внутри транзакций сервисного слоя.
type SQLExecutor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// Tx — транзакция в терминах SQLExecutor.
type Tx interface {
	SQLExecutor
	Commit() error
	Rollback() error
}

// TxStarter открывает транзакции; сервисы зависят от него, а не от
// *sql.DB напрямую, чтобы транзакционную логику можно было тестировать.
type TxStarter interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (Tx, error)
}

// SQLDatabase адаптирует *sql.DB под TxStarter.
type SQLDatabase struct {
	*sql.DB
}

func (d SQLDatabase) BeginTx(ctx context.Context, opts *sql.TxOptions) (Tx, error) {
	return d.DB.BeginTx(ctx, opts)
}

func checkAffectedRows(result sql.Result, notFoundError error) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if rowsAffected == 0 {
		return notFoundError // Возвращаем переданную ошибку "не найдено"
	}
	return nil
}
