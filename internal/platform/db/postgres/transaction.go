package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrReadOnlyTransaction は読み取り専用トランザクションの中で書き込みを始めようとした場合に返されます。
var ErrReadOnlyTransaction = errors.New("postgres: read-write work requested inside a read-only transaction")

type txKey struct{}

// activeTx はコンテキストに載せる実行中のトランザクションです。
type activeTx struct {
	tx       pgx.Tx
	readOnly bool
}

// Beginner は pgxpool.Pool と pgxmock の双方が満たします。
type Beginner interface {
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
}

// TransactionManager は顧客・従業員サービスの TransactionManager を pgx で実装します。
// RUT の重複確認と登録のように、複数のリポジトリ呼び出しを一つのトランザクションにまとめます。
// nil の TransactionManager はトランザクションを張らずに fn を呼びます。
type TransactionManager struct {
	db Beginner
}

// NewTransactionManager は TransactionManager を生成します。db が nil の場合は nil を返します。
func NewTransactionManager(db Beginner) *TransactionManager {
	if db == nil {
		return nil
	}
	return &TransactionManager{db: db}
}

// WithinReadOnly は参照系のユースケースを読み取り専用トランザクションで実行します。
func (m *TransactionManager) WithinReadOnly(ctx context.Context, fn func(context.Context) error) error {
	return m.run(ctx, true, fn)
}

// WithinReadWrite は更新系のユースケースを読み書きトランザクションで実行します。
// 既にトランザクションがあればそれを使い回しますが、読み取り専用の中からは ErrReadOnlyTransaction を返します。
func (m *TransactionManager) WithinReadWrite(ctx context.Context, fn func(context.Context) error) error {
	return m.run(ctx, false, fn)
}

func (m *TransactionManager) run(ctx context.Context, readOnly bool, fn func(context.Context) error) error {
	if fn == nil {
		return errors.New("postgres: transaction function is required")
	}
	if m == nil {
		return fn(ctx)
	}

	if current, ok := activeFromContext(ctx); ok {
		if current.readOnly && !readOnly {
			return ErrReadOnlyTransaction
		}
		return fn(ctx)
	}

	opts := pgx.TxOptions{AccessMode: pgx.ReadWrite}
	if readOnly {
		opts.AccessMode = pgx.ReadOnly
	}
	tx, err := m.db.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("postgres: begin tx: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(ctx)
			panic(p)
		}
	}()

	if err := fn(context.WithValue(ctx, txKey{}, activeTx{tx: tx, readOnly: readOnly})); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			return errors.Join(err, fmt.Errorf("postgres: rollback: %w", rbErr))
		}
		return err
	}

	// pgx は失敗したコミットの後始末を自身で行う。
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("postgres: commit: %w", err)
	}
	return nil
}

// InTransaction はコンテキストにトランザクションが紐づいているかを返します。
func InTransaction(ctx context.Context) bool {
	_, ok := activeFromContext(ctx)
	return ok
}

func activeFromContext(ctx context.Context) (activeTx, bool) {
	if ctx == nil {
		return activeTx{}, false
	}
	current, ok := ctx.Value(txKey{}).(activeTx)
	return current, ok
}

func txFromContext(ctx context.Context) (pgx.Tx, bool) {
	current, ok := activeFromContext(ctx)
	return current.tx, ok
}

// QueryerFromContext はリポジトリが使う実行先を返します。ユースケースがトランザクションを張っていればそれを、なければ fallback を返します。
func QueryerFromContext(ctx context.Context, fallback Queryer) Queryer {
	if tx, ok := txFromContext(ctx); ok {
		return tx
	}
	return fallback
}

// Queryer は pgx.Tx と pgxpool.Pool が共通に満たすクエリ実行の抽象です。
type Queryer interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}
