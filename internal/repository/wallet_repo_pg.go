package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/krylovda/pitchbook/internal/domain"
)

type WalletRepository interface {
	GetByUserID(ctx context.Context, userID int64) (*domain.Wallet, error)
	// Apply inserts the ledger entry and moves the balance by its amount in
	// one transaction, holding a row lock on the wallet. Debits that would
	// push the balance below -max_negative_balance roll back with
	// InsufficientBalanceError and no side effects.
	Apply(ctx context.Context, userID int64, wtx *domain.WalletTransaction, createIfMissing bool) error
	ListTransactions(ctx context.Context, userID int64, limit int32) ([]domain.WalletTransaction, error)
	ListFacilityOwnerWallets(ctx context.Context) ([]domain.OwnerWallet, error)
}

type PGWalletRepository struct {
	db *pgxpool.Pool
}

func NewWalletRepository(db *pgxpool.Pool) WalletRepository {
	return &PGWalletRepository{db: db}
}

func (r *PGWalletRepository) GetByUserID(ctx context.Context, userID int64) (*domain.Wallet, error) {
	row := r.db.QueryRow(ctx, `SELECT id, user_id, balance, max_negative_balance, created_at, updated_at FROM wallets WHERE user_id=$1`, userID)
	var w domain.Wallet
	if err := row.Scan(&w.ID, &w.UserID, &w.Balance, &w.MaxNegativeBalance, &w.CreatedAt, &w.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrWalletNotFound
		}
		return nil, &domain.StorageError{Op: "get wallet", Err: err}
	}
	return &w, nil
}

func (r *PGWalletRepository) Apply(ctx context.Context, userID int64, wtx *domain.WalletTransaction, createIfMissing bool) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return &domain.StorageError{Op: "begin wallet apply", Err: err}
	}
	defer tx.Rollback(ctx)

	if createIfMissing {
		if _, err := tx.Exec(ctx, `INSERT INTO wallets (user_id, balance, max_negative_balance) VALUES ($1, 0, 0) ON CONFLICT (user_id) DO NOTHING`, userID); err != nil {
			return &domain.StorageError{Op: "create wallet", Err: err}
		}
	}

	var w domain.Wallet
	row := tx.QueryRow(ctx, `SELECT id, user_id, balance, max_negative_balance FROM wallets WHERE user_id=$1 FOR UPDATE`, userID)
	if err := row.Scan(&w.ID, &w.UserID, &w.Balance, &w.MaxNegativeBalance); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrWalletNotFound
		}
		return &domain.StorageError{Op: "lock wallet", Err: err}
	}

	if wtx.Amount.IsNegative() {
		debit := wtx.Amount.Neg()
		if !w.CanDebit(debit) {
			return &domain.InsufficientBalanceError{
				UserID:    userID,
				Available: w.Available(),
				Requested: debit,
			}
		}
	}

	wtx.WalletID = w.ID
	if err := tx.QueryRow(ctx, `INSERT INTO wallet_transactions (wallet_id, type, amount, description, reference_id, payment_method)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING id, created_at`,
		wtx.WalletID, wtx.Type, wtx.Amount, wtx.Description, wtx.ReferenceID, wtx.PaymentMethod).
		Scan(&wtx.ID, &wtx.CreatedAt); err != nil {
		return &domain.StorageError{Op: "insert wallet transaction", Err: err}
	}

	if _, err := tx.Exec(ctx, `UPDATE wallets SET balance = balance + $1, updated_at = now() WHERE id=$2`, wtx.Amount, w.ID); err != nil {
		return &domain.StorageError{Op: "update wallet balance", Err: err}
	}

	if err := tx.Commit(ctx); err != nil {
		return &domain.StorageError{Op: "commit wallet apply", Err: err}
	}
	return nil
}

func (r *PGWalletRepository) ListTransactions(ctx context.Context, userID int64, limit int32) ([]domain.WalletTransaction, error) {
	rows, err := r.db.Query(ctx, `SELECT t.id, t.wallet_id, t.type, t.amount, COALESCE(t.description, ''), COALESCE(t.reference_id, ''), COALESCE(t.payment_method, ''), t.created_at
		FROM wallet_transactions t JOIN wallets w ON w.id = t.wallet_id
		WHERE w.user_id=$1 ORDER BY t.created_at DESC, t.id DESC LIMIT $2`, userID, limit)
	if err != nil {
		return nil, &domain.StorageError{Op: "list wallet transactions", Err: err}
	}
	defer rows.Close()

	txs := make([]domain.WalletTransaction, 0)
	for rows.Next() {
		var t domain.WalletTransaction
		if err := rows.Scan(&t.ID, &t.WalletID, &t.Type, &t.Amount, &t.Description, &t.ReferenceID, &t.PaymentMethod, &t.CreatedAt); err != nil {
			return nil, &domain.StorageError{Op: "scan wallet transaction", Err: err}
		}
		txs = append(txs, t)
	}
	return txs, rows.Err()
}

func (r *PGWalletRepository) ListFacilityOwnerWallets(ctx context.Context) ([]domain.OwnerWallet, error) {
	// Owners without a wallet row still appear in the reports, with zeros.
	rows, err := r.db.Query(ctx, `SELECT u.id, u.name, COALESCE(w.balance, 0), COALESCE(w.max_negative_balance, 0),
			COALESCE((SELECT SUM(t.amount) FROM wallet_transactions t WHERE t.wallet_id = w.id AND t.type = $1), 0)
		FROM users u LEFT JOIN wallets w ON w.user_id = u.id
		WHERE u.role = $2 ORDER BY u.id`,
		domain.TransactionTypeBookingPayment, domain.RoleFacilityOwner)
	if err != nil {
		return nil, &domain.StorageError{Op: "list facility owner wallets", Err: err}
	}
	defer rows.Close()

	owners := make([]domain.OwnerWallet, 0)
	for rows.Next() {
		var o domain.OwnerWallet
		if err := rows.Scan(&o.UserID, &o.Name, &o.Balance, &o.MaxNegativeBalance, &o.BookingPayments); err != nil {
			return nil, &domain.StorageError{Op: "scan owner wallet", Err: err}
		}
		owners = append(owners, o)
	}
	return owners, rows.Err()
}

var _ WalletRepository = (*PGWalletRepository)(nil)
