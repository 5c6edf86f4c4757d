// Package voucher records vouchers and runs the maker-checker approval flow.
package voucher

import (
	"context"
	"time"

	"ledgerbook/internal/core/entity"
	"ledgerbook/internal/core/id"
	"ledgerbook/internal/domain"
)

// Filter selects vouchers for listing.
type Filter struct {
	CompanyID id.ID
	Type      *entity.VoucherType
	Status    *entity.VoucherStatus
	From      *time.Time
	To        *time.Time
	Limit     int
	Offset    int
}

// Repository persists vouchers together with their entries.
// Entries are written and deleted with their voucher.
type Repository interface {
	Create(ctx context.Context, v *entity.Voucher) error

	// GetByID loads the voucher with its entries.
	GetByID(ctx context.Context, voucherID id.ID) (*entity.Voucher, error)

	// GetForUpdate loads the voucher and locks it until the transaction ends.
	GetForUpdate(ctx context.Context, voucherID id.ID) (*entity.Voucher, error)

	GetByNumber(ctx context.Context, companyID id.ID, vt entity.VoucherType, voucherNo string) (*entity.Voucher, error)
	GetByCode(ctx context.Context, companyID id.ID, code string) (*entity.Voucher, error)
	CodeExists(ctx context.Context, companyID id.ID, code string) (bool, error)

	// Update stores header changes and replaces all entries.
	Update(ctx context.Context, v *entity.Voucher) error

	// UpdateStatus writes v's status and verifier only if the stored status
	// still equals expected. It reports whether the row changed.
	UpdateStatus(ctx context.Context, v *entity.Voucher, expected entity.VoucherStatus) (bool, error)

	Delete(ctx context.Context, voucherID id.ID) error
	DeleteMany(ctx context.Context, ids []id.ID) (int64, error)

	// List returns headers only, ordered by date then insertion.
	List(ctx context.Context, filter Filter) (domain.ListResult[*entity.Voucher], error)
}
