package domain

import (
	"context"
	"fmt"

	"ledgerbook/internal/core/apperror"
	"ledgerbook/internal/core/id"
	"ledgerbook/internal/core/tx"
	"ledgerbook/pkg/logger"
)

// MasterService provides create/read/update/delete for a master record type.
// Name uniqueness per company is checked here; stricter rules plug in as hooks.
type MasterService[T Master] struct {
	repo      MasterRepository[T]
	txManager tx.Manager
	hooks     *HookRegistry[T]

	// entityName for error messages
	entityName string
	keyField   string
}

// MasterServiceConfig configures the master service.
type MasterServiceConfig[T Master] struct {
	Repo       MasterRepository[T]
	TxManager  tx.Manager
	EntityName string

	// KeyField names the unique field in error details (default "name")
	KeyField string
}

// NewMasterService creates a new master service.
func NewMasterService[T Master](cfg MasterServiceConfig[T]) *MasterService[T] {
	keyField := cfg.KeyField
	if keyField == "" {
		keyField = "name"
	}
	return &MasterService[T]{
		repo:       cfg.Repo,
		txManager:  cfg.TxManager,
		hooks:      NewHookRegistry[T](),
		entityName: cfg.EntityName,
		keyField:   keyField,
	}
}

// Hooks returns the hook registry for external registration.
func (s *MasterService[T]) Hooks() *HookRegistry[T] {
	return s.hooks
}

func (s *MasterService[T]) normalizeValidationErr(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := apperror.AsAppError(err); ok {
		return err
	}
	return apperror.NewValidation(err.Error())
}

func (s *MasterService[T]) normalizeGetErr(err error, key any) error {
	if err == nil {
		return nil
	}
	if apperror.IsNotFound(err) {
		return apperror.NewNotFound(s.entityName, key)
	}
	if _, ok := apperror.AsAppError(err); ok {
		return err
	}
	return apperror.NewInternal(err).WithDetail("entity", s.entityName).WithDetail("id", key)
}

// ensureUnique fails with Duplicate if another record already uses m's key.
func (s *MasterService[T]) ensureUnique(ctx context.Context, m T) error {
	existing, err := s.repo.GetByKey(ctx, m.GetCompanyID(), m.UniqueKey())
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil
		}
		return fmt.Errorf("check %s uniqueness: %w", s.entityName, err)
	}
	if existing.GetID() != m.GetID() {
		return apperror.NewDuplicate(s.entityName, s.keyField, m.UniqueKey())
	}
	return nil
}

// Create validates and inserts a record.
func (s *MasterService[T]) Create(ctx context.Context, m T) error {
	if err := m.Validate(ctx); err != nil {
		return s.normalizeValidationErr(err)
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.ensureUnique(ctx, m); err != nil {
			return err
		}
		if err := s.hooks.Run(ctx, BeforeCreate, m); err != nil {
			return err
		}
		if err := s.repo.Create(ctx, m); err != nil {
			return fmt.Errorf("create %s: %w", s.entityName, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if err := s.hooks.Run(ctx, AfterCreate, m); err != nil {
		logger.Warn(ctx, "after-create hook failed", "entity", s.entityName, "error", err)
	}
	return nil
}

// GetByID retrieves a record by ID.
func (s *MasterService[T]) GetByID(ctx context.Context, entityID id.ID) (T, error) {
	m, err := s.repo.GetByID(ctx, entityID)
	if err != nil {
		return m, s.normalizeGetErr(err, entityID.String())
	}
	return m, nil
}

// GetByKey retrieves a record by its unique name or symbol.
func (s *MasterService[T]) GetByKey(ctx context.Context, companyID id.ID, key string) (T, error) {
	m, err := s.repo.GetByKey(ctx, companyID, key)
	if err != nil {
		return m, s.normalizeGetErr(err, key)
	}
	return m, nil
}

// Update validates and stores a record.
func (s *MasterService[T]) Update(ctx context.Context, m T) error {
	if err := m.Validate(ctx); err != nil {
		return s.normalizeValidationErr(err)
	}

	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.repo.GetByID(ctx, m.GetID()); err != nil {
			return s.normalizeGetErr(err, m.GetID().String())
		}
		if err := s.ensureUnique(ctx, m); err != nil {
			return err
		}
		if err := s.hooks.Run(ctx, BeforeUpdate, m); err != nil {
			return err
		}
		if err := s.repo.Update(ctx, m); err != nil {
			return fmt.Errorf("update %s: %w", s.entityName, err)
		}
		return nil
	})
}

// Delete removes a record after its before-delete hooks pass.
func (s *MasterService[T]) Delete(ctx context.Context, entityID id.ID) error {
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		m, err := s.repo.GetByID(ctx, entityID)
		if err != nil {
			return s.normalizeGetErr(err, entityID.String())
		}
		if err := s.hooks.Run(ctx, BeforeDelete, m); err != nil {
			return err
		}
		if err := s.repo.Delete(ctx, entityID); err != nil {
			return fmt.Errorf("delete %s: %w", s.entityName, err)
		}
		return nil
	})
}

// DeleteMany removes several records atomically; any refusal aborts the batch.
func (s *MasterService[T]) DeleteMany(ctx context.Context, ids []id.ID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	var removed int64
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		for _, entityID := range ids {
			m, err := s.repo.GetByID(ctx, entityID)
			if err != nil {
				return s.normalizeGetErr(err, entityID.String())
			}
			if err := s.hooks.Run(ctx, BeforeDelete, m); err != nil {
				return err
			}
		}
		n, err := s.repo.DeleteMany(ctx, ids)
		if err != nil {
			return fmt.Errorf("delete %s batch: %w", s.entityName, err)
		}
		removed = n
		return nil
	})
	return removed, err
}

// List retrieves records with filtering.
func (s *MasterService[T]) List(ctx context.Context, filter ListFilter) (ListResult[T], error) {
	return s.repo.List(ctx, filter)
}
