package repository

import (
	"context"

	"github.com/bruzzonedistribuidora/Ferreteria-Manager-sub001/internal/dto"
	"github.com/bruzzonedistribuidora/Ferreteria-Manager-sub001/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ActualizacionRepository interface {
	// CreateTx persists the log together with its detail rows; callers run it
	// inside a transaction so that either everything lands or nothing does.
	CreateTx(tx *gorm.DB, a *model.ActualizacionPrecio) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.ActualizacionPrecio, error)
	List(ctx context.Context, filter dto.ActualizacionFilter) ([]model.ActualizacionPrecio, int64, error)
	// TransicionTx performs the conditional terminal transition
	// pendiente → aplicada|cancelada and reports how many rows changed.
	// Zero means the log was already resolved (or does not exist) — the
	// at-most-once guarantee for concurrent Apply/Cancel calls rests on this
	// single guarded UPDATE.
	TransicionTx(tx *gorm.DB, id uuid.UUID, hacia string) (int64, error)
	DB() *gorm.DB
}

type actualizacionRepo struct{ db *gorm.DB }

func NewActualizacionRepository(db *gorm.DB) ActualizacionRepository {
	return &actualizacionRepo{db: db}
}

func (r *actualizacionRepo) CreateTx(tx *gorm.DB, a *model.ActualizacionPrecio) error {
	return tx.Create(a).Error
}

func (r *actualizacionRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.ActualizacionPrecio, error) {
	var a model.ActualizacionPrecio
	err := r.db.WithContext(ctx).
		Preload("Detalles", func(db *gorm.DB) *gorm.DB {
			return db.Order("fila ASC")
		}).
		Preload("Proveedor").
		First(&a, id).Error
	return &a, err
}

func (r *actualizacionRepo) List(ctx context.Context, filter dto.ActualizacionFilter) ([]model.ActualizacionPrecio, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.ActualizacionPrecio{})
	if filter.ProveedorID != "" {
		q = q.Where("proveedor_id = ?", filter.ProveedorID)
	}
	if filter.Estado != "" {
		q = q.Where("estado = ?", filter.Estado)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := filter.Page
	limit := filter.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	var logs []model.ActualizacionPrecio
	err := q.Preload("Proveedor").
		Order("created_at DESC").
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&logs).Error
	return logs, total, err
}

func (r *actualizacionRepo) TransicionTx(tx *gorm.DB, id uuid.UUID, hacia string) (int64, error) {
	res := tx.Model(&model.ActualizacionPrecio{}).
		Where("id = ? AND estado = ?", id, model.ActualizacionPendiente).
		Updates(map[string]interface{}{
			"estado":      hacia,
			"resuelta_at": gorm.Expr("NOW()"),
		})
	return res.RowsAffected, res.Error
}

func (r *actualizacionRepo) DB() *gorm.DB { return r.db }
