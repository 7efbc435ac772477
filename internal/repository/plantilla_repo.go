package repository

import (
	"context"

	"github.com/bruzzonedistribuidora/Ferreteria-Manager-sub001/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PlantillaRepository interface {
	Create(ctx context.Context, p *model.PlantillaImportacion) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.PlantillaImportacion, error)
	ListByProveedor(ctx context.Context, proveedorID uuid.UUID) ([]model.PlantillaImportacion, error)
	Update(ctx context.Context, p *model.PlantillaImportacion) error
	// Delete is a hard delete — plantillas have no soft-delete semantics.
	Delete(ctx context.Context, id uuid.UUID) error
}

type plantillaRepo struct{ db *gorm.DB }

func NewPlantillaRepository(db *gorm.DB) PlantillaRepository { return &plantillaRepo{db: db} }

func (r *plantillaRepo) Create(ctx context.Context, p *model.PlantillaImportacion) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *plantillaRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.PlantillaImportacion, error) {
	var p model.PlantillaImportacion
	err := r.db.WithContext(ctx).First(&p, id).Error
	return &p, err
}

func (r *plantillaRepo) ListByProveedor(ctx context.Context, proveedorID uuid.UUID) ([]model.PlantillaImportacion, error) {
	var plantillas []model.PlantillaImportacion
	err := r.db.WithContext(ctx).
		Where("proveedor_id = ?", proveedorID).
		Order("created_at ASC").
		Find(&plantillas).Error
	return plantillas, err
}

func (r *plantillaRepo) Update(ctx context.Context, p *model.PlantillaImportacion) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *plantillaRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.PlantillaImportacion{}, id).Error
}
