package persistence

import (
	"context"
	"errors"

	"github.com/dormhub/backend/internal/domain/billing"
	"github.com/dormhub/backend/internal/domain/shared"
	"github.com/dormhub/backend/internal/domain/shared/valueobject"
	"github.com/dormhub/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormInvoiceRepository implements InvoiceRepository using GORM
type GormInvoiceRepository struct {
	db *gorm.DB
}

// NewGormInvoiceRepository creates a new GormInvoiceRepository
func NewGormInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db}
}

// FindByID finds an invoice with its items
func (r *GormInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Invoice, error) {
	var model models.InvoiceModel
	if err := dbFrom(ctx, r.db).WithContext(ctx).
		Preload("Items").
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain()
}

// FindByIDForUpdate finds an invoice with a row-level lock. Must run inside
// a transaction.
func (r *GormInvoiceRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*billing.Invoice, error) {
	var model models.InvoiceModel
	if err := dbFrom(ctx, r.db).WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	if err := dbFrom(ctx, r.db).WithContext(ctx).
		Where("invoice_id = ?", id).
		Find(&model.Items).Error; err != nil {
		return nil, err
	}
	return model.ToDomain()
}

// ExistsForTargetPeriodType reports whether the target already has an
// invoice for the period containing an item of the given type. Backs the
// bulk generator's duplicate guards.
func (r *GormInvoiceRepository) ExistsForTargetPeriodType(ctx context.Context, target billing.BillTarget, period valueobject.BillingPeriod, itemType billing.ItemType) (bool, error) {
	var count int64
	err := dbFrom(ctx, r.db).WithContext(ctx).
		Model(&models.InvoiceModel{}).
		Joins("JOIN invoice_items ON invoice_items.invoice_id = invoices.id").
		Where("invoices.target_kind = ? AND invoices.target_id = ? AND invoices.period = ? AND invoice_items.type = ?",
			target.Kind(), target.ID(), period.String(), itemType).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// List finds invoices matching the filter with pagination
func (r *GormInvoiceRepository) List(ctx context.Context, filter billing.InvoiceFilter) (*shared.Paginated[*billing.Invoice], error) {
	db := dbFrom(ctx, r.db).WithContext(ctx)
	query := r.applyFilter(db.Model(&models.InvoiceModel{}), filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	page := filter.Page
	if page <= 0 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}

	var invoiceModels []models.InvoiceModel
	if err := query.
		Preload("Items").
		Order("issue_date DESC, created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&invoiceModels).Error; err != nil {
		return nil, err
	}

	invoices := make([]*billing.Invoice, len(invoiceModels))
	for i := range invoiceModels {
		inv, err := invoiceModels[i].ToDomain()
		if err != nil {
			return nil, err
		}
		invoices[i] = inv
	}
	return shared.NewPaginated(invoices, total, page, pageSize), nil
}

// Save creates or updates an invoice and fully replaces its item set
func (r *GormInvoiceRepository) Save(ctx context.Context, invoice *billing.Invoice) error {
	model := models.InvoiceModelFromDomain(invoice)
	db := dbFrom(ctx, r.db).WithContext(ctx)

	if err := db.Omit(clause.Associations).Save(&model).Error; err != nil {
		return err
	}
	return r.replaceItems(db, model)
}

// SaveWithLock saves with optimistic locking (version check)
func (r *GormInvoiceRepository) SaveWithLock(ctx context.Context, invoice *billing.Invoice) error {
	model := models.InvoiceModelFromDomain(invoice)
	db := dbFrom(ctx, r.db).WithContext(ctx)

	result := db.Model(&models.InvoiceModel{}).
		Where("id = ? AND version = ?", invoice.ID, invoice.Version-1).
		Omit(clause.Associations).
		Updates(model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError("OPTIMISTIC_LOCK_ERROR", "The invoice has been modified by another transaction")
	}
	return r.replaceItems(db, model)
}

// replaceItems deletes stale line items and upserts the current set
func (r *GormInvoiceRepository) replaceItems(db *gorm.DB, model *models.InvoiceModel) error {
	itemIDs := make([]uuid.UUID, len(model.Items))
	for i, item := range model.Items {
		itemIDs[i] = item.ID
	}

	stale := db.Where("invoice_id = ?", model.ID)
	if len(itemIDs) > 0 {
		stale = stale.Where("id NOT IN ?", itemIDs)
	}
	if err := stale.Delete(&models.InvoiceItemModel{}).Error; err != nil {
		return err
	}

	for i := range model.Items {
		if err := db.Save(&model.Items[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

// Delete removes an invoice and its items
func (r *GormInvoiceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	db := dbFrom(ctx, r.db).WithContext(ctx)
	if err := db.Where("invoice_id = ?", id).Delete(&models.InvoiceItemModel{}).Error; err != nil {
		return err
	}
	result := db.Delete(&models.InvoiceModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *GormInvoiceRepository) applyFilter(query *gorm.DB, filter billing.InvoiceFilter) *gorm.DB {
	if filter.Status != nil {
		query = query.Where("invoices.status = ?", *filter.Status)
	}
	if filter.TargetKind != nil {
		query = query.Where("invoices.target_kind = ?", *filter.TargetKind)
	}
	if filter.TargetID != nil {
		query = query.Where("invoices.target_id = ?", *filter.TargetID)
	}
	if filter.Period != nil {
		query = query.Where("invoices.period = ?", filter.Period.String())
	}
	if filter.Search != "" {
		query = query.Where("invoices.notes ILIKE ?", "%"+filter.Search+"%")
	}
	return query
}
