package tenant

import (
	"errors"
	"sync"

	"rental-service/internal/apperr"
	"rental-service/internal/model"
	"rental-service/pkg/database"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// tenantTables are the models migrated into every tenant schema.
var tenantTables = []struct {
	name  string
	model interface{}
}{
	{"users", &model.User{}},
	{"tokens", &model.Token{}},
	{"properties", &model.Property{}},
	{"reservations", &model.Reservation{}},
}

// Resolver maps inbound tenant identifiers to storage namespaces, creating
// the schema and its tables on first use. Resolution is idempotent and safe
// under concurrent first-requests for the same tenant.
type Resolver struct {
	db  *gorm.DB
	log *zap.Logger

	mu    sync.RWMutex
	known map[string]Namespace
}

// NewResolver creates a resolver over the given database handle.
func NewResolver(db *gorm.DB, log *zap.Logger) *Resolver {
	return &Resolver{
		db:    db,
		log:   log,
		known: make(map[string]Namespace),
	}
}

// Resolve returns the namespace for the identifier, provisioning it first if
// needed. An empty identifier selects the default namespace. The cache is
// only populated after the schema durably exists, so a hit implies the
// namespace is usable.
func (r *Resolver) Resolve(identifier string) (Namespace, error) {
	if identifier == "" {
		return r.ensureDefault()
	}

	r.mu.RLock()
	ns, ok := r.known[identifier]
	r.mu.RUnlock()
	if ok {
		return ns, nil
	}

	schema, err := SchemaName(identifier)
	if err != nil {
		return Namespace{}, apperr.TenantResolution(err)
	}

	row, err := r.findOrCreateTenant(identifier, schema)
	if err != nil {
		return Namespace{}, apperr.TenantResolution(err)
	}

	if err := r.provisionSchema(schema); err != nil {
		return Namespace{}, apperr.TenantResolution(err)
	}

	tenantID := row.ID
	ns = Namespace{Schema: schema, TenantID: &tenantID}

	r.mu.Lock()
	r.known[identifier] = ns
	r.mu.Unlock()

	r.log.Info("Tenant namespace resolved",
		zap.String("identifier", identifier),
		zap.String("schema", schema))
	return ns, nil
}

// ensureDefault provisions the tenant tables in the public schema once, so
// the global namespace behaves exactly like a tenant one.
func (r *Resolver) ensureDefault() (Namespace, error) {
	r.mu.RLock()
	ns, ok := r.known[""]
	r.mu.RUnlock()
	if ok {
		return ns, nil
	}

	if err := r.provisionSchema(DefaultSchema); err != nil {
		return Namespace{}, apperr.TenantResolution(err)
	}

	ns = DefaultNamespace()
	r.mu.Lock()
	r.known[""] = ns
	r.mu.Unlock()
	return ns, nil
}

// findOrCreateTenant persists the identifier→schema mapping. A concurrent
// insert of the same schema name is treated as success: the loser re-reads
// the winner's row.
func (r *Resolver) findOrCreateTenant(identifier, schema string) (*model.Tenant, error) {
	var row model.Tenant
	err := r.db.Where("schema_name = ?", schema).First(&row).Error
	if err == nil {
		return &row, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	row = model.Tenant{
		ID:         uuid.New(),
		Name:       identifier,
		SchemaName: schema,
	}
	if err := r.db.Create(&row).Error; err != nil {
		// Unique violation on schema_name means another request won the
		// creation race.
		var existing model.Tenant
		if ferr := r.db.Where("schema_name = ?", schema).First(&existing).Error; ferr == nil {
			return &existing, nil
		}
		return nil, err
	}
	return &row, nil
}

// provisionSchema creates the schema and migrates the tenant tables into it.
// Both steps are idempotent.
func (r *Resolver) provisionSchema(schema string) error {
	if schema != DefaultSchema {
		if err := database.CreateSchema(r.db, schema); err != nil {
			return err
		}
	}
	for _, t := range tenantTables {
		if err := r.db.Table(schema + "." + t.name).AutoMigrate(t.model); err != nil {
			return err
		}
	}
	return nil
}

// Provision creates a tenant explicitly through the management API, with a
// plan and optional custom domain. Reuses the same idempotent path as lazy
// resolution, then fills in the management fields.
func (r *Resolver) Provision(identifier, customDomain string, planID *uuid.UUID) (*model.Tenant, error) {
	schema, err := SchemaName(identifier)
	if err != nil {
		return nil, apperr.TenantResolution(err)
	}

	row, err := r.findOrCreateTenant(identifier, schema)
	if err != nil {
		return nil, apperr.TenantResolution(err)
	}

	if err := r.provisionSchema(schema); err != nil {
		return nil, apperr.TenantResolution(err)
	}

	updates := map[string]interface{}{}
	if customDomain != "" && row.CustomDomain != customDomain {
		updates["custom_domain"] = customDomain
	}
	if planID != nil {
		updates["plan_id"] = *planID
	}
	if len(updates) > 0 {
		if err := r.db.Model(&model.Tenant{}).Where("id = ?", row.ID).Updates(updates).Error; err != nil {
			return nil, apperr.Internal(err)
		}
		if err := r.db.First(row, "id = ?", row.ID).Error; err != nil {
			return nil, apperr.Internal(err)
		}
	}

	// A custom domain starts a pending verification record; at most one per
	// tenant.
	if customDomain != "" {
		verification := model.DomainVerification{
			ID:       uuid.New(),
			TenantID: row.ID,
			Domain:   customDomain,
			Status:   model.DomainVerificationPending,
		}
		if err := r.db.Where("tenant_id = ?", row.ID).FirstOrCreate(&verification).Error; err != nil {
			return nil, apperr.Internal(err)
		}
	}

	tenantID := row.ID
	ns := Namespace{Schema: schema, TenantID: &tenantID}
	r.mu.Lock()
	r.known[identifier] = ns
	r.mu.Unlock()

	return row, nil
}

// FindByID returns the tenant row with its plan preloaded.
func (r *Resolver) FindByID(id uuid.UUID) (*model.Tenant, error) {
	var row model.Tenant
	err := r.db.Preload("Plan").First(&row, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.TenantNotFound()
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return &row, nil
}

// PlanFor returns the plan attached to the namespace's tenant, or nil when
// the namespace is the default one or the tenant has no plan.
func (r *Resolver) PlanFor(ns Namespace) (*model.Plan, error) {
	if ns.TenantID == nil {
		return nil, nil
	}
	var row model.Tenant
	if err := r.db.First(&row, "id = ?", *ns.TenantID).Error; err != nil {
		return nil, err
	}
	if row.PlanID == nil {
		return nil, nil
	}
	var plan model.Plan
	if err := r.db.First(&plan, "id = ?", *row.PlanID).Error; err != nil {
		return nil, err
	}
	return &plan, nil
}
