package repository

import (
	"context"
	"time"

	"vms/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AppointmentRepository defines the interface for data access of Appointment
// entities. Reads preload the linked visitor so the service layer can enrich
// responses without extra round trips.
type AppointmentRepository interface {
	Create(ctx context.Context, appt *model.Appointment) error
	GetByID(ctx context.Context, id string) (*model.Appointment, error)
	ListByVisitor(ctx context.Context, visitorID uuid.UUID) ([]model.Appointment, error)
	// ListByHost matches the free-text host name, optionally excluding statuses.
	ListByHost(ctx context.Context, hostName string, exclude ...model.AppointmentStatus) ([]model.Appointment, error)
	ListByStatuses(ctx context.Context, statuses []model.AppointmentStatus) ([]model.Appointment, error)
	ListRecent(ctx context.Context, statuses []model.AppointmentStatus, limit int) ([]model.Appointment, error)
	ListAll(ctx context.Context) ([]model.Appointment, error)
	// SetStatus overwrites the status unconditionally (no prior-state guard).
	SetStatus(ctx context.Context, id string, status model.AppointmentStatus) error
	SetDuration(ctx context.Context, id string, minutes int) error
	// Transition applies status from→to and stamps timestampColumn in a single
	// conditional UPDATE. Reports whether this call performed the transition;
	// under concurrent calls for the same id exactly one caller wins.
	Transition(ctx context.Context, id string, from, to model.AppointmentStatus, timestampColumn string, at time.Time) (bool, error)
	CountByStatus(ctx context.Context, status model.AppointmentStatus) (int64, error)
	CountAll(ctx context.Context) (int64, error)
}

type appointmentRepository struct {
	db *gorm.DB
}

// NewAppointmentRepository returns a new instance of AppointmentRepository
func NewAppointmentRepository(db *gorm.DB) AppointmentRepository {
	return &appointmentRepository{db: db}
}

func (r *appointmentRepository) Create(ctx context.Context, appt *model.Appointment) error {
	// The visitor row is managed separately; never write it through the
	// association.
	return GetDB(ctx, r.db).Omit(clause.Associations).Create(appt).Error
}

func (r *appointmentRepository) GetByID(ctx context.Context, id string) (*model.Appointment, error) {
	var appt model.Appointment
	if err := GetDB(ctx, r.db).Preload("Visitor").First(&appt, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &appt, nil
}

func (r *appointmentRepository) ListByVisitor(ctx context.Context, visitorID uuid.UUID) ([]model.Appointment, error) {
	var appts []model.Appointment
	err := GetDB(ctx, r.db).
		Preload("Visitor").
		Where("visitor_id = ?", visitorID).
		Order("scheduled_time").
		Find(&appts).Error
	return appts, err
}

func (r *appointmentRepository) ListByHost(ctx context.Context, hostName string, exclude ...model.AppointmentStatus) ([]model.Appointment, error) {
	query := GetDB(ctx, r.db).Preload("Visitor").Where("host_name = ?", hostName)
	if len(exclude) > 0 {
		query = query.Where("status NOT IN ?", exclude)
	}

	var appts []model.Appointment
	err := query.Order("scheduled_time").Find(&appts).Error
	return appts, err
}

func (r *appointmentRepository) ListByStatuses(ctx context.Context, statuses []model.AppointmentStatus) ([]model.Appointment, error) {
	var appts []model.Appointment
	err := GetDB(ctx, r.db).
		Preload("Visitor").
		Where("status IN ?", statuses).
		Order("scheduled_time").
		Find(&appts).Error
	return appts, err
}

func (r *appointmentRepository) ListRecent(ctx context.Context, statuses []model.AppointmentStatus, limit int) ([]model.Appointment, error) {
	var appts []model.Appointment
	err := GetDB(ctx, r.db).
		Preload("Visitor").
		Where("status IN ?", statuses).
		Order("created_at DESC").
		Limit(limit).
		Find(&appts).Error
	return appts, err
}

func (r *appointmentRepository) ListAll(ctx context.Context) ([]model.Appointment, error) {
	var appts []model.Appointment
	err := GetDB(ctx, r.db).Preload("Visitor").Order("created_at DESC").Find(&appts).Error
	return appts, err
}

func (r *appointmentRepository) SetStatus(ctx context.Context, id string, status model.AppointmentStatus) error {
	res := GetDB(ctx, r.db).
		Model(&model.Appointment{}).
		Where("id = ?", id).
		Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *appointmentRepository) SetDuration(ctx context.Context, id string, minutes int) error {
	res := GetDB(ctx, r.db).
		Model(&model.Appointment{}).
		Where("id = ?", id).
		Update("duration_minutes", minutes)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *appointmentRepository) Transition(ctx context.Context, id string, from, to model.AppointmentStatus, timestampColumn string, at time.Time) (bool, error) {
	res := GetDB(ctx, r.db).
		Model(&model.Appointment{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]interface{}{
			"status":        to,
			timestampColumn: at,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *appointmentRepository) CountByStatus(ctx context.Context, status model.AppointmentStatus) (int64, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.Appointment{}).Where("status = ?", status).Count(&count).Error
	return count, err
}

func (r *appointmentRepository) CountAll(ctx context.Context) (int64, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.Appointment{}).Count(&count).Error
	return count, err
}
