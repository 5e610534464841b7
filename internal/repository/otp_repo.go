package repository

import (
	"context"
	"time"

	"vms/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// OTPRepository persists the single outstanding code per phone number.
type OTPRepository interface {
	// Upsert stores code for the phone, replacing any prior outstanding code.
	Upsert(ctx context.Context, phoneNumber, code string) error
	GetByPhone(ctx context.Context, phoneNumber string) (*model.OTPCode, error)
	// Consume deletes the row only if both phone and code match, reporting
	// whether this call won the delete. Concurrent verifications for the same
	// phone resolve to exactly one winner at the database.
	Consume(ctx context.Context, phoneNumber, code string) (bool, error)
}

type otpRepository struct {
	db *gorm.DB
}

// NewOTPRepository returns a new instance of OTPRepository
func NewOTPRepository(db *gorm.DB) OTPRepository {
	return &otpRepository{db: db}
}

func (r *otpRepository) Upsert(ctx context.Context, phoneNumber, code string) error {
	entry := model.OTPCode{PhoneNumber: phoneNumber, Code: code, CreatedAt: time.Now()}
	return GetDB(ctx, r.db).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "phone_number"}},
		DoUpdates: clause.AssignmentColumns([]string{"code", "created_at"}),
	}).Create(&entry).Error
}

func (r *otpRepository) GetByPhone(ctx context.Context, phoneNumber string) (*model.OTPCode, error) {
	var entry model.OTPCode
	if err := GetDB(ctx, r.db).First(&entry, "phone_number = ?", phoneNumber).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *otpRepository) Consume(ctx context.Context, phoneNumber, code string) (bool, error) {
	res := GetDB(ctx, r.db).
		Where("phone_number = ? AND code = ?", phoneNumber, code).
		Delete(&model.OTPCode{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
