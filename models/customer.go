package models

import (
	"context"
	"time"

	"bitbucket.org/mmdatafocus/pos_backend/config"
	"bitbucket.org/mmdatafocus/pos_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CustomerLevel struct {
	ID               int             `gorm:"primary_key" json:"id"`
	Name             string          `gorm:"size:50;not null" json:"name" binding:"required"`
	DiscountRate     decimal.Decimal `gorm:"type:decimal(5,2);default:0" json:"discount_rate"`
	PointsMultiplier decimal.Decimal `gorm:"type:decimal(5,2);default:1" json:"points_multiplier"`
	MinPoints        int             `gorm:"default:0" json:"min_points"`
	MinSpending      decimal.Decimal `gorm:"type:decimal(12,2);default:0" json:"min_spending"`
	SortOrder        int             `gorm:"default:0" json:"sort_order"`
	IsDefault        *bool           `gorm:"not null;default:false" json:"is_default"`
	CreatedAt        time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type Customer struct {
	ID            int             `gorm:"primary_key" json:"id"`
	MemberNo      string          `gorm:"size:20;uniqueIndex;not null" json:"member_no"`
	Name          string          `gorm:"size:100;not null" json:"name" binding:"required"`
	Phone         string          `gorm:"size:20;uniqueIndex;not null" json:"phone" binding:"required"`
	Email         string          `gorm:"size:100" json:"email"`
	Birthday      *time.Time      `json:"birthday"`
	Gender        string          `gorm:"size:10" json:"gender"`
	Address       string          `gorm:"size:255" json:"address"`
	LevelId       *int            `gorm:"index" json:"level_id"`
	Level         *CustomerLevel  `gorm:"foreignKey:LevelId" json:"level,omitempty"`
	Points        int             `gorm:"default:0" json:"points"`
	TotalSpending decimal.Decimal `gorm:"type:decimal(12,2);default:0" json:"total_spending"`
	TotalOrders   int             `gorm:"default:0" json:"total_orders"`
	Note          string          `gorm:"type:text" json:"note"`
	IsActive      *bool           `gorm:"not null;default:true" json:"is_active"`
	CreatedAt     time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

// PointsLog is the append-only loyalty ledger. balance records the
// customer's point balance after the entry.
type PointsLog struct {
	ID            int           `gorm:"primary_key" json:"id"`
	CustomerId    int           `gorm:"index;not null" json:"customer_id"`
	Points        int           `gorm:"not null" json:"points"`
	Balance       int           `gorm:"not null" json:"balance"`
	LogType       PointsLogType `gorm:"type:enum('EARN','REDEEM','ADJUST','EXPIRE');not null" json:"log_type"`
	Description   string        `gorm:"size:255" json:"description"`
	ReferenceType string        `gorm:"size:50;index:idx_points_reference" json:"reference_type"`
	ReferenceId   int           `gorm:"index:idx_points_reference" json:"reference_id"`
	CreatedBy     int           `json:"created_by"`
	CreatedAt     time.Time     `gorm:"autoCreateTime" json:"created_at"`
}

type NewCustomerLevel struct {
	Name             string          `json:"name" binding:"required"`
	DiscountRate     decimal.Decimal `json:"discount_rate"`
	PointsMultiplier decimal.Decimal `json:"points_multiplier"`
	MinPoints        int             `json:"min_points"`
	MinSpending      decimal.Decimal `json:"min_spending"`
	SortOrder        int             `json:"sort_order"`
}

type NewCustomer struct {
	Name     string     `json:"name" binding:"required"`
	Phone    string     `json:"phone" binding:"required"`
	Email    string     `json:"email"`
	Birthday *time.Time `json:"birthday"`
	Gender   string     `json:"gender"`
	Address  string     `json:"address"`
	LevelId  *int       `json:"level_id"`
	Note     string     `json:"note"`
}

type CustomerQuery struct {
	Pagination
	Keyword string `form:"keyword" json:"keyword"`
	LevelId int    `form:"level_id" json:"level_id"`
}

func (input *NewCustomerLevel) validate(ctx context.Context, id int) error {
	if id > 0 {
		if err := utils.ValidateResourceId[CustomerLevel](ctx, id); err != nil {
			return utils.NewNotFound("customer level")
		}
	}
	if err := utils.ValidateUnique[CustomerLevel](ctx, "name", input.Name, id); err != nil {
		return err
	}
	return nil
}

func CreateCustomerLevel(ctx context.Context, input *NewCustomerLevel) (*CustomerLevel, error) {
	db := config.GetDB()

	if err := input.validate(ctx, 0); err != nil {
		return nil, err
	}

	multiplier := input.PointsMultiplier
	if multiplier.IsZero() {
		multiplier = decimal.NewFromInt(1)
	}

	level := CustomerLevel{
		Name:             input.Name,
		DiscountRate:     input.DiscountRate,
		PointsMultiplier: multiplier,
		MinPoints:        input.MinPoints,
		MinSpending:      input.MinSpending,
		SortOrder:        input.SortOrder,
		IsDefault:        utils.NewFalse(),
	}
	if err := db.WithContext(ctx).Create(&level).Error; err != nil {
		return nil, err
	}

	return &level, nil
}

func UpdateCustomerLevel(ctx context.Context, id int, input *NewCustomerLevel) (*CustomerLevel, error) {
	db := config.GetDB()

	if err := input.validate(ctx, id); err != nil {
		return nil, err
	}

	level, err := utils.FetchModel[CustomerLevel](ctx, id)
	if err != nil {
		return nil, utils.NewNotFound("customer level")
	}

	level.Name = input.Name
	level.DiscountRate = input.DiscountRate
	if !input.PointsMultiplier.IsZero() {
		level.PointsMultiplier = input.PointsMultiplier
	}
	level.MinPoints = input.MinPoints
	level.MinSpending = input.MinSpending
	level.SortOrder = input.SortOrder
	if err := db.WithContext(ctx).Save(level).Error; err != nil {
		return nil, err
	}

	return level, nil
}

// SetDefaultCustomerLevel makes one level the default; clearing the previous
// default happens in the same transaction so exactly one default survives.
func SetDefaultCustomerLevel(ctx context.Context, id int) (*CustomerLevel, error) {
	db := config.GetDB()

	if err := utils.ValidateResourceId[CustomerLevel](ctx, id); err != nil {
		return nil, utils.NewNotFound("customer level")
	}

	tx := db.Begin()

	if err := tx.Model(&CustomerLevel{}).
		Where("is_default = ?", true).
		Update("is_default", false).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Model(&CustomerLevel{}).
		Where("id = ?", id).
		Update("is_default", true).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	return utils.FetchModel[CustomerLevel](ctx, id)
}

func ListCustomerLevels(ctx context.Context) ([]*CustomerLevel, error) {
	db := config.GetDB()

	var levels []*CustomerLevel
	if err := db.WithContext(ctx).Order("sort_order ASC, id ASC").Find(&levels).Error; err != nil {
		return nil, err
	}
	return levels, nil
}

func (input *NewCustomer) validate(ctx context.Context, id int) error {
	if id > 0 {
		if err := utils.ValidateResourceId[Customer](ctx, id); err != nil {
			return utils.NewNotFound("customer")
		}
	}
	// validate unique phone
	if err := utils.ValidateUnique[Customer](ctx, "phone", input.Phone, id); err != nil {
		return err
	}
	if err := utils.ValidatePhoneNumber(input.Phone, utils.CountryCode); err != nil {
		return utils.NewValidationError("phone number is not valid", "phone")
	}
	// validate email
	if input.Email != "" {
		if !utils.IsValidEmail(input.Email) {
			return utils.NewValidationError("email is not valid", "email")
		}
	}
	if input.LevelId != nil {
		if err := utils.ValidateResourceId[CustomerLevel](ctx, *input.LevelId); err != nil {
			return utils.NewNotFound("customer level")
		}
	}
	return nil
}

func CreateCustomer(ctx context.Context, input *NewCustomer) (*Customer, error) {
	db := config.GetDB()

	if err := input.validate(ctx, 0); err != nil {
		return nil, err
	}

	levelId := input.LevelId
	if levelId == nil {
		// new members join at the default level
		var defaultLevel CustomerLevel
		err := db.WithContext(ctx).Where("is_default = ?", true).First(&defaultLevel).Error
		if err == nil {
			levelId = &defaultLevel.ID
		} else if err != gorm.ErrRecordNotFound {
			return nil, err
		}
	}

	customer := Customer{
		MemberNo: utils.GenerateMemberNo(ctx),
		Name:     input.Name,
		Phone:    input.Phone,
		Email:    input.Email,
		Birthday: input.Birthday,
		Gender:   input.Gender,
		Address:  input.Address,
		LevelId:  levelId,
		Note:     input.Note,
		IsActive: utils.NewTrue(),
	}
	if err := db.WithContext(ctx).Create(&customer).Error; err != nil {
		return nil, err
	}

	return &customer, nil
}

func UpdateCustomer(ctx context.Context, id int, input *NewCustomer) (*Customer, error) {
	db := config.GetDB()

	if err := input.validate(ctx, id); err != nil {
		return nil, err
	}

	customer, err := utils.FetchModel[Customer](ctx, id)
	if err != nil {
		return nil, utils.NewNotFound("customer")
	}

	customer.Name = input.Name
	customer.Phone = input.Phone
	customer.Email = input.Email
	customer.Birthday = input.Birthday
	customer.Gender = input.Gender
	customer.Address = input.Address
	customer.LevelId = input.LevelId
	customer.Note = input.Note
	if err := db.WithContext(ctx).Save(customer).Error; err != nil {
		return nil, err
	}

	return customer, nil
}

func GetCustomer(ctx context.Context, id int) (*Customer, error) {
	customer, err := utils.FetchModel[Customer](ctx, id, "Level")
	if err != nil {
		return nil, utils.NewNotFound("customer")
	}
	return customer, nil
}

// search by member no / name / phone keyword
func ListCustomers(ctx context.Context, query *CustomerQuery) (*PageResult[Customer], error) {
	db := config.GetDB()

	dbCtx := db.WithContext(ctx).Preload("Level")
	if query.Keyword != "" {
		keyword := "%" + query.Keyword + "%"
		dbCtx = dbCtx.Where("member_no LIKE ? OR name LIKE ? OR phone LIKE ?", keyword, keyword, keyword)
	}
	if query.LevelId > 0 {
		dbCtx = dbCtx.Where("level_id = ?", query.LevelId)
	}

	return Paginate[Customer](dbCtx, &query.Pagination, "id DESC")
}

func ListPointsLogs(ctx context.Context, customerId int, pagination *Pagination) (*PageResult[PointsLog], error) {
	db := config.GetDB()

	if err := utils.ValidateResourceId[Customer](ctx, customerId); err != nil {
		return nil, utils.NewNotFound("customer")
	}

	dbCtx := db.WithContext(ctx).Where("customer_id = ?", customerId)
	return Paginate[PointsLog](dbCtx, pagination, "id DESC")
}

// LockCustomer holds the customer row FOR UPDATE for the rest of the
// transaction. All point mutations go through a locked row.
func LockCustomer(tx *gorm.DB, customerId int) (*Customer, error) {
	var customer Customer
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&customer, customerId).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, utils.NewNotFound("customer")
		}
		return nil, err
	}
	return &customer, nil
}

func appendPointsLog(tx *gorm.DB, customer *Customer, points int, logType PointsLogType, description string, referenceType string, referenceId int, createdBy int) error {
	log := PointsLog{
		CustomerId:    customer.ID,
		Points:        points,
		Balance:       customer.Points,
		LogType:       logType,
		Description:   description,
		ReferenceType: referenceType,
		ReferenceId:   referenceId,
		CreatedBy:     createdBy,
	}
	return tx.Create(&log).Error
}

// AddPoints credits points to an already-locked customer row inside the
// caller's transaction and appends the ledger entry with the post balance.
func AddPoints(tx *gorm.DB, ctx context.Context, customer *Customer, points int, logType PointsLogType, description string, referenceType string, referenceId int) error {

	if points <= 0 {
		return utils.NewValidationError("points must be positive", "points")
	}

	customer.Points += points
	if err := tx.Model(customer).UpdateColumn("points", customer.Points).Error; err != nil {
		return err
	}

	createdBy, _ := utils.GetUserIdFromContext(ctx)
	return appendPointsLog(tx, customer, points, logType, description, referenceType, referenceId, createdBy)
}

// UsePoints debits points from an already-locked customer row. Spending more
// than the balance fails with InsufficientPointsError and mutates nothing.
func UsePoints(tx *gorm.DB, ctx context.Context, customer *Customer, points int, logType PointsLogType, description string, referenceType string, referenceId int) error {

	if points <= 0 {
		return utils.NewValidationError("points must be positive", "points")
	}

	if points > customer.Points {
		return &utils.InsufficientPointsError{
			Required:  points,
			Available: customer.Points,
		}
	}

	customer.Points -= points
	if err := tx.Model(customer).UpdateColumn("points", customer.Points).Error; err != nil {
		return err
	}

	createdBy, _ := utils.GetUserIdFromContext(ctx)
	return appendPointsLog(tx, customer, -points, logType, description, referenceType, referenceId, createdBy)
}

// AdjustPointsStandalone applies a manual point adjustment in its own
// transaction (back-office correction endpoint).
func AdjustPointsStandalone(ctx context.Context, customerId int, points int, description string) (*Customer, error) {
	db := config.GetDB()

	if points == 0 {
		return nil, utils.NewValidationError("points must not be zero", "points")
	}

	tx := db.Begin()

	customer, err := LockCustomer(tx, customerId)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	if points > 0 {
		err = AddPoints(tx, ctx, customer, points, PointsLogTypeAdjust, description, "manual", 0)
	} else {
		err = UsePoints(tx, ctx, customer, -points, PointsLogTypeAdjust, description, "manual", 0)
	}
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	return customer, tx.Commit().Error
}
