package infra

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/jinzhu/gorm"
	_ "github.com/mattn/go-sqlite3"

	"github.com/dialogkeep/dialog-control/config"
	"github.com/dialogkeep/dialog-control/domain/model"
)

type DataBase struct {
	db *gorm.DB
}

func NewDataBase(cfg *config.Config) (*DataBase, error) {
	dbpath := cfg.DBPath
	if !path.IsAbs(dbpath) {
		dbpath = path.Join(os.Getenv("PWD"), dbpath)
	}
	if err := os.MkdirAll(filepath.Dir(dbpath), 0755); err != nil {
		return nil, err
	}
	db, err := gorm.Open("sqlite3", dbpath)
	if err != nil {
		return nil, err
	}
	db.AutoMigrate(&model.User{})
	db.AutoMigrate(&model.Turn{})
	return &DataBase{db: db}, nil
}

// CreateUser returns the existing user when the external id is already
// registered, otherwise inserts a new subscribed user. A losing insert in
// a creation race collapses into a re-fetch of the winner's row, so the
// operation stays idempotent.
func (d *DataBase) CreateUser(externalID *int64) (bool, uint, error) {
	if externalID != nil {
		var existing model.User
		err := d.db.Where("external_id = ?", *externalID).First(&existing).Error
		if err == nil {
			return false, existing.ID, nil
		}
		if err != gorm.ErrRecordNotFound {
			return false, 0, err
		}
	}

	user := model.User{
		ExternalID:   externalID,
		IsSubscribed: true,
		CreatedAt:    timeNow(),
	}
	if err := d.db.Create(&user).Error; err != nil {
		if externalID != nil {
			var existing model.User
			if ferr := d.db.Where("external_id = ?", *externalID).First(&existing).Error; ferr == nil {
				return false, existing.ID, nil
			}
		}
		return false, 0, fmt.Errorf("failed to create user: %w", err)
	}
	return true, user.ID, nil
}

func (d *DataBase) FindUserID(externalID int64) (uint, bool, error) {
	var user model.User
	err := d.db.Where("external_id = ?", externalID).First(&user).Error
	if err == gorm.ErrRecordNotFound {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return user.ID, true, nil
}

// ToggleSubscription runs as a single transaction so concurrent toggles
// for the same user cannot lose an update.
func (d *DataBase) ToggleSubscription(userID uint) (bool, bool, error) {
	var state bool
	var found bool
	err := d.db.Transaction(func(tx *gorm.DB) error {
		var user model.User
		if err := tx.Where("id = ?", userID).First(&user).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return nil
			}
			return err
		}
		found = true
		state = !user.IsSubscribed
		return tx.Model(&user).Update("is_subscribed", state).Error
	})
	return state, found, err
}

func (d *DataBase) AddTurn(userID uint, question string, answer, sourceLink *string) (uint, error) {
	turn := model.Turn{
		Question:   question,
		Answer:     model.NormalizeAnswer(answer),
		SourceLink: sourceLink,
		UserID:     userID,
		CreatedAt:  timeNow(),
	}
	if err := d.db.Create(&turn).Error; err != nil {
		return 0, fmt.Errorf("failed to create turn: %w", err)
	}
	if turn.ID == 0 {
		return 0, fmt.Errorf("store did not assign a turn id")
	}
	return turn.ID, nil
}

func (d *DataBase) SetScore(turnID uint, score int) (bool, error) {
	res := d.db.Model(&model.Turn{}).Where("id = ?", turnID).Update("score", score)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// SetBoundary flags the user's most recent turn at call time. Doing
// nothing for a user without turns is deliberate.
func (d *DataBase) SetBoundary(userID uint, flag bool) error {
	var turns []model.Turn
	err := d.db.Where("user_id = ?", userID).
		Order("created_at desc, id desc").Limit(1).Find(&turns).Error
	if err != nil {
		return err
	}
	if len(turns) == 0 {
		return nil
	}
	return d.db.Model(&turns[0]).Update("is_boundary", flag).Error
}

func (d *DataBase) ListTurnsSince(userID uint, since time.Time) ([]model.Turn, error) {
	var turns []model.Turn
	// id breaks created_at ties so the order stays deterministic under
	// rapid successive inserts.
	err := d.db.Where("user_id = ? AND created_at >= ?", userID, since).
		Order("created_at asc, id asc").Find(&turns).Error
	return turns, err
}

func (d *DataBase) CountRecentTurns(userID uint, nth int) (int64, *time.Time, error) {
	if nth < 1 {
		return 0, nil, fmt.Errorf("nth must be positive, got %d", nth)
	}
	var count int64
	if err := d.db.Model(&model.Turn{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		return 0, nil, err
	}
	if count < int64(nth) {
		return count, nil, nil
	}
	var turns []model.Turn
	err := d.db.Where("user_id = ?", userID).
		Order("created_at desc, id desc").Offset(nth - 1).Limit(1).Find(&turns).Error
	if err != nil {
		return 0, nil, err
	}
	if len(turns) == 0 {
		return count, nil, nil
	}
	createdAt := turns[0].CreatedAt
	return count, &createdAt, nil
}
