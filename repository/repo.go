package repository

import (
	"context"
	"database/sql"
	"errors"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"match-service/entities"
)

// MatchRepository is the durable record store for matches. Lookups that
// find nothing return (nil, nil); callers decide the error kind.
type MatchRepository interface {
	Create(ctx context.Context, match *entities.Match) error
	FindByID(ctx context.Context, id int64) (*entities.Match, error)
	// FindByIDAndOwner filters on id and owner together so another
	// owner's match is indistinguishable from a missing one.
	FindByIDAndOwner(ctx context.Context, id, userID int64) (*entities.Match, error)
	// FindByOwner lists the owner's matches newest first, without the
	// tracking column.
	FindByOwner(ctx context.Context, userID int64) ([]*entities.Match, error)
	// UpdateFields applies the given column values in a single update
	// statement and returns the updated row.
	UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) (*entities.Match, error)
}

type repo struct {
	db *gorm.DB
}

func NewRepo(db *sql.DB) MatchRepository {
	gormDB, _ := gorm.Open(postgres.New(postgres.Config{
		Conn: db}),
		&gorm.Config{
			Logger: logger.Default.LogMode(logger.Info),
		},
	)
	return &repo{
		db: gormDB,
	}
}

func (r *repo) GetDB() *gorm.DB {
	return r.db
}

func (r *repo) Create(ctx context.Context, match *entities.Match) error {
	return r.GetDB().WithContext(ctx).Create(match).Error
}

func (r *repo) FindByID(ctx context.Context, id int64) (*entities.Match, error) {
	match := &entities.Match{}
	err := r.GetDB().WithContext(ctx).First(match, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return match, nil
}

func (r *repo) FindByIDAndOwner(ctx context.Context, id, userID int64) (*entities.Match, error) {
	match := &entities.Match{}
	err := r.GetDB().WithContext(ctx).First(match, "id = ? AND user_id = ?", id, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return match, nil
}

func (r *repo) FindByOwner(ctx context.Context, userID int64) ([]*entities.Match, error) {
	var matches []*entities.Match
	err := r.GetDB().WithContext(ctx).
		Omit("tracking").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&matches).Error
	if err != nil {
		return nil, err
	}
	return matches, nil
}

func (r *repo) UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) (*entities.Match, error) {
	err := r.GetDB().WithContext(ctx).
		Model(&entities.Match{}).
		Where("id = ?", id).
		Updates(fields).Error
	if err != nil {
		return nil, err
	}
	return r.FindByID(ctx, id)
}
