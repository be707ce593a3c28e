package db

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"ms-fyyur/internal/database"
	"ms-fyyur/internal/models"
	"ms-fyyur/internal/trivia"

	"github.com/uptrace/bun"
)

type DB struct {
	Bun *bun.DB
}

func (d *DB) ListCategories(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	err := d.Bun.NewSelect().Model(&categories).Order("c.id ASC").Scan(ctx)
	return categories, err
}

func (d *DB) GetCategory(ctx context.Context, id int64) (*models.Category, error) {
	category := new(models.Category)
	err := d.Bun.NewSelect().Model(category).Where("c.id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, trivia.ErrCategoryNotFound
	}
	if err != nil {
		return nil, err
	}
	return category, nil
}

func likePattern(folded string) string {
	r := strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")
	return "%" + r.Replace(folded) + "%"
}

func (d *DB) applyFilter(q *bun.SelectQuery, filter trivia.QuestionFilter) *bun.SelectQuery {
	if filter.CategoryID != 0 {
		q = q.Where("q.category = ?", filter.CategoryID)
	}
	if filter.Search != "" {
		q = q.Where("LOWER(q.question) LIKE ? ESCAPE '!'", likePattern(database.Lower(d.Bun, filter.Search)))
	}
	return q
}

func (d *DB) CountQuestions(ctx context.Context, filter trivia.QuestionFilter) (int, error) {
	return d.applyFilter(d.Bun.NewSelect().Model((*models.Question)(nil)), filter).Count(ctx)
}

func (d *DB) ListQuestions(ctx context.Context, filter trivia.QuestionFilter, offset, limit int) ([]models.Question, error) {
	var questions []models.Question
	err := d.applyFilter(d.Bun.NewSelect().Model(&questions), filter).
		Order("q.id ASC").
		Offset(offset).
		Limit(limit).
		Scan(ctx)
	return questions, err
}

func (d *DB) CreateQuestion(ctx context.Context, q *models.Question) error {
	_, err := d.Bun.NewInsert().Model(q).Exec(ctx)
	return err
}

func (d *DB) DeleteQuestion(ctx context.Context, id int64) error {
	res, err := d.Bun.NewDelete().Model((*models.Question)(nil)).Where("id = ?", id).Exec(ctx)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return trivia.ErrQuestionNotFound
	}
	return nil
}

func (d *DB) NextQuizQuestion(ctx context.Context, categoryID int64, exclude []int64) (*models.Question, error) {
	q := new(models.Question)
	query := d.Bun.NewSelect().Model(q)
	if categoryID != 0 {
		query = query.Where("q.category = ?", categoryID)
	}
	if len(exclude) > 0 {
		query = query.Where("q.id NOT IN (?)", bun.In(exclude))
	}
	err := query.Order("q.id ASC").Limit(1).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return q, nil
}
