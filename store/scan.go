package store

import (
	"encoding/json"

	"github.com/jackc/pgx/v5"

	"articlevault/types"
)

// scanArticle reads one row in articleColumns order.
func scanArticle(rows pgx.Rows) (*types.Article, error) {
	var a types.Article
	var advanced []byte

	err := rows.Scan(
		&a.ID, &a.Fingerprint, &a.Title, &a.Text, &a.Summary, &a.Source, &a.Author, &a.OriginalLink,
		&a.Language, &a.CategoriesAuto, &a.CategoriesUser, &advanced,
		&a.CommentsCount, &a.LikesCount, &a.ViewsCount, &a.SubmitterID, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(advanced) > 0 {
		var ac types.AdvancedCategories
		if err := json.Unmarshal(advanced, &ac); err != nil {
			return nil, err
		}
		a.CategoriesAdvanced = &ac
	}
	return &a, nil
}
