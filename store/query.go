package store

import (
	"fmt"
	"strings"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// buildCounterQuery renders the counter UPDATE for the fields that are set.
// An empty query means there is nothing to update.
func buildCounterQuery(id int64, upd CounterUpdate) (string, []any) {
	var set []string
	var args []any

	if upd.Comments != nil {
		args = append(args, *upd.Comments)
		set = append(set, fmt.Sprintf("comments_count = $%d", len(args)))
	}
	if upd.Likes != nil {
		args = append(args, *upd.Likes)
		set = append(set, fmt.Sprintf("likes_count = $%d", len(args)))
	}
	if upd.Views != nil {
		args = append(args, *upd.Views)
		set = append(set, fmt.Sprintf("views_count = $%d", len(args)))
	}
	if len(set) == 0 {
		return "", nil
	}

	set = append(set, "updated_at = NOW()")
	args = append(args, id)
	return fmt.Sprintf("UPDATE articles SET %s WHERE id = $%d", strings.Join(set, ", "), len(args)), args
}

// buildListQuery translates a ListFilter into SQL plus positional args.
func buildListQuery(filter ListFilter) (string, []any) {
	var sb strings.Builder
	sb.WriteString("SELECT " + articleColumns + " FROM articles")

	var where []string
	var args []any

	if filter.Category != "" {
		args = append(args, filter.Category)
		where = append(where, fmt.Sprintf("($%d = ANY (categories_auto) OR $%d = ANY (categories_user))", len(args), len(args)))
	}
	if filter.SubmitterID != 0 {
		args = append(args, filter.SubmitterID)
		where = append(where, fmt.Sprintf("submitter_id = $%d", len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		where = append(where, fmt.Sprintf("(title ILIKE $%d OR text ILIKE $%d)", len(args), len(args)))
	}

	if len(where) > 0 {
		sb.WriteString(" WHERE " + strings.Join(where, " AND "))
	}
	sb.WriteString(" ORDER BY created_at DESC")

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	args = append(args, limit)
	sb.WriteString(fmt.Sprintf(" LIMIT $%d", len(args)))

	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		sb.WriteString(fmt.Sprintf(" OFFSET $%d", len(args)))
	}

	return sb.String(), args
}
