package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ObservantAbc123/OpenFarm3-D/internal/model"
)

type RuleRepository struct {
	db *pgxpool.Pool
}

func NewRuleRepository(db *pgxpool.Pool) *RuleRepository {
	return &RuleRepository{db: db}
}

// ListEnabled returns all enabled auto-reply rules in evaluation order:
// ascending priority, ties broken by id.
func (r *RuleRepository) ListEnabled(ctx context.Context) ([]model.AutoReplyRule, error) {
	query := `
        SELECT id, enabled, priority, rule_type, start_date, end_date,
               day_mask, start_minute, end_minute, subject, body
        FROM auto_reply_rules
        WHERE enabled
        ORDER BY priority, id
    `
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	rules := []model.AutoReplyRule{}
	for rows.Next() {
		var rule model.AutoReplyRule
		err := rows.Scan(
			&rule.ID, &rule.Enabled, &rule.Priority, &rule.Type,
			&rule.StartDate, &rule.EndDate,
			&rule.DayMask, &rule.StartMinute, &rule.EndMinute,
			&rule.Subject, &rule.Body,
		)
		if err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	return rules, rows.Err()
}
