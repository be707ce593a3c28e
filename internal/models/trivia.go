package models

import (
	"strconv"

	"github.com/uptrace/bun"
)

type Category struct {
	bun.BaseModel `bun:"table:categories,alias:c"`

	ID   int64  `bun:"id,pk,autoincrement" json:"id"`
	Type string `bun:"type,notnull" json:"type"`
}

type Question struct {
	bun.BaseModel `bun:"table:questions,alias:q"`

	ID         int64  `bun:"id,pk,autoincrement" json:"id"`
	Question   string `bun:"question,notnull" json:"question"`
	Answer     string `bun:"answer,notnull" json:"answer"`
	Category   int64  `bun:"category,notnull" json:"category"`
	Difficulty int    `bun:"difficulty,notnull" json:"difficulty"`
}

// CategoryMap renders categories as the {"id": "type"} object the trivia frontend expects.
func CategoryMap(categories []Category) map[string]string {
	out := make(map[string]string, len(categories))
	for _, c := range categories {
		out[strconv.FormatInt(c.ID, 10)] = c.Type
	}
	return out
}
