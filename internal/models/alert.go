package models

import "time"

const (
	ConditionAbove = "above"
	ConditionBelow = "below"
)

// ValidCondition reports whether c is one of the two supported
// crossing directions.
func ValidCondition(c string) bool {
	return c == ConditionAbove || c == ConditionBelow
}

type Alert struct {
	ID          int64      `json:"id"`
	CoinID      string     `json:"coinId"`
	CoinName    string     `json:"coinName"`
	TargetPrice float64    `json:"targetPrice"`
	Condition   string     `json:"condition"`
	Email       string     `json:"email"`
	IsActive    bool       `json:"isActive"`
	CreatedAt   time.Time  `json:"createdAt"`
	TriggeredAt *time.Time `json:"triggeredAt,omitempty"`
}
