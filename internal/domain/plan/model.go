package plan

import (
	"github.com/netcycle/netcycle/internal/types"
	"github.com/shopspring/decimal"
)

type Plan struct {
	ID         string          `db:"id" json:"id"`
	Name       string          `db:"name" json:"name"`
	MonthlyFee decimal.Decimal `db:"monthly_fee" json:"monthly_fee"`
	types.BaseModel
}
