package dto

import (
	"github.com/MACM18/NNS-sub002/internal/core/types"
)

// CreateDrumRequest registers a new drum at full capacity.
type CreateDrumRequest struct {
	DrumNumber string `json:"drumNumber" binding:"required"`
	ItemName   string `json:"itemName" binding:"required"`

	// Capacity accepts a JSON number or numeric string
	Capacity types.Length `json:"capacity"`

	CalculationMethod string `json:"calculationMethod"`
}

// DrumListFilter narrows drum listings.
type DrumListFilter struct {
	Status   string `form:"status"`
	ItemName string `form:"itemName"`
	Limit    int    `form:"limit"`
	Offset   int    `form:"offset"`
}

// ManualWastageRequest sets an operator override for a drum.
type ManualWastageRequest struct {
	// Value accepts a JSON number or numeric string; empty coerces to zero
	Value types.Length `json:"value"`
}
