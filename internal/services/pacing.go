package services

import "github.com/planforge/planforge-backend/internal/domain/plan"

// PacingStrategy estimates study time for a number of range units. The exact
// formula is a policy choice, so it stays pluggable behind this interface.
type PacingStrategy interface {
	EstimateMinutes(contentType string, units int) int
}

// UnitPacing maps range units to minutes with a flat per-unit rate per
// content type.
type UnitPacing struct {
	BookMinutesPerPage       int
	LectureMinutesPerEpisode int
	CustomMinutesPerUnit     int
}

func DefaultPacing() UnitPacing {
	return UnitPacing{
		BookMinutesPerPage:       3,
		LectureMinutesPerEpisode: 30,
		CustomMinutesPerUnit:     10,
	}
}

func (p UnitPacing) EstimateMinutes(contentType string, units int) int {
	if units <= 0 {
		return 0
	}
	switch contentType {
	case plan.ContentTypeBook:
		return units * p.BookMinutesPerPage
	case plan.ContentTypeLecture:
		return units * p.LectureMinutesPerEpisode
	default:
		return units * p.CustomMinutesPerUnit
	}
}
