// Package progress derives unlock state and progress rollups from raw
// completion data. Every function here is a pure projection of its inputs.
package progress

import (
	"math"
	"sort"

	"github.com/google/uuid"

	"qurba-backend/internal/models"
)

// Set is the set of material ids a learner has completed.
type Set map[uuid.UUID]struct{}

func NewSet(ids ...uuid.UUID) Set {
	s := make(Set, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

func (s Set) Has(id uuid.UUID) bool {
	_, ok := s[id]
	return ok
}

type DayProgress struct {
	DayNumber          int  `json:"day_number"`
	TotalMaterials     int  `json:"total_materials"`
	CompletedMaterials int  `json:"completed_materials"`
	IsUnlocked         bool `json:"is_unlocked"`
	IsCompleted        bool `json:"is_completed"`
	IsCurrent          bool `json:"is_current"`
}

type Summary struct {
	TotalDays      int `json:"total_days"`
	DaysCompleted  int `json:"days_completed"`
	CurrentDay     int `json:"current_day"`
	OverallPercent int `json:"overall_percent"`
}

// IsMaterialUnlocked reports whether materials[index] may be opened. The
// first material of a day is always open; every later one needs its
// predecessor completed. index must be within range.
func IsMaterialUnlocked(materials []*models.Material, completed Set, index int) bool {
	if index < 0 || index >= len(materials) {
		panic("progress: material index out of range")
	}
	if index == 0 {
		return true
	}
	return completed.Has(materials[index-1].ID)
}

// IsDayComplete reports whether every material of a non-empty day is completed.
func IsDayComplete(materials []*models.Material, completed Set) bool {
	if len(materials) == 0 {
		return false
	}
	for _, m := range materials {
		if !completed.Has(m.ID) {
			return false
		}
	}
	return true
}

// ComputeDayProgress folds over days 1..totalDays once. Each day only looks
// at the previous day's completion and whether a current day was already
// picked.
func ComputeDayProgress(totalDays int, materialsByDay map[int][]*models.Material, completed Set) []DayProgress {
	if totalDays <= 0 {
		return []DayProgress{}
	}

	days := make([]DayProgress, 0, totalDays)
	prevCompleted := false
	currentAssigned := false

	for day := 1; day <= totalDays; day++ {
		materials := materialsByDay[day]

		done := 0
		for _, m := range materials {
			if completed.Has(m.ID) {
				done++
			}
		}

		dp := DayProgress{
			DayNumber:          day,
			TotalMaterials:     len(materials),
			CompletedMaterials: done,
			IsCompleted:        len(materials) > 0 && done == len(materials),
			IsUnlocked:         day == 1 || prevCompleted,
		}
		if dp.IsUnlocked && !dp.IsCompleted && !currentAssigned {
			dp.IsCurrent = true
			currentAssigned = true
		}

		days = append(days, dp)
		prevCompleted = dp.IsCompleted
	}

	return days
}

func Summarize(days []DayProgress) Summary {
	s := Summary{TotalDays: len(days), CurrentDay: 1}
	for _, d := range days {
		if d.IsCompleted {
			s.DaysCompleted++
		}
		if d.IsCurrent {
			s.CurrentDay = d.DayNumber
		}
	}
	s.OverallPercent = percent(s.DaysCompleted, s.TotalDays)
	return s
}

// GroupByDay buckets materials by day and orders each bucket by order_index,
// falling back to creation time.
func GroupByDay(materials []*models.Material) map[int][]*models.Material {
	byDay := make(map[int][]*models.Material)
	for _, m := range materials {
		byDay[m.DayNumber] = append(byDay[m.DayNumber], m)
	}
	for _, list := range byDay {
		SortMaterials(list)
	}
	return byDay
}

func SortMaterials(list []*models.Material) {
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].OrderIndex != list[j].OrderIndex {
			return list[i].OrderIndex < list[j].OrderIndex
		}
		return list[i].CreatedAt.Before(list[j].CreatedAt)
	})
}

func percent(part, whole int) int {
	if whole == 0 {
		return 0
	}
	return int(math.Round(100 * float64(part) / float64(whole)))
}
