package progress

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"qurba-backend/internal/models"
)

// DefaultBatch is used for learners without an explicit batch.
const DefaultBatch = 1

const ToppersLimit = 10

type Learner struct {
	UserID      uuid.UUID `json:"user_id"`
	FullName    string    `json:"full_name"`
	Phone       string    `json:"phone"`
	BatchNumber int       `json:"batch_number"`
}

type AttendanceCell struct {
	DayNumber   int        `json:"day_number"`
	Attended    bool       `json:"attended"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

type AttendanceRow struct {
	Learner
	DaysAttended int              `json:"days_attended"`
	Days         []AttendanceCell `json:"days"`
}

type Topper struct {
	Learner
	TotalScore   int     `json:"total_score"`
	MaxPossible  int     `json:"max_possible"`
	Percentage   float64 `json:"percentage"`
	QuizzesTaken int     `json:"quizzes_taken"`
}

type BatchSummary struct {
	BatchNumber  int `json:"batch_number"`
	StudentCount int `json:"student_count"`
}

// AttendanceRegister marks (learner, day) attended when the learner completed
// every material of a non-empty day. The cell timestamp is the latest
// completion among that day's materials.
func AttendanceRegister(learners []Learner, totalDays int, materialsByDay map[int][]*models.Material, completions []models.CompletionRecord) []AttendanceRow {
	dayOf := make(map[uuid.UUID]int)
	for day, materials := range materialsByDay {
		for _, m := range materials {
			dayOf[m.ID] = day
		}
	}

	type userDay struct {
		user uuid.UUID
		day  int
	}
	counts := make(map[userDay]int)
	latest := make(map[userDay]time.Time)
	seen := make(map[userDay]map[uuid.UUID]bool)

	for _, c := range completions {
		day, ok := dayOf[c.MaterialID]
		if !ok {
			continue
		}
		key := userDay{c.UserID, day}
		if seen[key] == nil {
			seen[key] = make(map[uuid.UUID]bool)
		}
		if seen[key][c.MaterialID] {
			continue
		}
		seen[key][c.MaterialID] = true
		counts[key]++
		if c.CompletedAt.After(latest[key]) {
			latest[key] = c.CompletedAt
		}
	}

	rows := make([]AttendanceRow, 0, len(learners))
	for _, l := range learners {
		row := AttendanceRow{Learner: l, Days: make([]AttendanceCell, 0, totalDays)}
		for day := 1; day <= totalDays; day++ {
			cell := AttendanceCell{DayNumber: day}
			key := userDay{l.UserID, day}
			total := len(materialsByDay[day])
			if total > 0 && counts[key] >= total {
				at := latest[key]
				cell.Attended = true
				cell.CompletedAt = &at
				row.DaysAttended++
			}
			row.Days = append(row.Days, cell)
		}
		rows = append(rows, row)
	}
	return rows
}

// Toppers ranks learners by quiz percentage. Learners with nothing to score
// are left out, ties keep learner order, and at most limit rows are returned.
func Toppers(learners []Learner, submissions []models.QuizSubmission, limit int) []Topper {
	byUser := make(map[uuid.UUID]*Topper, len(learners))
	for _, l := range learners {
		byUser[l.UserID] = &Topper{Learner: l}
	}

	for _, s := range submissions {
		t, ok := byUser[s.UserID]
		if !ok {
			continue
		}
		t.TotalScore += s.Score
		t.MaxPossible += s.MaxScore
		t.QuizzesTaken++
	}

	out := make([]Topper, 0, len(learners))
	for _, l := range learners {
		t := byUser[l.UserID]
		if t.MaxPossible <= 0 {
			continue
		}
		t.Percentage = scorePercent(t.TotalScore, t.MaxPossible)
		out = append(out, *t)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Percentage > out[j].Percentage
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func BatchInfo(learners []Learner) []BatchSummary {
	counts := make(map[int]int)
	for _, l := range learners {
		batch := l.BatchNumber
		if batch <= 0 {
			batch = DefaultBatch
		}
		counts[batch]++
	}

	out := make([]BatchSummary, 0, len(counts))
	for batch, n := range counts {
		out = append(out, BatchSummary{BatchNumber: batch, StudentCount: n})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].BatchNumber < out[j].BatchNumber
	})
	return out
}

func scorePercent(score, possible int) float64 {
	if possible == 0 {
		return 0
	}
	return float64(score) * 100 / float64(possible)
}
