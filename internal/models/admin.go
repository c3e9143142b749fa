package models

import "time"

const SettingTotalDays = "total_days"

type Setting struct {
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

type TotalDaysRequest struct {
	TotalDays int `json:"total_days" validate:"min=1,max=365"`
}

type AdminStats struct {
	TotalUsers          int `json:"total_users"`
	WhitelistedEntries  int `json:"whitelisted_entries"`
	TotalMaterials      int `json:"total_materials"`
	TotalForms          int `json:"total_forms"`
	TotalQuizzes        int `json:"total_quizzes"`
	TotalApplications   int `json:"total_applications"`
}

type BlockRequest struct {
	IsBlocked bool `json:"is_blocked"`
}

type PasswordResetToggleRequest struct {
	Enabled bool `json:"enabled"`
}
