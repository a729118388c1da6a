package dto

// DashboardStatsDTO - карточки главной страницы в пределах видимости пользователя.
type DashboardStatsDTO struct {
	Equipment  uint64 `json:"equipment"`
	Requests   uint64 `json:"requests"`
	InProgress uint64 `json:"in_progress"`
	Overdue    uint64 `json:"overdue"`
}
