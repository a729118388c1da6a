package constants

// --- СТАТУСЫ ЗАЯВОК НА ОБСЛУЖИВАНИЕ (совпадают со значениями в БД) ---

type RequestStatus string

const (
	StatusNew        RequestStatus = "new"
	StatusInProgress RequestStatus = "in_progress"
	StatusRepaired   RequestStatus = "repaired"
	StatusScrap      RequestStatus = "scrap"
)

var RequestStatuses = []RequestStatus{StatusNew, StatusInProgress, StatusRepaired, StatusScrap}

func (s RequestStatus) IsValid() bool {
	switch s {
	case StatusNew, StatusInProgress, StatusRepaired, StatusScrap:
		return true
	}
	return false
}

// IsTerminal - из финальных статусов нет исходящих переходов.
func (s RequestStatus) IsTerminal() bool {
	return s == StatusRepaired || s == StatusScrap
}

// --- ТИПЫ ЗАЯВОК ---

type RequestType string

const (
	TypePreventive RequestType = "preventive"
	TypeCorrective RequestType = "corrective"
)

func (t RequestType) IsValid() bool {
	return t == TypePreventive || t == TypeCorrective
}

// --- ПРИОРИТЕТЫ ---

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}
