package dto

type ShortUserDTO struct {
	ID    uint64 `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

type ShortTeamDTO struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
}

type ShortEquipmentDTO struct {
	ID         uint64  `json:"id"`
	Name       string  `json:"name"`
	Code       string  `json:"code"`
	Location   *string `json:"location,omitempty"`
	IsScrapped bool    `json:"is_scrapped"`
}
