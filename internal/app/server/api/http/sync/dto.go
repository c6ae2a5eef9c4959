package sync

import "salesync/internal/domain/entity"

type pullInput struct{}

type pullOutput struct {
	Body *entity.Dataset
}

type pushInput struct {
	Body entity.Dataset
}

type pushOutput struct {
	Body PushResponse
}

// PushResponse число принятых сущностей по видам
type PushResponse struct {
	Status   string         `json:"status" example:"Ok"`
	Received map[string]int `json:"received"`
}
