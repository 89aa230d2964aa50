package detection

import (
	"ThermalVision/pkg/thermal"
)

type ClassifyImageRequest struct {
	Image string        `json:"image" form:"image" validate:"required"`
	Frame thermal.Frame `json:"frame,omitempty"`
}

type InfoResponse struct {
	Info string `json:"info"`
}

type HealthResponse struct {
	Status          string `json:"status"`
	ClassifierReady bool   `json:"classifier_ready"`
}
