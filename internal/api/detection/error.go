package detection

import (
	"ThermalVision/pkg/response"
	"net/http"
)

var (
	ErrDecode = response.NewError(http.StatusInternalServerError, "failed to decode request")
)
