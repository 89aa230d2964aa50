package detectionService

import (
	"context"

	"ThermalVision/internal/api/detection"
	"ThermalVision/internal/entity"
	"ThermalVision/pkg/events"
	"ThermalVision/pkg/impulse"
	"ThermalVision/pkg/thermal"
	"ThermalVision/pkg/utils"
	"github.com/sirupsen/logrus"
)

type IDetectionService interface {
	ClassifyImage(ctx context.Context, req detection.ClassifyImageRequest) (*entity.DetectionOutcome, error)
	ClassifyBuffer(ctx context.Context, image []byte, frame thermal.Frame) (*entity.DetectionOutcome, error)
	ClassifierReady() bool
}

type detectionService struct {
	log        *logrus.Logger
	classifier impulse.IClassifier
	publisher  events.IPublisher
	utils      utils.IUtils
}

// NewDetectionService wires the pipeline. publisher may be nil.
func NewDetectionService(
	log *logrus.Logger,
	classifier impulse.IClassifier,
	publisher events.IPublisher,
	utils utils.IUtils,
) IDetectionService {
	return &detectionService{
		log:        log,
		classifier: classifier,
		publisher:  publisher,
		utils:      utils,
	}
}
