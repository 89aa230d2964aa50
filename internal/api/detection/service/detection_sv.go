package detectionService

import (
	"context"
	"fmt"
	"time"

	"ThermalVision/internal/api/detection"
	"ThermalVision/internal/entity"
	contextPkg "ThermalVision/pkg/context"
	"ThermalVision/pkg/events"
	"ThermalVision/pkg/features"
	"ThermalVision/pkg/log"
	"ThermalVision/pkg/presence"
	"ThermalVision/pkg/thermal"
)

func (s *detectionService) ClassifyImage(ctx context.Context, req detection.ClassifyImageRequest) (*entity.DetectionOutcome, error) {
	image, err := s.utils.DecodeBase64Image(req.Image)
	if err != nil {
		return nil, fmt.Errorf("%w: image: %w", detection.ErrDecode, err)
	}

	return s.ClassifyBuffer(ctx, image, req.Frame)
}

// ClassifyBuffer runs extraction, classification, the presence policy and,
// when a person is present and a frame was sent, the heading estimate. A nil
// frame means none was sent; an empty one is estimated and rejected. Any
// failure aborts the run without a partial outcome.
func (s *detectionService) ClassifyBuffer(ctx context.Context, image []byte, frame thermal.Frame) (*entity.DetectionOutcome, error) {
	requestID := contextPkg.GetRequestID(ctx)
	vector := features.Extract(image)

	if err := s.classifier.Initialize(ctx); err != nil {
		return nil, fmt.Errorf("waiting for classifier: %w", err)
	}

	result, err := s.classifier.Classify(vector)
	if err != nil {
		return nil, err
	}

	s.log.WithFields(log.Fields{
		"request_id": requestID,
		"anomaly":    result.Anomaly,
		"results":    result.Results,
	}).Debug("Classifier result")

	scores, err := presence.Read(result)
	if err != nil {
		return nil, err
	}

	s.log.WithFields(log.Fields{
		"request_id": requestID,
		"person":     scores.Person,
		"no_person":  scores.NoPerson,
	}).Debug("Presence scores")

	if !scores.HasPerson() {
		outcome := entity.NewDetectionOutcome(false, nil)
		return &outcome, nil
	}

	var direction *entity.Direction
	if frame != nil {
		d, err := thermal.Estimate(frame)
		if err != nil {
			return nil, fmt.Errorf("estimating direction: %w", err)
		}
		direction = &d
	}

	outcome := entity.NewDetectionOutcome(true, direction)
	if s.publisher != nil {
		s.publisher.Publish(events.DetectionEvent{
			RequestID: requestID,
			Timestamp: time.Now(),
			Outcome:   outcome,
		})
	}

	return &outcome, nil
}

func (s *detectionService) ClassifierReady() bool {
	return s.classifier.IsReady()
}
