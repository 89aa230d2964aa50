package presence

import (
	"errors"
	"fmt"

	"ThermalVision/internal/entity"
)

const (
	LabelNoPerson = "no person"
	LabelPerson   = "person"

	PersonThreshold   = 0.90
	NoPersonThreshold = 0.10
)

var ErrUnexpectedLabelOrder = errors.New("unexpected classifier label order")

// Scores are the two confidences read out of a classification.
type Scores struct {
	NoPerson float64
	Person   float64
}

// Read pulls the confidences out of result. The classifier must report
// "no person" first and "person" second; anything else means the model
// contract changed.
func Read(result entity.ClassificationResult) (Scores, error) {
	if len(result.Results) < 2 {
		return Scores{}, fmt.Errorf("%w: expected 2 labels, got %d", ErrUnexpectedLabelOrder, len(result.Results))
	}
	if got := result.Results[0].Label; got != LabelNoPerson {
		return Scores{}, fmt.Errorf("%w: index 0 is %q, want %q", ErrUnexpectedLabelOrder, got, LabelNoPerson)
	}
	if got := result.Results[1].Label; got != LabelPerson {
		return Scores{}, fmt.Errorf("%w: index 1 is %q, want %q", ErrUnexpectedLabelOrder, got, LabelPerson)
	}

	return Scores{
		NoPerson: result.Results[0].Value,
		Person:   result.Results[1].Value,
	}, nil
}

// HasPerson holds only when both thresholds are strictly cleared.
func (s Scores) HasPerson() bool {
	return s.Person > PersonThreshold && s.NoPerson < NoPersonThreshold
}

func HasPerson(result entity.ClassificationResult) (bool, error) {
	scores, err := Read(result)
	if err != nil {
		return false, err
	}
	return scores.HasPerson(), nil
}
