package detectionHandler

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ThermalVision/internal/api/detection"
	detectionService "ThermalVision/internal/api/detection/service"
	"ThermalVision/internal/entity"
	"ThermalVision/internal/middleware"
	"ThermalVision/pkg/presence"
	"ThermalVision/pkg/thermal"
	"ThermalVision/pkg/utils"
)

type stubClassifier struct {
	result entity.ClassificationResult
}

func (s *stubClassifier) Initialize(ctx context.Context) error { return nil }
func (s *stubClassifier) IsReady() bool                        { return true }
func (s *stubClassifier) Classify(vector []uint32) (entity.ClassificationResult, error) {
	return s.result, nil
}

func classification(first string, noPerson, person float64) entity.ClassificationResult {
	return entity.ClassificationResult{
		Results: []entity.Classification{
			{Label: first, Value: noPerson},
			{Label: presence.LabelPerson, Value: person},
		},
	}
}

func newTestApp(result entity.ClassificationResult) *fiber.App {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	u := utils.New()
	mw := middleware.New(logger, 1000, 1000)
	svc := detectionService.NewDetectionService(logger, &stubClassifier{result: result}, nil, u)

	app := fiber.New(fiber.Config{
		JSONEncoder: jsoniter.Marshal,
		JSONDecoder: jsoniter.Unmarshal,
	})
	app.Use(mw.NewRequestIDMiddleware())
	New(logger, validator.New(), mw, svc, u, time.Second).Start(app)
	return app
}

// rightFrameJSON renders a frame with the right-hand columns hot, cells as
// numeric strings the way the sensor gateway sends them.
func rightFrameJSON() string {
	cells := make([]string, thermal.FrameSize)
	for i := range cells {
		v := "20.5"
		if i%thermal.Columns >= 17 {
			v = "36.6"
		}
		cells[i] = strconv.Quote(v)
	}
	return "[" + strings.Join(cells, ",") + "]"
}

func doJSON(t *testing.T, app *fiber.App, body string) (int, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest("POST", "/classify-image", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, jsoniter.NewDecoder(resp.Body).Decode(&decoded))
	return resp.StatusCode, decoded
}

func TestInfo(t *testing.T) {
	app := newTestApp(classification(presence.LabelNoPerson, 1, 0))

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body map[string]string
	require.NoError(t, jsoniter.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "Rest API to classify ir image", body["info"])
}

func TestHealth(t *testing.T) {
	app := newTestApp(classification(presence.LabelNoPerson, 1, 0))

	resp, err := app.Test(httptest.NewRequest("GET", "/health", nil))
	require.NoError(t, err)

	var body map[string]interface{}
	require.NoError(t, jsoniter.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, true, body["classifier_ready"])
}

func TestClassifyImage_PersonOnTheRight(t *testing.T) {
	app := newTestApp(classification(presence.LabelNoPerson, 0.02, 0.98))

	status, body := doJSON(t, app, `{"image":"AAAB","frame":`+rightFrameJSON()+`}`)

	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, true, body["hasPerson"])
	assert.Equal(t, float64(entity.DirectionRight), body["direction"])
}

func TestClassifyImage_NoPersonOmitsDirection(t *testing.T) {
	app := newTestApp(classification(presence.LabelNoPerson, 0.6, 0.4))

	status, body := doJSON(t, app, `{"image":"AAAB","frame":`+rightFrameJSON()+`}`)

	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, false, body["hasPerson"])
	_, hasDirection := body["direction"]
	assert.False(t, hasDirection)
}

func TestClassifyImage_MissingImage(t *testing.T) {
	app := newTestApp(classification(presence.LabelNoPerson, 0.02, 0.98))

	status, body := doJSON(t, app, `{"frame":[]}`)

	assert.Equal(t, fiber.StatusInternalServerError, status)
	assert.Equal(t, "DECODE_ERROR", body["code"])
}

func TestClassifyImage_BadFrameCell(t *testing.T) {
	app := newTestApp(classification(presence.LabelNoPerson, 0.02, 0.98))

	for _, frame := range []string{`["hot"]`, `"abc"`, `[1, true]`} {
		status, body := doJSON(t, app, `{"image":"AAAB","frame":`+frame+`}`)

		assert.Equal(t, fiber.StatusInternalServerError, status, frame)
		assert.Equal(t, "DECODE_ERROR", body["code"], frame)
		assert.NotEmpty(t, body["error"], frame)
	}
}

func TestClassifyImage_MalformedJSON(t *testing.T) {
	app := newTestApp(classification(presence.LabelNoPerson, 0.02, 0.98))

	status, body := doJSON(t, app, `{"image":`)

	assert.Equal(t, fiber.StatusInternalServerError, status)
	assert.Equal(t, "DECODE_ERROR", body["code"])
}

func TestClassifyImage_EmptyFrameWithPerson(t *testing.T) {
	app := newTestApp(classification(presence.LabelNoPerson, 0.02, 0.98))

	status, body := doJSON(t, app, `{"image":"AAAB","frame":[]}`)

	assert.Equal(t, fiber.StatusInternalServerError, status)
	assert.Equal(t, "FRAME_TOO_SHORT", body["code"])
}

func TestClassifyImage_NullFrameWithPerson(t *testing.T) {
	app := newTestApp(classification(presence.LabelNoPerson, 0.02, 0.98))

	status, body := doJSON(t, app, `{"image":"AAAB","frame":null}`)

	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, true, body["hasPerson"])
	_, hasDirection := body["direction"]
	assert.False(t, hasDirection)
}

func TestClassifyImage_LabelOrderViolation(t *testing.T) {
	app := newTestApp(classification(presence.LabelPerson, 0.02, 0.95))

	status, body := doJSON(t, app, `{"image":"AAAB"}`)

	assert.Equal(t, fiber.StatusInternalServerError, status)
	assert.Equal(t, "UNEXPECTED_LABEL_ORDER", body["code"])
}

func TestClassifyImage_ShortFrame(t *testing.T) {
	app := newTestApp(classification(presence.LabelNoPerson, 0.02, 0.98))

	status, body := doJSON(t, app, `{"image":"AAAB","frame":[1,2,3]}`)

	assert.Equal(t, fiber.StatusInternalServerError, status)
	assert.Equal(t, "FRAME_TOO_SHORT", body["code"])
}

func TestClassifyImage_MultipartUpload(t *testing.T) {
	app := newTestApp(classification(presence.LabelNoPerson, 0.02, 0.98))

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("image", "frame.raw")
	require.NoError(t, err)
	_, err = part.Write([]byte{0x00, 0x00, 0x01})
	require.NoError(t, err)
	require.NoError(t, w.WriteField("frame", rightFrameJSON()))
	require.NoError(t, w.Close())

	req := httptest.NewRequest("POST", "/classify-image", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body map[string]interface{}
	require.NoError(t, jsoniter.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, true, body["hasPerson"])
	assert.Equal(t, float64(entity.DirectionRight), body["direction"])
}

// slowService finishes after the handler deadline has passed.
type slowService struct {
	delay time.Duration
	err   error
}

func (s *slowService) ClassifyImage(ctx context.Context, req detection.ClassifyImageRequest) (*entity.DetectionOutcome, error) {
	return s.ClassifyBuffer(ctx, nil, req.Frame)
}

func (s *slowService) ClassifyBuffer(ctx context.Context, image []byte, frame thermal.Frame) (*entity.DetectionOutcome, error) {
	time.Sleep(s.delay)
	if s.err != nil {
		return nil, s.err
	}
	outcome := entity.NewDetectionOutcome(true, nil)
	return &outcome, nil
}

func (s *slowService) ClassifierReady() bool { return true }

func newSlowApp(svc detectionService.IDetectionService) *fiber.App {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	mw := middleware.New(logger, 1000, 1000)
	app := fiber.New(fiber.Config{
		JSONEncoder: jsoniter.Marshal,
		JSONDecoder: jsoniter.Unmarshal,
	})
	app.Use(mw.NewRequestIDMiddleware())
	New(logger, validator.New(), mw, svc, utils.New(), 10*time.Millisecond).Start(app)
	return app
}

func TestClassifyImage_CompletedRunOutlivesDeadline(t *testing.T) {
	app := newSlowApp(&slowService{delay: 30 * time.Millisecond})

	status, body := doJSON(t, app, `{"image":"AAAB"}`)

	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, true, body["hasPerson"])
}

func TestClassifyImage_DeadlineErrorIsTimeout(t *testing.T) {
	app := newSlowApp(&slowService{err: fmt.Errorf("waiting for classifier: %w", context.DeadlineExceeded)})

	status, body := doJSON(t, app, `{"image":"AAAB"}`)

	assert.Equal(t, fiber.StatusRequestTimeout, status)
	assert.Equal(t, "REQUEST_TIMEOUT", body["code"])
}

func TestClassifyMessage(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	u := utils.New()
	svc := detectionService.NewDetectionService(logger, &stubClassifier{result: classification(presence.LabelNoPerson, 0.02, 0.98)}, nil, u)
	h := New(logger, validator.New(), middleware.New(logger, 10, 10), svc, u, time.Second)

	reply := h.classifyMessage("ws-1", []byte(`{"image":"AAAB"}`))
	outcome, ok := reply.(*entity.DetectionOutcome)
	require.True(t, ok)
	assert.True(t, outcome.HasPerson)

	reply = h.classifyMessage("ws-1", []byte(`not json`))
	raw, err := jsoniter.Marshal(reply)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "DECODE_ERROR")
}
