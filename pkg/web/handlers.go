package web

import (
	"context"
	"encoding/base64"
	"errors"
	"io"
	"mime/multipart"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/careerbuddy/go-careerbuddy/pkg/pitch"
	"github.com/careerbuddy/go-careerbuddy/pkg/quota"
	"github.com/careerbuddy/go-careerbuddy/pkg/voice"
)

const (
	synthesisTimeout = 60 * time.Second
	analysisTimeout  = 120 * time.Second
)

// handleHealth reports liveness.
func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// GeneratePitchesRequest is the request body for /generate-pitches.
type GeneratePitchesRequest struct {
	Resume         string `json:"resume"`
	JobDescription string `json:"jobDescription"`
	Provider       string `json:"provider"`
	UserID         string `json:"userId"`
	Model          string `json:"model,omitempty"`

	// APIKey marks the caller as bringing their own provider
	// credential, which bypasses the trial quota.
	APIKey string `json:"apiKey,omitempty"`
}

// handleGeneratePitches runs the authorize → generate → commit flow.
// A trial is only spent when the generation produced at least one
// pitch.
func (s *Server) handleGeneratePitches(c *fiber.Ctx) error {
	var req GeneratePitchesRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if req.Resume == "" || req.JobDescription == "" {
		return badRequest(c, "resume and jobDescription are required")
	}
	if req.Provider == "" {
		req.Provider = pitch.ProviderOpenAI
	}
	if req.UserID == "" {
		return badRequest(c, "userId is required")
	}

	lease, err := s.opts.Quota.Authorize(req.UserID, req.Provider, req.APIKey != "")
	if err != nil {
		return s.errorResponse(c, err)
	}

	pitches, err := s.opts.Generator.GeneratePitches(
		c.UserContext(), req.Provider, req.Resume, req.JobDescription, req.Model,
	)
	if err != nil || len(pitches) == 0 {
		lease.Cancel()
		if err == nil {
			err = errors.New("generation produced no pitches")
		}
		return s.errorResponse(c, err)
	}
	lease.Commit()

	return c.JSON(fiber.Map{
		"pitches":         pitches,
		"trialsRemaining": lease.Remaining(),
	})
}

// GenerateAudioRequest is the request body for /generate-audio.
type GenerateAudioRequest struct {
	PitchText string `json:"pitchText"`
}

// handleGenerateAudio synthesizes one pitch into spoken audio.
func (s *Server) handleGenerateAudio(c *fiber.Ctx) error {
	var req GenerateAudioRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if req.PitchText == "" {
		return badRequest(c, "pitchText is required")
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), synthesisTimeout)
	defer cancel()

	result, err := s.opts.Speech.Synthesize(ctx, req.PitchText)
	if err != nil {
		return s.errorResponse(c, err)
	}
	if !result.HasAudio() {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error":      "no audio data received",
			"transcript": result.Transcript,
		})
	}

	return c.JSON(fiber.Map{
		"audioData":  base64.StdEncoding.EncodeToString(result.Audio),
		"transcript": result.Transcript,
	})
}

// handleAnalyzePractice scores an uploaded practice recording.
func (s *Server) handleAnalyzePractice(c *fiber.Ctx) error {
	audio, err := formFileBytes(c, "audio")
	if err != nil {
		return badRequest(c, "audio upload is required")
	}
	video, _ := formFileBytes(c, "video")

	ctx, cancel := context.WithTimeout(c.UserContext(), analysisTimeout)
	defer cancel()

	result, err := s.opts.Analyzer.AnalyzePractice(ctx, audio, video)
	if err != nil {
		return s.errorResponse(c, err)
	}

	userID := c.FormValue("userId")
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.opts.Notifier.PracticeAnalyzed(ctx, userID, result); err != nil {
			s.logger.Warn("practice notification failed", "user", userID, "error", err)
		}
	}()

	return c.JSON(fiber.Map{
		"audioAnalysis": result.Audio,
		"videoAnalysis": result.Video,
	})
}

// GenerateFeedbackRequest is the request body for /generate-feedback.
type GenerateFeedbackRequest struct {
	AnalysisSummary string `json:"analysisSummary"`
	Provider        string `json:"provider"`
}

// handleGenerateFeedback turns an analysis summary into coaching text.
func (s *Server) handleGenerateFeedback(c *fiber.Ctx) error {
	var req GenerateFeedbackRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if req.AnalysisSummary == "" {
		return badRequest(c, "analysisSummary is required")
	}
	if req.Provider == "" {
		req.Provider = pitch.ProviderOpenAI
	}

	text, err := s.opts.Generator.Feedback(c.UserContext(), req.Provider, req.AnalysisSummary)
	if err != nil {
		return s.errorResponse(c, err)
	}

	return c.JSON(fiber.Map{"feedbackText": text})
}

// handleExtractText runs the uploaded document through the extractor.
func (s *Server) handleExtractText(c *fiber.Ctx) error {
	if s.opts.Extractor == nil {
		return c.Status(fiber.StatusNotImplemented).JSON(fiber.Map{
			"error": "text extraction is not configured",
		})
	}

	data, err := formFileBytes(c, "file")
	if err != nil {
		return badRequest(c, "file upload is required")
	}

	text, err := s.opts.Extractor.Extract(data)
	if err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error": "could not extract text from document",
		})
	}

	return c.JSON(fiber.Map{"text": text})
}

// errorResponse maps domain errors onto HTTP statuses.
func (s *Server) errorResponse(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError

	switch {
	case errors.Is(err, quota.ErrTrialsExhausted):
		status = fiber.StatusForbidden
	case errors.Is(err, pitch.ErrUnknownProvider):
		status = fiber.StatusBadRequest
	case pitch.IsAuth(err):
		status = fiber.StatusUnauthorized
	case pitch.IsTransport(err), pitch.IsParse(err):
		status = fiber.StatusBadGateway
	case errors.Is(err, voice.ErrNoAudio), errors.Is(err, voice.ErrConnectFailed):
		status = fiber.StatusBadGateway
	case errors.Is(err, voice.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		status = fiber.StatusGatewayTimeout
	}

	if status == fiber.StatusInternalServerError {
		s.logger.Error("unhandled request error", "path", c.Path(), "error", err)
	}

	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
}

// formFileBytes reads one uploaded file fully into memory.
func formFileBytes(c *fiber.Ctx, field string) ([]byte, error) {
	header, err := c.FormFile(field)
	if err != nil {
		return nil, err
	}
	return readMultipartFile(header)
}

func readMultipartFile(header *multipart.FileHeader) ([]byte, error) {
	f, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}
