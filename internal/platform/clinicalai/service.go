package clinicalai

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"
)

const (
	ErrMsgMissingKey    = "Gemini API Key is missing. Please check your .env file."
	ErrMsgValidation    = "Failed to validate prescription. Please try again."
	ErrMsgMRI           = "Failed to analyze MRI. Please ensure the image is clear."
	errMsgBloodTemplate = "Analysis Failed: %s (see server logs for details)"
)

// Result is either Text or Error, never both.
type Result struct {
	Text  string `json:"text,omitempty"`
	Error string `json:"error,omitempty"`
}

// ValidationInput is the form state sent for a consistency check. Medicines
// is passed to the model as the client sent it.
type ValidationInput struct {
	PatientAge string          `json:"patientAge"`
	Medicines  json.RawMessage `json:"medicines"`
	Symptoms   string          `json:"symptoms"`
	Diagnosis  string          `json:"diagnosis"`
}

// Attachment is an uploaded report or scan.
type Attachment struct {
	Name     string
	MIMEType string
	Data     []byte
}

type Service struct {
	gen    Generator
	logger zerolog.Logger
}

// NewService accepts a nil Generator; every call then reports the missing
// API key.
func NewService(gen Generator, logger zerolog.Logger) *Service {
	return &Service{gen: gen, logger: logger}
}

// Configured reports whether a model is available.
func (s *Service) Configured() bool { return s.gen != nil }

func (s *Service) ValidatePrescription(ctx context.Context, in ValidationInput) Result {
	return s.run(ctx, "validate", []Part{TextPart(validationPrompt(in))}, fallbackValidation,
		func(error) string { return ErrMsgValidation })
}

func (s *Service) AnalyzeBloodReport(ctx context.Context, file Attachment) Result {
	parts := []Part{TextPart(bloodReportPrompt), {Data: file.Data, MIMEType: file.MIMEType}}
	return s.run(ctx, "blood_report", parts, fallbackBloodReport, func(err error) string {
		return sprintfOrUnknown(errMsgBloodTemplate, err)
	})
}

func (s *Service) AnalyzeMRI(ctx context.Context, file Attachment) Result {
	parts := []Part{TextPart(mriPrompt), {Data: file.Data, MIMEType: file.MIMEType}}
	return s.run(ctx, "mri", parts, fallbackMRI, func(error) string { return ErrMsgMRI })
}

func (s *Service) run(ctx context.Context, call string, parts []Part, fallback string, failMsg func(error) string) Result {
	if s.gen == nil {
		return Result{Error: ErrMsgMissingKey}
	}

	text, err := s.gen.Generate(ctx, parts)
	if err == nil {
		return Result{Text: text}
	}

	if IsQuotaError(err) {
		s.logger.Warn().Err(err).Str("call", call).Msg("model rate limited, serving canned response")
		return Result{Text: fallback}
	}
	s.logger.Error().Err(err).Str("call", call).Msg("model call failed")
	return Result{Error: failMsg(err)}
}

func sprintfOrUnknown(format string, err error) string {
	msg := "Unknown error"
	if err != nil && err.Error() != "" {
		msg = err.Error()
	}
	return fmt.Sprintf(format, msg)
}
