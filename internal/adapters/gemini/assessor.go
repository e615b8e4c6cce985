package gemini

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/mikey/lead-vetting/internal/core"
	"github.com/mikey/lead-vetting/internal/utils"
)

// Source identifies assessments produced by this adapter
const Source = "gemini"

// contentGenerator is the part of genai.GenerativeModel the assessor calls
type contentGenerator interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

// Assessor is an implementation of the EmailAssessor interface using Google Gemini
type Assessor struct {
	client        *genai.Client
	model         contentGenerator
	modelName     string
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
}

// NewAssessor creates a new Gemini assessor
func NewAssessor(
	apiKey string,
	modelName string,
	maxTokens int,
	temperature float32,
	topP float32,
	logger *zap.Logger,
	textProcessor *utils.TextProcessor,
) (*Assessor, error) {
	client, err := genai.NewClient(context.Background(), option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	model.SetTemperature(temperature)
	model.SetTopP(topP)
	model.SetMaxOutputTokens(int32(maxTokens))
	model.ResponseMIMEType = "application/json"
	model.SystemInstruction = genai.NewUserContent(genai.Text(utils.AssessmentSystemPrompt))

	return &Assessor{
		client:        client,
		model:         model,
		modelName:     modelName,
		logger:        logger,
		textProcessor: textProcessor,
	}, nil
}

// Close closes the Gemini client
func (a *Assessor) Close() error {
	if a.client != nil {
		return a.client.Close()
	}
	return nil
}

// Assess classifies the domain of an email address
func (a *Assessor) Assess(ctx context.Context, email string) (*core.EmailAssessment, error) {
	resp, err := a.model.GenerateContent(ctx, genai.Text(a.textProcessor.AssessmentPrompt(email)))
	if err != nil {
		return nil, fmt.Errorf("failed to generate content with Gemini: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, errors.New("empty response from Gemini")
	}

	responseText := fmt.Sprintf("%v", resp.Candidates[0].Content.Parts[0])
	a.logger.Debug("Gemini assessment received", zap.String("model", a.modelName))

	return utils.ParseAssessment(responseText, Source)
}
