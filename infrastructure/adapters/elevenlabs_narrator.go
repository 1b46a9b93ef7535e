package adapters

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/projectsmartedu/SmartEducation/application/ports/outbound"
	"github.com/projectsmartedu/SmartEducation/config"
	"github.com/projectsmartedu/SmartEducation/domain"
)

type ElevenLabsRequest struct {
	Text          string        `json:"text"`
	ModelId       string        `json:"model_id"`
	VoiceSettings VoiceSettings `json:"voice_settings"`
}

type VoiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
}

type elevenLabsNarrator struct {
	ContentFetcher
	logger           outbound.LoggerPort
	store            outbound.ArtifactStorePort
	elevenLabsConfig *config.ElevenLabsConfig
}

func NewElevenLabsNarrator(contentFetcher ContentFetcher, store outbound.ArtifactStorePort,
	elevenLabsConfig *config.ElevenLabsConfig, logger outbound.LoggerPort) outbound.NarrationSynthesizerPort {
	return &elevenLabsNarrator{
		ContentFetcher:   contentFetcher,
		logger:           logger,
		store:            store,
		elevenLabsConfig: elevenLabsConfig,
	}
}

// Synthesize sends the whole narration as one request; the audio track has no
// per-segment timing.
func (n *elevenLabsNarrator) Synthesize(ctx context.Context, job domain.Job, narration string) (domain.Artifact, error) {
	if strings.TrimSpace(narration) == "" {
		return domain.Artifact{}, domain.NewEngineError(domain.ErrSynthesisFailed, "narration text is empty", nil)
	}

	req, err := n.getRequest(ctx, narration)
	if err != nil {
		n.logger.ErrorWithFields(err, "Failed to construct the HTTP request for speech synthesis", map[string]interface{}{
			"job_id": job.ID,
		})
		return domain.Artifact{}, domain.NewEngineError(domain.ErrSynthesisFailed, "cannot build synthesis request", err)
	}

	body, err := n.FetchContent(req)
	if err != nil {
		return domain.Artifact{}, domain.NewEngineError(domain.ErrSynthesisFailed, synthesisDiagnostic(err), err)
	}
	defer closeBody(n.logger, body)

	audio, err := n.store.Save(job.ID, domain.AudioArtifactKind, body)
	if err != nil {
		if errors.Is(err, domain.ErrStorageUnavailable) {
			return domain.Artifact{}, err
		}
		return domain.Artifact{}, domain.NewEngineError(domain.ErrSynthesisFailed, "audio stream interrupted", err)
	}

	n.logger.DebugWithFields("Narration synthesized", map[string]interface{}{
		"job_id": job.ID,
		"path":   audio.Path,
		"chars":  len(narration),
	})
	return audio, nil
}

func (n *elevenLabsNarrator) getRequest(ctx context.Context, text string) (*http.Request, error) {
	reqBody := ElevenLabsRequest{
		Text:    text,
		ModelId: n.elevenLabsConfig.ModelId,
		VoiceSettings: VoiceSettings{
			Stability:       n.elevenLabsConfig.Stability,
			SimilarityBoost: n.elevenLabsConfig.SimilarityBoost,
		},
	}

	jsonPayload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, err
	}

	url := strings.TrimRight(n.elevenLabsConfig.ApiUrl, "/") + "/" + n.elevenLabsConfig.VoiceId
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonPayload))
	if err != nil {
		return nil, err
	}

	reqHeaders := map[string]string{
		"Accept":       "audio/mpeg",
		"xi-api-key":   n.elevenLabsConfig.ApiKey,
		"Content-Type": "application/json",
	}
	for key, value := range reqHeaders {
		req.Header.Add(key, value)
	}

	return req, nil
}

func synthesisDiagnostic(err error) string {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return fmt.Sprintf("speech engine responded with status %d", statusErr.StatusCode)
	}
	return "speech engine unavailable"
}
