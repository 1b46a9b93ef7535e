package services

import (
	"fmt"

	"github.com/projectsmartedu/SmartEducation/application/ports/inbound"
	"github.com/projectsmartedu/SmartEducation/config"
	"github.com/projectsmartedu/SmartEducation/domain"
)

// prefixStoryboardStrategy is the placeholder policy: a fixed introduction
// followed by one body segment holding a bounded prefix of the text.
type prefixStoryboardStrategy struct {
	charBudget  int
	introFormat string
	bodyTitle   string
}

func NewPrefixStoryboardStrategy(pipelineConfig *config.PipelineConfig) inbound.StoryboardStrategy {
	return &prefixStoryboardStrategy{
		charBudget:  pipelineConfig.CharBudget,
		introFormat: pipelineConfig.IntroFormat,
		bodyTitle:   pipelineConfig.BodyTitle,
	}
}

func (s *prefixStoryboardStrategy) Build(text string, concept string) domain.Storyboard {
	intro := domain.Segment{
		Title:     concept,
		Narration: fmt.Sprintf(s.introFormat, concept),
	}
	body := domain.Segment{
		Title:     s.bodyTitle,
		Narration: truncateRunes(text, s.charBudget),
	}

	// Never empty, so the error is unreachable.
	storyboard, _ := domain.NewStoryboard(intro, body)
	return storyboard
}

func truncateRunes(text string, limit int) string {
	if limit <= 0 {
		return ""
	}
	count := 0
	for i := range text {
		if count == limit {
			return text[:i]
		}
		count++
	}
	return text
}
