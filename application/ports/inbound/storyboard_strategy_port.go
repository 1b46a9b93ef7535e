package inbound

import "github.com/projectsmartedu/SmartEducation/domain"

// StoryboardStrategy derives narration segments from extracted text. It must be
// pure and must not fail; the pipeline treats an empty result as invalid.
type StoryboardStrategy interface {
	Build(text string, concept string) domain.Storyboard
}
