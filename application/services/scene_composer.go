package services

import "github.com/projectsmartedu/SmartEducation/domain"

// ComposeScene turns a storyboard into the render engine's scene description.
// The scene is titled after the first segment and carries one beat per segment
// in storyboard order.
func ComposeScene(storyboard domain.Storyboard) domain.SceneSpec {
	segments := storyboard.Segments()
	scene := domain.SceneSpec{
		Beats: make([]domain.SceneBeat, 0, len(segments)),
	}
	if len(segments) > 0 {
		scene.Title = segments[0].Title
	}
	for _, segment := range segments {
		scene.Beats = append(scene.Beats, domain.SceneBeat{
			Heading: segment.Title,
			Caption: segment.Narration,
		})
	}
	return scene
}
