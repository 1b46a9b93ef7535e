package channel_utils

import (
	"sync"

	"github.com/projectsmartedu/SmartEducation/application/ports/outbound"
)

// FanIn runs every task on the worker pool and delivers the results in
// completion order. The channel is buffered for all results and closed once
// every submitted task has returned, so no task ever blocks on a slow reader.
// When a submission fails, FanIn waits for the tasks already submitted and
// returns their results on a closed channel together with the error.
func FanIn[T any](workerPool outbound.TaskDispatcher, tasks ...func() T) (<-chan T, error) {
	var wg sync.WaitGroup
	merged := make(chan T, len(tasks))

	for _, task := range tasks {
		run := task
		wg.Add(1)
		err := workerPool.Submit(func() {
			defer wg.Done()
			merged <- run()
		})
		if err != nil {
			wg.Done()
			wg.Wait()
			close(merged)
			return merged, err
		}
	}

	go func() {
		wg.Wait()
		close(merged)
	}()
	return merged, nil
}
