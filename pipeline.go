package atrium

import (
	"errors"
	"sync"
)

// task fans fn out over data in contiguous chunks, one goroutine per worker.
// The first error of each worker stops that worker; all collected errors are
// joined.
func task[T any](workersCount int, data []T, fn func(data T) error) error {
	var wg sync.WaitGroup
	dataSize := len(data)
	chunkSize := (dataSize + workersCount - 1) / workersCount
	errs := make([]error, workersCount)

	for workerID := 0; workerID < workersCount; workerID++ {
		wg.Add(1)
		go func(workerID, start, end int) {
			defer wg.Done()
			for i := start; i < end; i++ {
				if err := fn(data[i]); err != nil {
					errs[workerID] = err
					return
				}
			}
		}(workerID, workerID*chunkSize, min((workerID+1)*chunkSize, dataSize))
	}
	wg.Wait()

	return errors.Join(errs...)
}
