package repository

import (
	"math"

	"github.com/teamsizer/sizeup/internal/task"
)

// Accuracy shown before any feedback has been collected.
const defaultPredictionAccuracy = 82

// ComputeStats derives dashboard statistics from the finalized task set.
// Both store implementations fetch their finalized tasks and delegate here
// so the math stays identical.
func ComputeStats(finalized []*task.Task) *Stats {
	totalTasks := len(finalized)

	totalPoints := 0
	for _, t := range finalized {
		totalPoints += t.Points
	}

	averagePoints := 0.0
	if totalTasks > 0 {
		averagePoints = math.Round(float64(totalPoints)/float64(totalTasks)*10) / 10
	}

	distribution := make(map[string]int, len(task.Sizes))
	for _, s := range task.Sizes {
		distribution[string(s)] = 0
	}
	for _, t := range finalized {
		distribution[string(t.Size)]++
	}
	if totalTasks > 0 {
		for k, count := range distribution {
			distribution[k] = int(math.Round(float64(count) / float64(totalTasks) * 100))
		}
	}

	// Accuracy counts a prediction as correct when the finalized size matches
	// the vote consensus, over tasks that received feedback.
	correct := 0
	withFeedback := 0
	for _, t := range finalized {
		if t.Feedback == nil {
			continue
		}
		withFeedback++
		if t.Size == t.AverageSize {
			correct++
		}
	}

	accuracy := defaultPredictionAccuracy
	if withFeedback > 0 {
		accuracy = int(math.Round(float64(correct) / float64(withFeedback) * 100))
	}

	return &Stats{
		TotalTasks:         totalTasks,
		AveragePoints:      averagePoints,
		SizeDistribution:   distribution,
		PredictionAccuracy: accuracy,
	}
}
