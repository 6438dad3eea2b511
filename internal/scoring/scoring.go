// Package scoring turns per-criterion answer scores into weighted question,
// round and overall scores.
package scoring

import (
	"errors"
	"fmt"
	"math"
)

// Score bounds for every criterion.
const (
	MinScore = 0.0
	MaxScore = 10.0
)

// Round identifiers understood by Aggregate.
const (
	RoundTechnical = "technical"
	RoundHR        = "hr"
)

// ErrCriteriaOutOfRange is returned when a criterion is outside [MinScore, MaxScore] or not a number.
var ErrCriteriaOutOfRange = errors.New("criteria score out of range")

// Criteria holds the five per-answer scores.
type Criteria struct {
	Accuracy      float64 `json:"accuracy"`
	Relevance     float64 `json:"relevance"`
	Communication float64 `json:"communication"`
	Clarity       float64 `json:"clarity"`
	Confidence    float64 `json:"confidence"`
}

// Weights applied to each criterion. They sum to 1.
var Weights = Criteria{
	Accuracy:      0.30,
	Relevance:     0.25,
	Communication: 0.20,
	Clarity:       0.15,
	Confidence:    0.10,
}

type namedScore struct {
	name  string
	value float64
}

func (c Criteria) named() []namedScore {
	return []namedScore{
		{"accuracy", c.Accuracy},
		{"relevance", c.Relevance},
		{"communication", c.Communication},
		{"clarity", c.Clarity},
		{"confidence", c.Confidence},
	}
}

// Validate checks every criterion is a finite number within bounds.
func (c Criteria) Validate() error {
	for _, score := range c.named() {
		if math.IsNaN(score.value) || score.value < MinScore || score.value > MaxScore {
			return fmt.Errorf("%w: %s=%v", ErrCriteriaOutOfRange, score.name, score.value)
		}
	}
	return nil
}

// WeightedScore combines the criteria with Weights and rounds to two decimals.
func WeightedScore(c Criteria) (float64, error) {
	if err := c.Validate(); err != nil {
		return 0, err
	}

	values := c.named()
	weights := Weights.named()
	total := 0.0
	for i := range values {
		total += values[i].value * weights[i].value
	}

	return Round2(total), nil
}

// roundNudge absorbs binary representation error so decimal halves such as
// 1.005 (stored as 1.00499999...) still round away from zero.
const roundNudge = 1e-9

// Round2 rounds half away from zero to two decimals, treating inputs that are
// within roundNudge/100 of a decimal half as that half.
func Round2(v float64) float64 {
	if v == 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	return math.Round(v*100+math.Copysign(roundNudge, v)) / 100
}

// RoundScore is one question's weighted score tagged with its round.
type RoundScore struct {
	Round string
	Score float64
}

// Summary is the aggregated result of an interview.
type Summary struct {
	Technical float64 `json:"technical_score"`
	HR        float64 `json:"hr_score"`
	Overall   float64 `json:"overall_score"`
}

// Aggregate computes the per-round means and the overall mean of both rounds.
// An empty round scores 0. The overall score is derived from the unrounded
// round means. Scores tagged with an unknown round are ignored.
func Aggregate(scores []RoundScore) Summary {
	var technicalSum, hrSum float64
	var technicalCount, hrCount int

	for _, score := range scores {
		switch score.Round {
		case RoundTechnical:
			technicalSum += score.Score
			technicalCount++
		case RoundHR:
			hrSum += score.Score
			hrCount++
		}
	}

	technical := mean(technicalSum, technicalCount)
	hr := mean(hrSum, hrCount)

	return Summary{
		Technical: Round2(technical),
		HR:        Round2(hr),
		Overall:   Round2((technical + hr) / 2),
	}
}

func mean(sum float64, count int) float64 {
	if count == 0 {
		return 0
	}
	return sum / float64(count)
}
