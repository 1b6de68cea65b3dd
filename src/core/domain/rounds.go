package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// The tournament runs a fixed sequence of seven rounds. Round 5 is the
// one-time elimination cutover; round 2 scores paired teams against a chosen
// potion recipe.
const (
	TotalRounds       = 7
	EliminationRound  = 5
	EliminationTarget = 16
	PotionRound       = 2
)

// RoundKind declares which result-entry variant a round records.
type RoundKind string

const (
	// KindSingle scores one team per entry: {team, points, time, rank}.
	KindSingle RoundKind = "single"

	// KindPaired scores a team pair per entry: {teams[2], potion, points, time}.
	KindPaired RoundKind = "paired"
)

// KindOf returns the result variant used by the given round number. The shape
// is fixed per round; recorders validate against it rather than inferring.
func KindOf(roundNumber int) RoundKind {
	if roundNumber == PotionRound {
		return KindPaired
	}
	return KindSingle
}

// RoundID formats the canonical round identifier ("round-3").
func RoundID(roundNumber int) string {
	return fmt.Sprintf("round-%d", roundNumber)
}

// ParseRoundID extracts the round number from an identifier like "round-3".
// A bare number ("3") is also accepted.
func ParseRoundID(roundID string) (int, error) {
	s := strings.TrimPrefix(roundID, "round-")
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > TotalRounds {
		return 0, NewValidationError("round", fmt.Sprintf("unknown round %q", roundID))
	}
	return n, nil
}
