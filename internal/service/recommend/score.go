package recommend

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/oggyb/groupmatch/internal/db"
)

const (
	baseScore = 50
	maxJitter = 10

	ageMax       = 25
	ageUnknown   = 12
	bioMinLength = 20
	nickMinLen   = 2
	profilePoint = 5
)

// ageSteps maps an absolute age gap to points; the first step whose gap
// bound is >= the actual gap wins.
var ageSteps = []struct {
	maxGap int
	points int
}{
	{2, ageMax},
	{5, 20},
	{8, 15},
	{12, 10},
	{16, 5},
}

// AgeScore is symmetric in its arguments and never increases with the gap.
func AgeScore(requesterAge *int, candidateAge *int) int {
	if requesterAge == nil || candidateAge == nil {
		return ageUnknown
	}
	gap := *requesterAge - *candidateAge
	if gap < 0 {
		gap = -gap
	}
	for _, step := range ageSteps {
		if gap <= step.maxGap {
			return step.points
		}
	}
	return 0
}

// RecencyScore rewards recently active users.
func RecencyScore(lastActive, now time.Time) int {
	since := now.Sub(lastActive)
	switch {
	case since < time.Hour:
		return 20
	case since < 6*time.Hour:
		return 15
	case since < 24*time.Hour:
		return 10
	case since < 72*time.Hour:
		return 5
	}
	return 0
}

// CompletenessScore gives 5 points each for an image, a bio over 20
// characters and a nickname over 2 characters.
func CompletenessScore(u *db.User) int {
	score := 0
	if u.ProfileImage != nil && strings.TrimSpace(*u.ProfileImage) != "" {
		score += profilePoint
	}
	if u.Bio != nil && utf8.RuneCountInString(*u.Bio) > bioMinLength {
		score += profilePoint
	}
	if utf8.RuneCountInString(u.Nickname) > nickMinLen {
		score += profilePoint
	}
	return score
}

// Score combines every term with jitter and clamps to [0, 100].
func Score(requester, candidate *db.User, now time.Time, jitter int) int {
	score := baseScore +
		AgeScore(requester.Age, candidate.Age) +
		RecencyScore(candidate.LastActive, now) +
		CompletenessScore(candidate) +
		jitter
	return clamp(score, 0, 100)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// MaskNickname keeps the first character and hides the rest. At least one
// asterisk is always shown so a one-letter nickname is not disclosed.
func MaskNickname(nickname string) string {
	r, size := utf8.DecodeRuneInString(nickname)
	if size == 0 {
		return ""
	}
	hidden := utf8.RuneCountInString(nickname) - 1
	if hidden < 1 {
		hidden = 1
	}
	return string(r) + strings.Repeat("*", hidden)
}
