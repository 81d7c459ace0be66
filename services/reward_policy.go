package services

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"eduplatform/config"
	"eduplatform/models"
)

// RewardPolicy is the pure decision logic mapping user actions to token
// and rating grants or charges. It holds no database handle; callers
// apply its decisions through the ledger.
type RewardPolicy struct {
	economy config.Economy
	now     func() time.Time
}

func NewRewardPolicy(economy config.Economy) *RewardPolicy {
	return &RewardPolicy{economy: economy, now: time.Now}
}

// DailyDecision is the outcome of a daily-reward eligibility check.
// Boundary is the instant used as the guard in the claim UPDATE: a claim
// only succeeds while last_daily_reward is unset or before Boundary.
type DailyDecision struct {
	Eligible      bool
	Tokens        int
	Boundary      time.Time
	NextAvailable time.Time
	Reason        string
}

// DailyReward decides whether a user may claim the daily reward now.
// Administrators are never eligible.
func (p *RewardPolicy) DailyReward(user *models.User) DailyDecision {
	if !models.Can(user.Role, models.ActionClaimDaily) {
		return DailyDecision{Reason: "administrators cannot claim daily rewards"}
	}

	if p.economy.DailyRewardMode == "cutoff" {
		return p.dailyAtCutoff(user)
	}
	return p.dailyByInterval(user)
}

// dailyByInterval grants once per rolling 24 hours.
func (p *RewardPolicy) dailyByInterval(user *models.User) DailyDecision {
	now := p.now().UTC()
	boundary := now.Add(-24 * time.Hour)

	if user.LastDailyReward != nil && user.LastDailyReward.After(boundary) {
		return DailyDecision{
			Boundary:      boundary,
			NextAvailable: user.LastDailyReward.Add(24 * time.Hour),
			Reason:        "daily reward already claimed",
		}
	}

	return DailyDecision{
		Eligible: true,
		Tokens:   p.economy.DailyTokens,
		Boundary: boundary,
	}
}

// dailyAtCutoff grants at most once per calendar day, only after the
// configured local-time cutoff.
func (p *RewardPolicy) dailyAtCutoff(user *models.User) DailyDecision {
	loc, err := time.LoadLocation(p.economy.DailyRewardTZ)
	if err != nil {
		loc = time.UTC
	}
	now := p.now().In(loc)

	hour, minute := parseCutoff(p.economy.DailyRewardCutoff)
	cutoff := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, loc)

	if now.Before(cutoff) {
		return DailyDecision{
			Boundary:      cutoff.UTC(),
			NextAvailable: cutoff,
			Reason:        fmt.Sprintf("reward available at %s", p.economy.DailyRewardCutoff),
		}
	}

	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	if user.LastDailyReward != nil && !user.LastDailyReward.In(loc).Before(dayStart) {
		return DailyDecision{
			Boundary:      dayStart.UTC(),
			NextAvailable: cutoff.AddDate(0, 0, 1),
			Reason:        "daily reward already claimed today",
		}
	}

	return DailyDecision{
		Eligible: true,
		Tokens:   p.economy.DailyTokens,
		Boundary: dayStart.UTC(),
	}
}

func parseCutoff(s string) (hour, minute int) {
	parts := strings.SplitN(s, ":", 2)
	hour, _ = strconv.Atoi(parts[0])
	if len(parts) == 2 {
		minute, _ = strconv.Atoi(parts[1])
	}
	return hour, minute
}

// QuizReward returns the token and rating grant for a quiz submission.
// Only the first attempt earns anything.
func (p *RewardPolicy) QuizReward(correct, total int, firstAttempt bool) (tokens, rating int) {
	if !firstAttempt || correct < 0 {
		return 0, 0
	}
	tokens = correct * p.economy.CorrectAnswerReward
	rating = correct * p.economy.RatingPerCorrect
	if total > 0 && correct == total {
		rating += p.economy.PerfectQuizRatingBonus
	}
	return tokens, rating
}

// PerfectQuiz reports whether a score qualifies for the perfect-quiz
// achievement.
func (p *RewardPolicy) PerfectQuiz(correct, total int) bool {
	return total > 0 && correct == total
}

// LessonCharge returns what lesson creation costs a given user.
func (p *RewardPolicy) LessonCharge(user *models.User) int {
	if user.IsAdmin() && !p.economy.AdminPaysLessonCost {
		return 0
	}
	return p.economy.LessonCost
}

// ExpertChatCharge returns the per-message cost of expert chat.
func (p *RewardPolicy) ExpertChatCharge(user *models.User) int {
	if user.IsAdmin() {
		return 0
	}
	return p.economy.ExpertChatCost
}

// ThemeSplit divides a theme price between creator and platform. The
// platform share is the untracked remainder.
func (p *RewardPolicy) ThemeSplit(price int) (creatorShare int) {
	return int(float64(price) * p.economy.ThemeCreatorShare)
}

// ValidThemePrice checks the marketplace price bounds: free, or within
// [ThemeMinPrice, ThemeMaxPrice].
func (p *RewardPolicy) ValidThemePrice(price int) bool {
	if price == 0 {
		return true
	}
	return price >= p.economy.ThemeMinPrice && price <= p.economy.ThemeMaxPrice
}
