package service

// XP event types. The per-event amounts live in xpAmounts; carrier events
// (badge/task rewards) resolve their amount from the catalog row instead.
const (
	EventQuestionCreated     = "question_created"
	EventAnswerCreated       = "answer_created"
	EventAnswerAccepted      = "answer_accepted"
	EventAnswerVerified      = "answer_verified"
	EventCommentCreated      = "comment_created"
	EventDailyLogin          = "daily_login"
	EventProfileCompleted    = "profile_completed"
	EventStreakMilestone     = "streak_milestone"
	EventBadgeUnlocked       = "badge_unlocked"
	EventDailyTaskCompleted  = "daily_task_completed"
	EventWeeklyTaskCompleted = "weekly_task_completed"
)

var xpAmounts = map[string]int{
	EventQuestionCreated:  10,
	EventAnswerCreated:    15,
	EventAnswerAccepted:   20,
	EventAnswerVerified:   25,
	EventCommentCreated:   3,
	EventDailyLogin:       5,
	EventProfileCompleted: 10,
	EventStreakMilestone:  30,
}

// taskTitleByEvent maps an XP event to the task title it auto-completes.
var taskTitleByEvent = map[string]string{
	EventQuestionCreated: "Ask 1 Question",
	EventAnswerCreated:   "Answer 1 Question",
	EventAnswerVerified:  "Get an Answer Verified",
	EventCommentCreated:  "Leave 3 Comments",
}

// Milestone thresholds. Both lists are ascending; a milestone fires only on
// a strict crossing: previous < threshold <= new.
var (
	xpMilestones     = []int{100, 500, 1000, 2500, 5000, 10000, 25000, 50000}
	streakMilestones = []int{3, 7, 14, 30, 60, 100, 365}
)

// crossedThresholds returns every threshold crossed moving from prev to next.
func crossedThresholds(prev, next int, thresholds []int) []int {
	var crossed []int
	for _, t := range thresholds {
		if prev < t && t <= next {
			crossed = append(crossed, t)
		}
	}
	return crossed
}
