// Package scheduler decides what a learner studies and when. It builds
// ranked study queues by mixing three candidate populations (overdue,
// rolling reinforcement, new), throttling new material under backlog,
// and scoring each candidate by urgency and estimated retention. It
// also processes review submissions: one atomic transaction per card
// covering the interval update, leech handling, the review event, and
// the state write.
package scheduler
