// Package judge is the HTTP client for the remote judge API.
//
// The judge API is an external collaborator that owns contests, problems,
// the leaderboard and submission grading. This package only speaks its wire
// format:
//
//	GET  /api/contests/{contestId}
//	GET  /api/contests/{contestId}/problems
//	GET  /api/contests/{contestId}/leaderboard
//	POST /api/submissions
//	GET  /api/submissions/{submissionId}
//
// Non-2xx responses are returned as [*APIError] carrying the response body
// as the message.
package judge
