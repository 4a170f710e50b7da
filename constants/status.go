package constants

// CandidateStatus tracks a datasheet through extraction and review.
type CandidateStatus string

const (
	StatusUploaded      CandidateStatus = "UPLOADED"
	StatusPendingReview CandidateStatus = "PENDING_REVIEW"
	StatusApproved      CandidateStatus = "APPROVED"
	StatusRejected      CandidateStatus = "REJECTED"
	StatusDecodeFailed  CandidateStatus = "DECODE_FAILED"
)

// ReviewDecision is the reviewer's verdict on a candidate record.
type ReviewDecision string

const (
	DecisionApproved ReviewDecision = "approved"
	DecisionRejected ReviewDecision = "rejected"
)
