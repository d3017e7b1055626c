package types

// Motion Status values
const (
	StatusProposed        = "PROPOSED"
	StatusSeconded        = "SECONDED"
	StatusVetoed          = "VETOED"
	StatusDebate          = "DEBATE"
	StatusVoting          = "VOTING"
	StatusChallengingVeto = "CHALLENGING_VETO"
	StatusPassed          = "PASSED"
	StatusRejected        = "REJECTED"
	StatusVetoConfirmed   = "VETO_CONFIRMED"
)

// Committee Member Roles
const (
	RoleOwner  = "OWNER"
	RoleChair  = "CHAIR"
	RoleMember = "MEMBER"
)

// Vote and debate positions. Neutral is only valid for debate entries.
const (
	PositionSupport = "SUPPORT"
	PositionOppose  = "OPPOSE"
	PositionNeutral = "NEUTRAL"
)

// Committee voting threshold policies
const (
	ThresholdMajority      = "MAJORITY"
	ThresholdSupermajority = "SUPERMAJORITY"
)

// Chair decision actions
const (
	ActionApprove = "APPROVE"
	ActionVeto    = "VETO"
)

// Valid values for validation
var ValidMotionStatuses = []string{
	StatusProposed, StatusSeconded, StatusVetoed, StatusDebate, StatusVoting,
	StatusChallengingVeto, StatusPassed, StatusRejected, StatusVetoConfirmed,
}

var ValidRoles = []string{RoleOwner, RoleChair, RoleMember}

var ValidVotePositions = []string{PositionSupport, PositionOppose}

var ValidDebatePositions = []string{PositionSupport, PositionOppose, PositionNeutral}

var ValidThresholds = []string{ThresholdMajority, ThresholdSupermajority}

// OpenVotingStatuses are the statuses in which votes are accepted.
var OpenVotingStatuses = []string{StatusVoting, StatusChallengingVeto}

// DebateStatus is the only status in which debate entries are accepted.
const DebateStatus = StatusDebate

// transitions is the authoritative motion lifecycle. There are no self-loops.
var transitions = map[string][]string{
	StatusProposed:        {StatusSeconded},
	StatusSeconded:        {StatusVetoed, StatusDebate},
	StatusDebate:          {StatusVoting},
	StatusVoting:          {StatusPassed, StatusRejected},
	StatusVetoed:          {StatusChallengingVeto},
	StatusChallengingVeto: {StatusPassed, StatusVetoConfirmed},
}

// CanTransition reports whether a motion may move from one status to another.
func CanTransition(from, to string) bool {
	return Contains(transitions[from], to)
}

// NextStatuses returns the statuses reachable from the given one.
func NextStatuses(from string) []string {
	next := transitions[from]
	out := make([]string, len(next))
	copy(out, next)
	return out
}

// IsTerminal reports whether no transition leaves the status.
func IsTerminal(status string) bool {
	return len(transitions[status]) == 0
}

func IsValidMotionStatus(s string) bool { return Contains(ValidMotionStatuses, s) }
func IsValidRole(s string) bool         { return Contains(ValidRoles, s) }
func IsValidVotePosition(s string) bool { return Contains(ValidVotePositions, s) }
func IsValidDebatePosition(s string) bool {
	return Contains(ValidDebatePositions, s)
}
func IsValidThreshold(s string) bool { return Contains(ValidThresholds, s) }

// IsVotingOpen reports whether votes are accepted in the status.
func IsVotingOpen(status string) bool { return Contains(OpenVotingStatuses, status) }

// Contains reports whether s is one of values.
func Contains(values []string, s string) bool {
	for _, v := range values {
		if v == s {
			return true
		}
	}
	return false
}
