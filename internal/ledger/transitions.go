package ledger

// stageMoves lists, per current stage, the stages staff may move an
// appointment to. Reopening a closed appointment goes through pending.
var stageMoves = map[string][]string{
	StagePending:        {StageConfirmed, StageInConsultation, StageDone, StageCancelled},
	StageConfirmed:      {StagePending, StageInConsultation, StageDone, StageCancelled},
	StageInConsultation: {StagePending, StageConfirmed, StageDone, StageCancelled},
	StageDone:           {StagePending},
	StageCancelled:      {StagePending},
}

// AllowedStageMove reports whether staff may move an appointment between the
// two stages. Same-stage writes are allowed and act as touch updates.
func AllowedStageMove(from, to string) bool {
	if from == to {
		return ValidStage(to)
	}
	for _, s := range stageMoves[from] {
		if s == to {
			return true
		}
	}
	return false
}
