package conversation

// stageTransition is one forward edge of the stage machine.
type stageTransition struct {
	from        Stage
	to          Stage
	minMessages int
	ready       func(Objectives) bool
}

var stageTransitions = []stageTransition{
	{
		from:        StageInformationGathering,
		to:          StageRecommendations,
		minMessages: 3,
		ready:       func(o Objectives) bool { return o.InfoGathered },
	},
	{
		from:        StageRecommendations,
		to:          StageUpselling,
		minMessages: 5,
		ready:       func(o Objectives) bool { return o.RecommendationsMade },
	},
	{
		from:        StageUpselling,
		to:          StageClosing,
		minMessages: 7,
		ready:       func(Objectives) bool { return true },
	},
}

// AdvanceStage moves c at most one stage forward when the guard for its
// current stage holds. Closing has no outgoing edge.
func AdvanceStage(c Context) Context {
	out := c.clone()
	if out.Customer.Destination != "" && out.Customer.Travelers > 0 {
		out.Objectives.InfoGathered = true
	}
	if out.Stage == "" {
		out.Stage = StageInformationGathering
	}
	for _, t := range stageTransitions {
		if t.from != out.Stage {
			continue
		}
		if out.MessageCount >= t.minMessages && t.ready(out.Objectives) {
			out.Stage = t.to
		}
		break
	}
	return out
}
