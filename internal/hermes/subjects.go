package hermes

const (
	SubjectRankRequest = "ranker.rank.request"
	SubjectRunsPruned  = "ranker.runs.pruned"
	SubjectRankerStats = "ranker.stats"

	StreamName   = "RANKER_EVENTS"
	StreamMaxAge = "720h" // 30 days
)

func SubjectRunCompleted(runID string) string { return "ranker.run." + runID + ".completed" }
func SubjectRunFailed(runID string) string    { return "ranker.run." + runID + ".failed" }
