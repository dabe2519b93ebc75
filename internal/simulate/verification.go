package simulate

import (
	"fmt"

	"github.com/okian/rhythm/internal/domain/chronotype"
	"github.com/okian/rhythm/internal/domain/syncscore"
)

// Verify returns the expectations that res breaks for a user of profile p.
func Verify(p Profile, res syncscore.SyncResult) []string {
	var issues []string
	inRange := func(name string, v int) {
		if v < 0 || v > 100 {
			issues = append(issues, fmt.Sprintf("%s %d outside [0,100]", name, v))
		}
	}
	inRange("syncScore", res.SyncScore)
	inRange("schoolAlignment", res.SchoolAlignment)
	inRange("studyAlignment", res.StudyAlignment)
	inRange("socialJetlagPenalty", res.SocialJetlagPenalty)
	inRange("projectedScore", res.TrendAnalysis.ProjectedScore)

	if n := len(res.LearningTimeline); n != syncscore.TimelineSamples {
		issues = append(issues, fmt.Sprintf("timeline has %d samples", n))
	}
	if a := res.AdaptiveComponents.AdaptationLevel; a < 0 || a > 0.8 {
		issues = append(issues, fmt.Sprintf("adaptation level %.3f outside [0,0.8]", a))
	}
	if res.LearningPhase < 0 || res.LearningPhase >= 24 {
		issues = append(issues, fmt.Sprintf("learning phase %.1f outside [0,24)", res.LearningPhase))
	}

	switch p {
	case ProfileOwl:
		if res.StudyAlignment <= res.SchoolAlignment {
			issues = append(issues, fmt.Sprintf("owl study %d not above school %d", res.StudyAlignment, res.SchoolAlignment))
		}
		if c := res.Chronotype.Chronotype; c != chronotype.Wolf && c != chronotype.Dolphin {
			issues = append(issues, fmt.Sprintf("owl classified as %s", c))
		}
	case ProfileLark:
		if c := res.Chronotype.Chronotype; c != chronotype.Lion && c != chronotype.Bear {
			issues = append(issues, fmt.Sprintf("lark classified as %s", c))
		}
	}
	return issues
}
