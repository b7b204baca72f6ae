package model

import "time"

// Identity is the profile resolved from an identity-provider token.
type Identity struct {
	UserID  string `json:"user_id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

// SpeechEntry is one transcribed utterance.
type SpeechEntry struct {
	Timestamp time.Time `json:"timestamp" bson:"timestamp"`
	Text      string    `json:"text" bson:"text"`
}

// Screenshot holds the base64 transport string exactly as stored.
type Screenshot struct {
	Timestamp time.Time `json:"timestamp" bson:"timestamp"`
	ImageData string    `json:"image_data" bson:"image_data"`
}

// UserRecord is the per-user document. Entries and screenshots are append-only.
type UserRecord struct {
	UserID        string            `json:"user_id" bson:"user_id"`
	Email         string            `json:"email,omitempty" bson:"email,omitempty"`
	Name          string            `json:"name,omitempty" bson:"name,omitempty"`
	Picture       string            `json:"picture,omitempty" bson:"picture,omitempty"`
	Topic         string            `json:"topic" bson:"topic"`
	SpeechEntries []SpeechEntry     `json:"speech_entries" bson:"speech_entries"`
	Screenshots   []Screenshot      `json:"screenshots" bson:"screenshots"`
	GDEvaluation  *StoredEvaluation `json:"gd_evaluation,omitempty" bson:"gd_evaluation,omitempty"`
}

// Transcript joins speech entries with single spaces in stored order.
func (r *UserRecord) Transcript() string {
	n := 0
	for _, e := range r.SpeechEntries {
		n += len(e.Text) + 1
	}
	b := make([]byte, 0, n)
	for i, e := range r.SpeechEntries {
		if i > 0 {
			b = append(b, ' ')
		}
		b = append(b, e.Text...)
	}
	return string(b)
}

// SectionScore is a scored section with free-text analysis.
type SectionScore struct {
	Score    float64 `json:"score" bson:"score"`
	Analysis string  `json:"analysis" bson:"analysis"`
}

// TopicCoverage extends SectionScore with covered and missing points.
type TopicCoverage struct {
	Score            float64  `json:"score" bson:"score"`
	Analysis         string   `json:"analysis" bson:"analysis"`
	KeyPointsCovered []string `json:"key_points_covered" bson:"key_points_covered"`
	MissingPoints    []string `json:"missing_points" bson:"missing_points"`
}

// Evaluation is the structured assessment of a user's discussion.
type Evaluation struct {
	TopicCoverage   TopicCoverage `json:"topic_coverage" bson:"topic_coverage"`
	DepthOfAnalysis SectionScore  `json:"depth_of_analysis" bson:"depth_of_analysis"`
	Relevance       SectionScore  `json:"relevance" bson:"relevance"`
	Structure       SectionScore  `json:"structure" bson:"structure"`
	OverallScore    float64       `json:"overall_score" bson:"overall_score"`
	Summary         string        `json:"summary" bson:"summary"`
	Suggestions     []string      `json:"suggestions" bson:"suggestions"`
}

// StoredEvaluation is the evaluation as persisted on the user record.
type StoredEvaluation struct {
	Timestamp  time.Time  `json:"timestamp" bson:"timestamp"`
	Evaluation Evaluation `json:"evaluation" bson:"evaluation"`
}
