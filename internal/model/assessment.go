package model

// Assessment is the structured result of analyzing one character's full
// answer set. Ratings are on a 1-10 scale; model-returned values are passed
// through without clamping.
type Assessment struct {
	OverallRating       float64            `json:"overall_rating" bson:"overallRating"`
	QualityRatings      map[string]float64 `json:"quality_ratings" bson:"qualityRatings"`
	Analysis            string             `json:"analysis" bson:"analysis"`
	Strengths           []string           `json:"strengths" bson:"strengths"`
	AreasForImprovement []string           `json:"areas_for_improvement" bson:"areasForImprovement"`
	Recommendations     []string           `json:"recommendations" bson:"recommendations"`
	KeyInsights         []string           `json:"key_insights" bson:"keyInsights"`

	// Fallback marks a deterministic substitute produced because the model
	// output was unusable. Not persisted.
	Fallback bool `json:"-" bson:"-"`
}
