package models

// Default category set, mirrored by the built-in keyword table.
const (
	CategoryShopping       CategoryLabel = "Shopping"
	CategoryGroceries      CategoryLabel = "Groceries"
	CategoryTransportation CategoryLabel = "Transportation"
	CategoryEntertainment  CategoryLabel = "Entertainment"
	CategoryUtilities      CategoryLabel = "Utilities"
	CategoryHealthcare     CategoryLabel = "Healthcare"
	CategoryDining         CategoryLabel = "Dining"
	CategoryTravel         CategoryLabel = "Travel"
	CategoryOther          CategoryLabel = "Other"
)

// Prediction sources reported in PredictionResult.Source.
const (
	SourceModel   = "model"
	SourceKeyword = "keyword"
	SourceEmpty   = "empty"
	SourceLabeled = "labeled"
)

// Fixed confidences of the keyword classifier.
const (
	KeywordMatchConfidence   = 0.85
	KeywordNoMatchConfidence = 0.6
)
