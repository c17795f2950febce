package logging

// Standardized field names for structured logging.
const (
	FieldCategory   = "category"
	FieldConfidence = "confidence"
	FieldSource     = "source"
	FieldStrategy   = "strategy"
	FieldKeyword    = "keyword"
	FieldReason     = "reason"
	FieldOperation  = "operation"
	FieldCount      = "count"
	FieldDuration   = "duration_ms"
	FieldAccuracy   = "accuracy"
	FieldArtifactID = "artifact_id"
	FieldModelPath  = "model_path"
	FieldInputFile  = "input_file"
	FieldComponent  = "component"
)
