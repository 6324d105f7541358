package domain

import "time"

type CocoDetection struct {
	Class string
	Score float64
}

type UserSelection struct {
	DeviceType          string
	DeviceLabel         string
	WasFromAI           bool
	ManualEntry         bool
	AISuggestionMatched bool
}

type ImageSize struct {
	Width  int
	Height int
}

type DetectionPerformance struct {
	InferenceTime *float64
	ModelLoadTime *float64
	ImageSize     ImageSize
}

type DeviceInfo struct {
	UserAgent string
	IsMobile  bool
}

// DetectionLog is one anonymized telemetry entry from the photo capture flow.
type DetectionLog struct {
	SessionID      string
	UserID         string
	Timestamp      time.Time
	CocoDetections []CocoDetection
	UserSelection  UserSelection
	Performance    DetectionPerformance
	DeviceInfo     DeviceInfo
}

type DeviceTypeCount struct {
	Type  string
	Label string
	Count int64
}

type CocoClassCount struct {
	Class    string
	Count    int64
	AvgScore float64
}

// DetectionAggregate holds the raw aggregation results for a time range.
type DetectionAggregate struct {
	TotalDetections  int64
	DeviceTypes      []DeviceTypeCount
	AIEvaluated      int64
	AIMatched        int64
	AvgInferenceTime float64
	CocoClasses      []CocoClassCount
}
