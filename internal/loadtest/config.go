package loadtest

import (
	"time"

	"github.com/okian/homeval/internal/domain/features"
)

// Config holds configuration for a load test run.
type Config struct {
	BaseURL      string        // Base URL of the service
	Requests     int           // Number of prediction requests
	Workers      int           // Number of concurrent workers
	Timeout      time.Duration // HTTP request timeout
	InvalidRatio float64       // Share of requests carrying a non-numeric field
	OutputFile   string        // Output file for requests and outcomes
	Verbose      bool          // Log every failed request
}

// Request is one prediction request body plus its bookkeeping.
type Request struct {
	ID       string         `json:"id"`
	Features map[string]any `json:"features"`
	Invalid  bool           `json:"invalid"`
}

// Response is the success body of POST /api/v1/predict.
type Response struct {
	Value     float64 `json:"value"`
	Price     float64 `json:"price"`
	Formatted string  `json:"formatted"`
	Model     string  `json:"model"`
	LatencyMs float64 `json:"latency_ms"`
}

// ErrorResponse is the error body returned by the API.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Outcome pairs a request with what the service answered.
type Outcome struct {
	Request  Request        `json:"request"`
	Status   int            `json:"status"`
	Response *Response      `json:"response,omitempty"`
	Error    *ErrorResponse `json:"error,omitempty"`
	Err      string         `json:"transport_error,omitempty"`
}

// SchemaField mirrors one field entry of GET /api/v1/schema.
type SchemaField struct {
	Name    string  `json:"name"`
	Label   string  `json:"label"`
	Default float64 `json:"default"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Step    float64 `json:"step"`
}

// Bounds returns the widget bounds of the field.
func (f SchemaField) Bounds() features.Bounds {
	return features.Bounds{Min: f.Min, Max: f.Max, Step: f.Step}
}

// Schema mirrors the body of GET /api/v1/schema.
type Schema struct {
	Mode     string        `json:"mode"`
	Features []string      `json:"features"`
	Fields   []SchemaField `json:"fields"`
}

// Stats holds test statistics.
type Stats struct {
	Generated  int
	Submitted  int
	Successful int
	Rejected   int
	Failed     int
	Mismatched int
	MinPrice   float64
	MaxPrice   float64
	SumPrice   float64
	StartTime  time.Time
	EndTime    time.Time
	Duration   time.Duration
}

// MeanPrice is the average predicted price over successful requests.
func (s *Stats) MeanPrice() float64 {
	if s.Successful == 0 {
		return 0
	}
	return s.SumPrice / float64(s.Successful)
}

func (s *Stats) observePrice(p float64) {
	if s.Successful == 0 || p < s.MinPrice {
		s.MinPrice = p
	}
	if s.Successful == 0 || p > s.MaxPrice {
		s.MaxPrice = p
	}
	s.SumPrice += p
	s.Successful++
}
