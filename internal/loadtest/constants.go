package loadtest

// Endpoint paths of the homeval API.
const (
	healthPath  = "/healthz"
	schemaPath  = "/api/v1/schema"
	predictPath = "/api/v1/predict"
)

// Worker configuration constants.
const (
	WorkerChannelMultiplier = 2
)

// Runner configuration constants.
const (
	PercentageMultiplier = 100
	directoryPermission  = 0o750
	filePermission       = 0o600
)

// invalidText is submitted in place of a number for invalid requests.
const invalidText = "n/a"
