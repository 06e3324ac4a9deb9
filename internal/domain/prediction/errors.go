package prediction

import "errors"

// ErrPredictionFault marks any failure while invoking the estimator.
var ErrPredictionFault = errors.New("prediction fault")
