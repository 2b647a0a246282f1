package domain

import "errors"

// ErrInvalidParameter indicates that a sampler or task was configured with
// parameters that do not describe a valid, non-degenerate distribution, or
// that a sampling request was malformed.
var ErrInvalidParameter = errors.New("invalid parameter")

// ErrMetadataValidation indicates that task metadata violates its invariants.
var ErrMetadataValidation = errors.New("task metadata validation failed")

// ErrAlreadyExists indicates that a task directory already holds a task and
// overwriting was not requested.
var ErrAlreadyExists = errors.New("task already exists")

// ErrCorruptData indicates that persisted task data is inconsistent with its
// own declared metadata.
var ErrCorruptData = errors.New("corrupt task data")

// ErrUnknownSeed indicates that a task holds no samples for the requested seed.
var ErrUnknownSeed = errors.New("unknown seed")

// ErrEstimatorFailed indicates that an estimator returned an error or a
// non-finite estimate.
var ErrEstimatorFailed = errors.New("estimator failed")
