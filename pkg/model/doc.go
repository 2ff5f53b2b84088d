// Package model implements the training stage: preprocessing, candidate
// model selection, train/test splitting, fitting, and metric computation.
//
// Candidates are chosen from the dataset profile and always include the
// no-signal MajorityClass baseline, which downstream reflection uses as the
// floor for lift comparisons. All randomness is seeded; two runs over the
// same data with the same seed produce identical splits and identical
// fitted models.
//
// A candidate that fails to fit aborts the whole training call. Skipping a
// bad candidate would silently change which models compete, so the stage
// fails fast instead.
package model
