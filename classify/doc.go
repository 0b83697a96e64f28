// Package classify turns raw customer queries into (intent, confidence)
// classifications. It contains the deterministic keyword RuleClassifier and
// the confidence-gated Classifier that prefers a generative capability and
// degrades gracefully when that capability fails or answers garbage.
package classify
